// Package sources provides fetching and HTML parsing for the conference
// announcement sites the aggregator watches.
//
// Each site is a Source registered by name in an explicit registry; runs
// select sources by name rather than discovering them. Sources share one
// retrying HTTP client and receive the set of already-persisted URLs so
// they can skip detail fetches and stop paginating once a listing page
// yields nothing new.
package sources
