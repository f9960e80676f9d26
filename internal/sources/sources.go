package sources

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/confsheet/internal/conference"
)

// Source is one configured announcement site.
type Source interface {
	// Name is the registry key and the source tag stamped on candidates.
	Name() string

	// Fetch returns the site's current candidates. URLs present in known
	// are skipped without a detail fetch and never emitted; a page whose
	// listings are all known ends pagination early.
	Fetch(ctx context.Context, client *Client, known conference.KnownURLSet) ([]conference.RawCandidate, error)
}

// Registry returns every available source keyed by name. Adding a site
// means registering it here; nothing is discovered by convention.
func Registry() map[string]Source {
	return map[string]Source{
		"inomics": NewInomics(),
		"misfit":  NewMisfit(),
	}
}

// Names returns the registered source names in stable order.
func Names() []string {
	registry := Registry()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves source names to sources. An empty selection means every
// registered source. Unknown names are an error so a typo fails loudly
// instead of silently fetching nothing.
func Select(names []string) ([]Source, error) {
	registry := Registry()
	if len(names) == 0 {
		names = Names()
	}
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		src, ok := registry[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown source %q (available: %s)", name, strings.Join(Names(), ", "))
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// pageTextLimit caps how much page text a candidate carries downstream to
// the classifier.
const pageTextLimit = 5000

// truncate clips s to at most limit bytes.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// pause sleeps between successive fetches against the same site, ending
// early if the context does.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
