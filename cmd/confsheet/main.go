package main

import "github.com/pfrederiksen/confsheet/internal/cli"

func main() {
	cli.Execute()
}
