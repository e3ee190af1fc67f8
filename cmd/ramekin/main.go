// Package main is the ramekin command-line client: it logs in to a Ramekin
// backend, captures recipe pages through a headless browser and inspects
// scrape jobs, meal plans and recipe history.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
