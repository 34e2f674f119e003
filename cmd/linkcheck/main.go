// Package main provides the entry point for the linkcheck CLI.
//
// linkcheck scans a directory of HTML documents for broken internal links
// and missing anchors, and optionally probes a sample of external URLs.
//
// Usage:
//
//	linkcheck check [root]
//	linkcheck check --external --sample 20 ./public
//
// See --help for all available options.
package main

import "os"

// main is the entry point for linkcheck.
func main() {
	os.Exit(Execute())
}
