// Command intentcrawl is the CLI entry point for the intent-driven crawler.
package main

import "github.com/kestrelcrawl/intentcrawl/internal/cli"

func main() {
	cli.Execute()
}
