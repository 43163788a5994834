package main

import "github.com/giantswarm/mcp-amp/cmd"

// version is set at build time via ldflags
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
