package main

import (
	"os"

	"github.com/tphakala/prodcon/cmd"
	"github.com/tphakala/prodcon/internal/buildinfo"
)

// Set at build time with -ldflags "-X main.version=... -X main.buildDate=...".
var (
	version   = "dev"
	buildDate = ""
)

func main() {
	os.Exit(cmd.Execute(buildinfo.NewContext(version, buildDate), os.Args[1:]))
}
