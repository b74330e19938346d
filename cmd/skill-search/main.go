package main

import (
	"os"

	"github.com/deepnoodle-ai/skillsearch/cmd/skill-search/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.0.1"

func main() {
	os.Exit(cli.Execute(version))
}
