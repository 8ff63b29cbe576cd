package main

import (
	"os"

	"github.com/greghernandez/docsync/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
