package main

import (
	"os"

	"github.com/modkit/swfpatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
