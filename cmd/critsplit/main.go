// critsplit splits a stylesheet into per-profile critical CSS bundles.
package main

import (
	"os"

	"github.com/sjc5/critsplit/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
