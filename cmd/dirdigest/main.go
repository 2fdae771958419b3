// Dirdigest fingerprints directory trees, compares them and mirrors one
// onto another.
package main

import (
	"os"

	"dirdigest/cmd/dirdigest/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
