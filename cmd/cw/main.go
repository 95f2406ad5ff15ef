// cw is the crewdeck CLI: the coordinator server, its hook roles, and a
// handful of human-facing views over the same state root.
package main

import (
	"os"

	"github.com/fernglen/crewdeck/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
