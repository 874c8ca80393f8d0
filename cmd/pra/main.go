// Command pra is the fault-tree and event-tree analysis CLI.
package main

import (
	"fmt"
	"os"

	"github.com/handanlinzhang/scram/cmd/pra/internal/root"
)

func main() {
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pra:", err)
		os.Exit(exitCodeFor(err))
	}
}
