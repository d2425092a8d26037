// Command governedide is the CLI bootstrap around the governance
// pipeline: a classifier debugger, a content-hasher debugger, a
// ledger tailer, and a handshake renderer.
package main

import (
	"fmt"
	"os"

	"github.com/Heban-7/governed-ai-native-ide/cmd/governedide/internal/root"
)

func main() {
	if err := root.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
