package main

import (
	"fmt"
	"os"

	"github.com/go-go-golems/chatclient/cmd/chatclient/cmds"
)

func main() {
	if err := cmds.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
