// Command portalctl manages the staff accounts that sign in to the admin
// console.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	cli := &commandLine{}
	if err := newRootCmd(cli).Execute(); err != nil {
		if !errors.Is(err, errHelp) {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		cli.close()
		os.Exit(1)
	}
	cli.close()
}
