// cmd/match-cli/main.go
package main

import (
	"os"

	"recruitment-workers/cmd/match-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
