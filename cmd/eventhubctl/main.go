// cmd/eventhubctl/main.go
package main

import (
	"os"

	"github.com/dalemusser/eventhub/internal/tools/seedctl"
)

func main() {
	if err := seedctl.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
