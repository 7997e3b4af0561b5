// GCAlign - GC-MS peak detection and alignment tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/gcalign/cmd/gcalign/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
