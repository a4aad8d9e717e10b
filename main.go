// ./main.go
package main

import (
	"github.com/kzn-tools/kaizen/cmd"
)

// main is the entry point for the kaizen CLI application.
func main() {
	cmd.Execute()
}
