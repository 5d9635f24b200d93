// Command graphmirror is the CLI front end for pkg/mirror.
package main

import "github.com/mesh-intelligence/graphmirror/internal/cli"

func main() {
	cli.Execute()
}
