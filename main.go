// The main package for the dexguide-edge executable.
package main

import "github.com/silkyrich/dexguide-edge/cmd"

func main() {
	cmd.Execute()
}
