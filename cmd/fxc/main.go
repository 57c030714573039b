// Command fxc is the FX effect compiler CLI.
//
// Usage:
//
//	fxc compile -o shader.spv shader.fx   # compile to SPIR-V + metadata
//	fxc check shader.fx                   # parse and report diagnostics
//	fxc version
package main

import "github.com/fxsl/fxc/cmd/fxc/cmd"

func main() {
	cmd.Execute()
}
