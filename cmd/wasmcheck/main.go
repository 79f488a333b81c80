// Command wasmcheck decodes and statically validates a WebAssembly binary
// module, reporting the first structural or type error it finds.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
