package main

import (
	"flag"
	"fmt"
	"os"
)

// usage returns a flag.FlagSet.Usage function that prints helpText followed
// by the flag set's own -flag listing.
func usage(fset *flag.FlagSet, helpText string) func() {
	return func() {
		fmt.Fprint(os.Stderr, helpText)
		fset.PrintDefaults()
	}
}
