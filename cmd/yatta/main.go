// Command yatta packages, unpacks, diffs, and patches directories and
// files using the yatta buffer/differ/directory libraries.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Yattabyte/yatta"
)

// logger is the sink the verbs' final progress summaries are written to;
// there's no structured-logging library in scope, just the standard logger.
// Errors and hash output are printed directly with fmt instead.
var logger = log.New(os.Stderr, "", 0)

type cmd struct {
	fn func(ctx context.Context, args []string) error
}

var verbs = map[string]cmd{
	"pack":   {pack},
	"unpack": {unpack},
	"delta":  {delta},
	"apply":  {apply},
	"diff":   {diffFiles},
	"patch":  {patchFiles},
	"hash":   {hashPath},
}

const mainHelp = `yatta <command> [-flags] <args>

Commands:
	pack    - package a directory into a .ypkg archive
	unpack  - expand a .ypkg archive into a directory
	delta   - generate a .ydelta patch between two directories
	apply   - apply a .ydelta patch to a directory in place
	diff    - generate a byte-level patch between two files
	patch   - apply a byte-level patch (from diff) to a file
	hash    - print the content hash of a file or directory

To get help on any command, use yatta <command> -help.
`

func funcmain() error {
	args := os.Args[1:]
	verb := ""
	if len(args) > 0 {
		verb, args = args[0], args[1:]
	}

	if verb == "" || verb == "help" {
		fmt.Fprint(os.Stderr, mainHelp)
		os.Exit(2)
	}

	v, ok := verbs[verb]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", verb)
		fmt.Fprint(os.Stderr, mainHelp)
		os.Exit(2)
	}

	ctx, canc := yatta.InterruptibleContext()
	defer canc()
	if err := v.fn(ctx, args); err != nil {
		return fmt.Errorf("%s: %v", verb, err)
	}
	return yatta.RunAtExit()
}

func main() {
	if err := funcmain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
