package main

import (
	"context"
	"flag"
	"os"

	"golang.org/x/xerrors"

	"github.com/Yattabyte/yatta"
)

const applyHelp = `yatta apply <folder> <input.ydelta>

Applies <input.ydelta> (produced by "yatta delta") to <folder> in place.
`

func apply(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("apply", flag.ExitOnError)
	fset.Usage = usage(fset, applyHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() != 2 {
		fset.Usage()
		os.Exit(2)
	}
	folder, input := fset.Arg(0), fset.Arg(1)

	raw, err := os.ReadFile(input)
	if err != nil {
		return xerrors.Errorf("reading %s: %w", input, err)
	}
	payload, err := readContainer(deltaMagic, raw)
	if err != nil {
		return xerrors.Errorf("parsing %s: %w", input, err)
	}

	dir, err := yatta.NewDirectoryFromFolder(folder, nil)
	if err != nil {
		return xerrors.Errorf("reading %s: %w", folder, err)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := dir.InDelta(yatta.NewBufferFromBytes(payload)); err != nil {
		return xerrors.Errorf("applying delta: %w", err)
	}

	p := newProgress()
	if err := dir.OutFolder(folder); err != nil {
		return xerrors.Errorf("writing %s: %w", folder, err)
	}
	p.finish(dir.FileCount(), "patched")
	return nil
}
