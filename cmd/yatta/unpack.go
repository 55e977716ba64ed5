package main

import (
	"context"
	"flag"
	"os"

	"golang.org/x/xerrors"

	"github.com/Yattabyte/yatta"
)

const unpackHelp = `yatta unpack <input.ypkg> <folder>

Expands <input.ypkg>, writing its files beneath <folder>.
`

func unpack(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("unpack", flag.ExitOnError)
	fset.Usage = usage(fset, unpackHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() != 2 {
		fset.Usage()
		os.Exit(2)
	}
	input, folder := fset.Arg(0), fset.Arg(1)

	raw, err := os.ReadFile(input)
	if err != nil {
		return xerrors.Errorf("reading %s: %w", input, err)
	}
	payload, err := readContainer(packMagic, raw)
	if err != nil {
		return xerrors.Errorf("parsing %s: %w", input, err)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	dir, err := yatta.NewDirectoryFromPackage(yatta.NewBufferFromBytes(payload))
	if err != nil {
		return xerrors.Errorf("expanding package: %w", err)
	}

	p := newProgress()
	if err := dir.OutFolder(folder); err != nil {
		return xerrors.Errorf("writing %s: %w", folder, err)
	}
	p.finish(dir.FileCount(), "unpacked")
	return nil
}
