package main

import (
	"context"
	"flag"
	"os"

	"golang.org/x/xerrors"

	"github.com/Yattabyte/yatta"
)

const diffMagic = "YDIF"

const diffHelp = `yatta diff <old-file> <new-file> <output.diff>

Generates a byte-level patch that transforms <old-file> into <new-file>.
`

func diffFiles(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("diff", flag.ExitOnError)
	fset.Usage = usage(fset, diffHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() != 3 {
		fset.Usage()
		os.Exit(2)
	}
	oldPath, newPath, output := fset.Arg(0), fset.Arg(1), fset.Arg(2)

	oldData, err := os.ReadFile(oldPath)
	if err != nil {
		return xerrors.Errorf("reading %s: %w", oldPath, err)
	}
	newData, err := os.ReadFile(newPath)
	if err != nil {
		return xerrors.Errorf("reading %s: %w", newPath, err)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	diff, ok := yatta.NewBufferFromBytes(oldData).Diff(yatta.NewBufferFromBytes(newData))
	if !ok {
		return xerrors.New("diff generation failed")
	}

	container := buildContainer(diffMagic, diff.Bytes())
	if err := os.WriteFile(output, container, 0o644); err != nil {
		return xerrors.Errorf("writing %s: %w", output, err)
	}
	return nil
}
