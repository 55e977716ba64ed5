package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"

	"github.com/google/renameio"
	"golang.org/x/xerrors"

	"github.com/Yattabyte/yatta"
)

const patchHelp = `yatta patch <file> <input.diff> [output]

Applies <input.diff> (produced by "yatta diff") to <file>. Writes the
result back to <file> in place unless [output] is given.
`

func patchFiles(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("patch", flag.ExitOnError)
	fset.Usage = usage(fset, patchHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() != 2 && fset.NArg() != 3 {
		fset.Usage()
		os.Exit(2)
	}
	file, input := fset.Arg(0), fset.Arg(1)
	output := file
	if fset.NArg() == 3 {
		output = fset.Arg(2)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return xerrors.Errorf("reading %s: %w", file, err)
	}
	raw, err := os.ReadFile(input)
	if err != nil {
		return xerrors.Errorf("reading %s: %w", input, err)
	}
	diffBytes, err := readContainer(diffMagic, raw)
	if err != nil {
		return xerrors.Errorf("parsing %s: %w", input, err)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	patched, ok := yatta.NewBufferFromBytes(data).Patch(yatta.NewBufferFromBytes(diffBytes))
	if !ok {
		return xerrors.New("patch application failed")
	}

	tmp, err := renameio.TempFile("", output)
	if err != nil {
		return xerrors.Errorf("creating temp file: %w", err)
	}
	if _, err := io.Copy(tmp, bytes.NewReader(patched.Bytes())); err != nil {
		return xerrors.Errorf("writing %s: %w", output, err)
	}
	return tmp.CloseAtomicallyReplace()
}
