package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/Yattabyte/yatta"
)

const hashHelp = `yatta hash <path>...

Prints the content hash of each file or directory given.
`

func hashOne(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		dir, err := yatta.NewDirectoryFromFolder(path, nil)
		if err != nil {
			return 0, err
		}
		return dir.Hash(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return yatta.NewBufferFromBytes(data).Hash(), nil
}

func hashPath(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("hash", flag.ExitOnError)
	fset.Usage = usage(fset, hashHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() == 0 {
		fset.Usage()
		os.Exit(2)
	}

	paths := fset.Args()
	hashes := make([]uint64, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			h, err := hashOne(path)
			if err != nil {
				return xerrors.Errorf("hashing %s: %w", path, err)
			}
			hashes[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if gctx.Err() != nil {
		return gctx.Err()
	}

	for i, path := range paths {
		fmt.Printf("%016x  %s\n", hashes[i], path)
	}
	return nil
}
