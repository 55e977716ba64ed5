package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/google/renameio"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/Yattabyte/yatta"
)

const deltaMagic = "YDLT"

const deltaHelp = `yatta delta [-flags] <old-folder> <new-folder> <output.ydelta>

Generates a patch that transforms <old-folder> into <new-folder>.
`

func delta(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("delta", flag.ExitOnError)
	exclude := fset.String("exclude", "", "comma-separated list of relative paths or extensions to skip")
	fset.Usage = usage(fset, deltaHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() != 3 {
		fset.Usage()
		os.Exit(2)
	}
	oldFolder, newFolder, output := fset.Arg(0), fset.Arg(1), fset.Arg(2)

	var exclusions []string
	if *exclude != "" {
		exclusions = strings.Split(*exclude, ",")
	}

	var oldDir, newDir *yatta.Directory
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		oldDir, err = yatta.NewDirectoryFromFolder(oldFolder, exclusions)
		return err
	})
	g.Go(func() error {
		var err error
		newDir, err = yatta.NewDirectoryFromFolder(newFolder, exclusions)
		return err
	})
	if err := g.Wait(); err != nil {
		return xerrors.Errorf("reading folders: %w", err)
	}
	if gctx.Err() != nil {
		return gctx.Err()
	}

	diff, ok := oldDir.OutDelta(newDir)
	if !ok {
		return xerrors.New("delta generation failed (both folders empty?)")
	}

	container := buildContainer(deltaMagic, diff.Bytes())
	tmp, err := renameio.TempFile("", output)
	if err != nil {
		return xerrors.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(container); err != nil {
		return xerrors.Errorf("writing %s: %w", output, err)
	}
	if err := tmp.CloseAtomicallyReplace(); err != nil {
		return xerrors.Errorf("finalizing %s: %w", output, err)
	}

	p := newProgress()
	p.finish(newDir.FileCount(), "diffed")
	return nil
}
