package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
	"golang.org/x/xerrors"

	"github.com/Yattabyte/yatta"
)

const packMagic = "YPAK"

const packHelp = `yatta pack [-flags] <folder> <output.ypkg>

Packages every file beneath <folder> into a single <output.ypkg> archive.
`

func pack(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("pack", flag.ExitOnError)
	exclude := fset.String("exclude", "", "comma-separated list of relative paths or extensions (e.g. .tmp) to skip")
	name := fset.String("name", "", "folder name recorded in the package header (defaults to <folder>'s base name)")
	fset.Usage = usage(fset, packHelp)
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() != 2 {
		fset.Usage()
		os.Exit(2)
	}
	folder, output := fset.Arg(0), fset.Arg(1)

	folderName := *name
	if folderName == "" {
		folderName = filepath.Base(folder)
	}

	var exclusions []string
	if *exclude != "" {
		exclusions = strings.Split(*exclude, ",")
	}

	p := newProgress()
	dir, err := yatta.NewDirectoryFromFolder(folder, exclusions)
	if err != nil {
		return xerrors.Errorf("reading folder: %w", err)
	}
	p.finish(dir.FileCount(), "scanned")

	if ctx.Err() != nil {
		return ctx.Err()
	}

	pkg, ok := dir.OutPackage(folderName)
	if !ok {
		return xerrors.New("packaging failed (folder is empty?)")
	}

	container := buildContainer(packMagic, pkg.Bytes())
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

	p.finish(dir.FileCount(), "packed")
	return nil
}
