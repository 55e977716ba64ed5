package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
)

// progress reports a verb's outcome as one summary line on stderr. When
// stderr is a terminal, the current line is first cleared (using the
// terminal's width); otherwise (a log file, a pipe into another tool) only
// the summary line is written.
type progress struct {
	tty   bool
	width int
}

func newProgress() *progress {
	fd := os.Stderr.Fd()
	p := &progress{tty: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
	if p.tty {
		if ws, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ); err == nil && ws.Col > 0 {
			p.width = int(ws.Col)
		} else {
			p.width = 80
		}
	}
	return p
}

// finish clears the current line (on a terminal only) and then prints a
// final summary in every case.
func (p *progress) finish(total uint64, verb string) {
	if p.tty {
		fmt.Fprint(os.Stderr, "\r"+fmt.Sprintf("%*s", p.width, "")+"\r")
	}
	logger.Printf("%s: %d file(s)", verb, total)
}
