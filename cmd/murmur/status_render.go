package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var statusPalette = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

// statusReport writes the aligned check lines of `murmur status`,
// coloring them only when the output is a terminal.
type statusReport struct {
	out      io.Writer
	colorize bool
}

func newStatusReport(out io.Writer) *statusReport {
	return &statusReport{out: out, colorize: writerIsTerminal(out)}
}

func (r *statusReport) line(label string, kind statusKind, format string, args ...any) {
	entry := statusPalette[kind]
	message := fmt.Sprintf(format, args...)
	text := fmt.Sprintf("  %-20s [%s]", label+":", entry.label)
	if message != "" {
		text += " " + message
	}
	if r.colorize && entry.color != "" {
		text = entry.color + text + ansiReset
	}
	fmt.Fprintln(r.out, text)
}

func writerIsTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
