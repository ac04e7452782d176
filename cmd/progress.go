package main

import (
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/ndx/internal/tasks"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// progressPrinter renders engine progress. Updates of the line phases are printed as
// text; everything else drives a progress bar when the output is a terminal and is
// dropped otherwise.
type progressPrinter struct {
	w        io.Writer
	terminal bool
	lines    map[tasks.Phase]bool
	bar      *progressbar.ProgressBar
	barPhase tasks.Phase
	barTotal int
}

func newProgressPrinter(w io.Writer, lines ...tasks.Phase) *progressPrinter {
	p := &progressPrinter{w: w, terminal: isTerminal(w), lines: make(map[tasks.Phase]bool, len(lines))}
	for _, phase := range lines {
		p.lines[phase] = true
	}
	return p
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p *progressPrinter) handle(u tasks.ProgressUpdate) {
	if p.lines[u.Phase] {
		if p.bar != nil {
			p.bar.Clear()
		}
		fmt.Fprintln(p.w, u.Message)
		return
	}
	if !p.terminal || u.Total <= 0 {
		return
	}

	if p.bar == nil || u.Phase != p.barPhase || u.Total != p.barTotal {
		p.finish()
		p.bar = progressbar.NewOptions(u.Total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription(u.Phase.String()),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		p.barPhase, p.barTotal = u.Phase, u.Total
	}
	p.bar.Describe(u.Message)
	p.bar.Set(u.Step)
}

func (p *progressPrinter) finish() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}

// watchProgress returns a channel for engine progress and a function that closes it and
// waits until every buffered update has been printed.
func (r *Runner) watchProgress(lines ...tasks.Phase) (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	printer := newProgressPrinter(r.output, lines...)

	go func() {
		defer close(done)
		for update := range progress {
			printer.handle(update)
		}
		printer.finish()
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}
