package uploadengine

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	failColor = color.New(color.FgRed)
	doneColor = color.New(color.FgGreen)
)

// Progress renders a running completed/total counter for one batch. It is
// driven by a single consumer of the result stream, so its counters need no
// locking; completed only ever increments and never exceeds total.
type Progress struct {
	total      int
	completed  int
	uploaded   int
	duplicates int
	failed     int

	started   time.Time
	out       io.Writer
	printer   *message.Printer
	lastWidth int
}

func NewProgress(total int, out io.Writer) *Progress {
	return &Progress{
		total:   total,
		started: time.Now(),
		out:     out,
		printer: message.NewPrinter(language.AmericanEnglish),
	}
}

// Observe records one result. Failures get their own line naming the file
// and the reason; every result advances the counter.
func (p *Progress) Observe(r UploadResult) {
	switch r.Status {
	case StatusUploaded:
		p.uploaded++
	case StatusAlreadyExists:
		p.duplicates++
	case StatusFailed:
		p.failed++
		p.clearLine()
		failColor.Fprintf(p.out, "failed:   %s: %v\n", r.Media.Path, r.Err)
	}
	if p.completed < p.total {
		p.completed++
	}
	p.render()
}

// Finish prints the end-of-batch summary.
func (p *Progress) Finish() {
	p.clearLine()
	elapsed := time.Since(p.started).Round(time.Second)
	doneColor.Fprint(p.out, "done. ")
	p.printer.Fprintf(p.out, "%d of %d files in %s (%d uploaded, %d duplicates, %d failed)\n",
		p.completed, p.total, elapsed, p.uploaded, p.duplicates, p.failed)
}

// Completed returns how many outcomes have been observed so far.
func (p *Progress) Completed() int { return p.completed }

// Failed returns how many outcomes were failures.
func (p *Progress) Failed() int { return p.failed }

func (p *Progress) render() {
	elapsed := time.Since(p.started)
	line := fmt.Sprintf("[%s] %d/%d%s ", formatDuration(elapsed), p.completed, p.total, p.eta(elapsed))
	p.lastWidth = len(line)
	fmt.Fprint(p.out, "\r", line)
}

func (p *Progress) eta(elapsed time.Duration) string {
	if p.completed == 0 || p.completed >= p.total {
		return ""
	}
	remaining := time.Duration(float64(elapsed) / float64(p.completed) * float64(p.total-p.completed))
	return fmt.Sprintf(" (eta %s)", formatDuration(remaining))
}

func (p *Progress) clearLine() {
	// Wipe exactly the width of the last rendered counter before writing a
	// full line; a fixed width would leave trailing characters behind once
	// the counter grows past it.
	if p.lastWidth == 0 {
		return
	}
	fmt.Fprint(p.out, "\r", strings.Repeat(" ", p.lastWidth), "\r")
	p.lastWidth = 0
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d - m*time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d", m, s)
}
