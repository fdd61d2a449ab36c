package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ExportStatus is the outcome of exporting one class
type ExportStatus int

const (
	StatusWritten ExportStatus = iota
	StatusUnchanged
	StatusSkipped
	StatusFailed
)

// String returns the label printed for the status
func (s ExportStatus) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusUnchanged:
		return "unchanged"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Progress prints one counted line per exported class and keeps tallies
type Progress struct {
	writer  io.Writer
	total   int
	current int
	counts  map[ExportStatus]int
	noColor bool
}

// NewProgress creates a reporter for total classes
func NewProgress(w io.Writer, total int, noColor bool) *Progress {
	return &Progress{
		writer:  w,
		total:   total,
		counts:  make(map[ExportStatus]int),
		noColor: noColor,
	}
}

// Report records the status of className and prints its line
func (p *Progress) Report(className string, status ExportStatus, detail string) {
	p.current++
	p.counts[status]++

	var c *color.Color
	switch status {
	case StatusWritten:
		c = color.New(color.FgGreen)
	case StatusFailed:
		c = color.New(color.FgRed)
	default:
		c = color.New(color.FgHiBlack)
	}
	if p.noColor {
		c.DisableColor()
	}

	width := len(fmt.Sprint(p.total))
	fmt.Fprintf(p.writer, "[%*d/%d] %s ", width, p.current, p.total, className)
	c.Fprint(p.writer, status.String())
	if detail != "" {
		fmt.Fprintf(p.writer, " (%s)", detail)
	}
	fmt.Fprintln(p.writer)
}

// Count returns how many classes ended with status
func (p *Progress) Count(status ExportStatus) int {
	return p.counts[status]
}

// Summary returns the one-line totals
func (p *Progress) Summary() string {
	return fmt.Sprintf("%d written, %d unchanged, %d skipped, %d failed",
		p.counts[StatusWritten], p.counts[StatusUnchanged], p.counts[StatusSkipped], p.counts[StatusFailed])
}

// Finish prints the summary line
func (p *Progress) Finish() {
	if p.counts[StatusFailed] > 0 {
		fmt.Fprintln(p.writer, Warning(p.Summary(), p.noColor))
		return
	}
	WriteSuccess(p.writer, p.Summary(), p.noColor)
}
