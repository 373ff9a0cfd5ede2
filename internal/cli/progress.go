package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// Progress adapts a progress bar to the done/total callback used while
// reshaping an export.
type Progress struct {
	bar         *progressbar.ProgressBar
	writer      io.Writer
	description string
	last        int
}

// NewProgress creates a progress bar that writes to w. The bar is drawn on
// the first update, once the total is known.
func NewProgress(w io.Writer, description string) *Progress {
	return &Progress{writer: w, description: description}
}

func newBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// Update records that done of total steps have finished.
func (p *Progress) Update(done, total int) {
	if total <= 0 || done < p.last {
		return
	}
	if p.bar == nil {
		p.bar = newBar(p.writer, total, p.description)
	}
	if err := p.bar.Set(done); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
	p.last = done
}

// Done reports how many steps have been recorded.
func (p *Progress) Done() int {
	return p.last
}

// Finish completes the bar if it has not already filled.
func (p *Progress) Finish() {
	if p.bar == nil || p.bar.IsFinished() {
		return
	}
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}
