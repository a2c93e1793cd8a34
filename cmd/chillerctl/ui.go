package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

func success(w io.Writer, format string, args ...interface{}) {
	_, _ = color.New(color.FgGreen).Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

func warn(w io.Writer, format string, args ...interface{}) {
	_, _ = color.New(color.FgYellow).Fprintf(w, "! %s\n", fmt.Sprintf(format, args...))
}

func info(w io.Writer, format string, args ...interface{}) {
	_, _ = color.New(color.FgCyan).Fprintf(w, "%s\n", fmt.Sprintf(format, args...))
}

func heading(w io.Writer, format string, args ...interface{}) {
	_, _ = color.New(color.Bold).Fprintf(w, "%s\n", fmt.Sprintf(format, args...))
}

// newProgressBar draws import progress on w, counted in records.
func newProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("records"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprint(w, "\n")
		}),
	)
}
