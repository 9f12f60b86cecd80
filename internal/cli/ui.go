package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"
)

const ansiReset = "\x1b[0m"

type style string

const (
	styleKey    style = "\x1b[1m\x1b[38;5;51m"
	styleOK     style = "\x1b[1m\x1b[38;5;82m"
	styleWarn   style = "\x1b[1m\x1b[38;5;214m"
	styleErr    style = "\x1b[1m\x1b[38;5;196m"
	styleAccent style = "\x1b[1m\x1b[38;5;201m"
	styleDim    style = "\x1b[2m"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

type renderer struct {
	color bool
}

func newRenderer(out io.Writer, asJSON bool) renderer {
	return renderer{color: colorEnabled(out, asJSON)}
}

// colorEnabled honours NO_COLOR and only decorates interactive terminals.
func colorEnabled(out io.Writer, asJSON bool) bool {
	if asJSON || strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	return isTerminal(out)
}

func spinnerEnabled(out io.Writer, asJSON bool) bool {
	return colorEnabled(out, asJSON)
}

func isTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return false
	}
	term := strings.TrimSpace(os.Getenv("TERM"))
	return term != "" && term != "dumb"
}

func (r renderer) paint(s style, value string) string {
	if !r.color || value == "" {
		return value
	}
	return string(s) + value + ansiReset
}

func (r renderer) key(value string) string    { return r.paint(styleKey, value) }
func (r renderer) ok(value string) string     { return r.paint(styleOK, value) }
func (r renderer) warn(value string) string   { return r.paint(styleWarn, value) }
func (r renderer) err(value string) string    { return r.paint(styleErr, value) }
func (r renderer) accent(value string) string { return r.paint(styleAccent, value) }
func (r renderer) dim(value string) string    { return r.paint(styleDim, value) }

// bar draws a fixed width progress gauge for ratio in [0, 1].
func (r renderer) bar(width int, ratio float64) string {
	if width <= 0 {
		width = 20
	}
	ratio = math.Max(0, math.Min(1, ratio))
	filled := int(math.Round(ratio * float64(width)))
	gauge := r.ok(strings.Repeat("=", filled)) + r.dim(strings.Repeat("-", width-filled))
	return "[" + gauge + "]"
}

// withSpinner runs fn while drawing a spinner on out. fn is expected to
// observe ctx itself, so the spinner keeps going until fn returns.
func withSpinner(ctx context.Context, out io.Writer, enabled bool, label string, fn func() error) error {
	if !enabled {
		return fn()
	}
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	ticker := time.NewTicker(120 * time.Millisecond)
	defer ticker.Stop()

	started := time.Now()
	for frame := 0; ; {
		select {
		case err := <-done:
			clearLine(out)
			return err
		case <-ticker.C:
			elapsed := time.Since(started).Truncate(100 * time.Millisecond)
			fmt.Fprintf(out, "\r%s %s %s", spinnerFrames[frame%len(spinnerFrames)], label, elapsed)
			frame++
		case <-ctx.Done():
		}
	}
}

func clearLine(out io.Writer) {
	fmt.Fprint(out, "\r\x1b[2K")
}
