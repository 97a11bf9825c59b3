package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// logStyles colors level badges with the CLI palette.
func logStyles() *log.Styles {
	s := log.DefaultStyles()
	badge := func(label string, c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().SetString(label).Bold(true).MaxWidth(4).Foreground(c)
	}
	s.Levels[log.DebugLevel] = badge("DEBU", colorGray)
	s.Levels[log.InfoLevel] = badge("INFO", colorCyan)
	s.Levels[log.WarnLevel] = badge("WARN", colorYellow)
	s.Levels[log.ErrorLevel] = badge("ERRO", colorRed)
	s.Keys["elapsed"] = StyleDim
	s.Values["elapsed"] = StyleDim
	return s
}

// newLogger writes timestamped records ("14:32:01.45") to w at or above level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	l.SetStyles(logStyles())
	return l
}

// progress times one step of a command.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, rounded to the millisecond.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext falls back to log.Default when ctx carries no logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
