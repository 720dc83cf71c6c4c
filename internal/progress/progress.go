// Package progress reports the progress of long-running scans.
package progress

import (
	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

// Sink receives progress of a scan: Start once with the number of steps,
// Tick once per finished step, Done at the end.
type Sink interface {
	Start(total int)
	Tick()
	Done()
}

// Nop discards progress.
type Nop struct{}

func (Nop) Start(int) {}
func (Nop) Tick()     {}
func (Nop) Done()     {}

// OrNop returns s, or Nop when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop{}
	}
	return s
}

// Bar renders progress as a terminal progress bar.
type Bar struct {
	title string
	bar   *pterm.ProgressbarPrinter
}

// NewBar creates a progress bar sink with the given title.
func NewBar(title string) *Bar {
	return &Bar{title: title}
}

func (b *Bar) Start(total int) {
	if total <= 0 {
		return
	}
	b.bar, _ = pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(b.title).
		WithRemoveWhenDone(true).
		Start()
}

func (b *Bar) Tick() {
	if b.bar != nil {
		b.bar.Increment()
	}
}

func (b *Bar) Done() {
	if b.bar != nil {
		_, _ = b.bar.Stop()
		b.bar = nil
	}
}

// Log reports progress through a logger at debug level, with the start and
// end of the scan at info level.
type Log struct {
	log   *zap.Logger
	what  string
	total int
	done  int
}

// NewLog creates a logging sink. what names the unit being scanned.
func NewLog(log *zap.Logger, what string) *Log {
	return &Log{log: log, what: what}
}

func (l *Log) Start(total int) {
	l.total, l.done = total, 0
	l.log.Info("scan started", zap.String("unit", l.what), zap.Int("total", total))
}

func (l *Log) Tick() {
	l.done++
	l.log.Debug("scan progress",
		zap.String("unit", l.what),
		zap.Int("done", l.done),
		zap.Int("total", l.total))
}

func (l *Log) Done() {
	l.log.Info("scan finished", zap.String("unit", l.what), zap.Int("done", l.done))
}

// Multi fans progress out to several sinks.
type Multi []Sink

func (m Multi) Start(total int) {
	for _, s := range m {
		s.Start(total)
	}
}

func (m Multi) Tick() {
	for _, s := range m {
		s.Tick()
	}
}

func (m Multi) Done() {
	for _, s := range m {
		s.Done()
	}
}
