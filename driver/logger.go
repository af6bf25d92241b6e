package driver

import "github.com/cpmech/gosl/io"

// Logger is a thin wrapper around gosl/io's colour-printing functions,
// passed explicitly to the driver and anything it calls — never a
// package-global, per spec §9's "global scheduler/clock" design note.
type Logger struct {
	Quiet bool
}

// NewLogger returns a Logger that prints via gosl/io.
func NewLogger() *Logger { return &Logger{} }

// Infof prints a plain informational line.
func (l *Logger) Infof(format string, args ...interface{}) {
	if l == nil || l.Quiet {
		return
	}
	io.Pf(format+"\n", args...)
}

// Warnf prints a yellow warning line (solver divergence, anti-pileup
// skips — the non-fatal cases spec §7 names).
func (l *Logger) Warnf(format string, args ...interface{}) {
	if l == nil || l.Quiet {
		return
	}
	io.Pfyel(format+"\n", args...)
}

// Errorf prints a red error line, for the abort path.
func (l *Logger) Errorf(format string, args ...interface{}) {
	if l == nil || l.Quiet {
		return
	}
	io.PfRed(format+"\n", args...)
}

// Okf prints a green success line (e.g. frame saved, run finished).
func (l *Logger) Okf(format string, args ...interface{}) {
	if l == nil || l.Quiet {
		return
	}
	io.PfGreen(format+"\n", args...)
}
