package cliprint

import "fmt"

// Logger adapts a Printer to the types.Logger seam the core packages
// accept. Debug lines are emitted only in verbose mode.
type Logger struct {
	Printer *Printer
	Verbose bool
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l == nil || !l.Verbose || l.Printer == nil {
		return
	}
	l.Printer.ShowStatus("[debug] " + fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	if l == nil || l.Printer == nil {
		return
	}
	l.Printer.ShowWarning(fmt.Sprintf(format, args...))
}
