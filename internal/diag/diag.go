// Package diag carries generator diagnostics from the analysis passes to
// whoever runs them.
package diag

import (
	"fmt"
	"go/token"
	"strings"
	"sync"
)

// Kind is the severity of a diagnostic.
type Kind int

const (
	Note Kind = iota
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "note"
	}
}

// Diagnostic is a single message about a target declaration.
type Diagnostic struct {
	Kind    Kind
	Pos     token.Position
	Target  string
	Message string
}

func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Pos.IsValid() {
		b.WriteString(d.Pos.String())
		b.WriteString(": ")
	}
	b.WriteString(d.Kind.String())
	b.WriteString(": ")
	if d.Target != "" {
		b.WriteString(d.Target)
		b.WriteString(": ")
	}
	b.WriteString(d.Message)
	return b.String()
}

// Reporter receives diagnostics.
type Reporter interface {
	Report(Diagnostic)
}

// Warnf reports a formatted warning for target.
func Warnf(r Reporter, pos token.Position, target, format string, args ...any) {
	r.Report(Diagnostic{Kind: Warning, Pos: pos, Target: target, Message: fmt.Sprintf(format, args...)})
}

// Errorf reports a formatted error for target.
func Errorf(r Reporter, pos token.Position, target, format string, args ...any) {
	r.Report(Diagnostic{Kind: Error, Pos: pos, Target: target, Message: fmt.Sprintf(format, args...)})
}

// LogReporter writes diagnostics to a Logger and counts errors.
type LogReporter struct {
	logger Logger
	mu     sync.Mutex
	errors int
}

func NewLogReporter(logger Logger) *LogReporter {
	if logger == nil {
		logger = NopLogger{}
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(d Diagnostic) {
	attrs := []any{"target", d.Target}
	if d.Pos.IsValid() {
		attrs = append(attrs, "pos", d.Pos.String())
	}
	switch d.Kind {
	case Error:
		r.mu.Lock()
		r.errors++
		r.mu.Unlock()
		r.logger.Error(d.Message, attrs...)
	case Warning:
		r.logger.Warn(d.Message, attrs...)
	default:
		r.logger.Info(d.Message, attrs...)
	}
}

// Errors returns the number of error diagnostics reported so far.
func (r *LogReporter) Errors() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors
}

// Collector records diagnostics in memory.
type Collector struct {
	Diagnostics []Diagnostic
}

func (c *Collector) Report(d Diagnostic) { c.Diagnostics = append(c.Diagnostics, d) }

// Of returns the collected diagnostics of kind k in report order.
func (c *Collector) Of(k Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.Diagnostics {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// Messages returns the messages of kind k.
func (c *Collector) Messages(k Kind) []string {
	var out []string
	for _, d := range c.Of(k) {
		out = append(out, d.Message)
	}
	return out
}

// Tee forwards every diagnostic to all reporters.
type Tee []Reporter

func (t Tee) Report(d Diagnostic) {
	for _, r := range t {
		r.Report(d)
	}
}
