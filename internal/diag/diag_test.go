package diag

import (
	"bytes"
	"go/token"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Kind: Warning, Pos: token.Position{Filename: "a.go", Line: 3, Column: 1}, Target: "User", Message: "dropped"}
	assert.Equal(t, "a.go:3:1: warning: User: dropped", d.String())
	assert.Equal(t, "error: boom", Diagnostic{Kind: Error, Message: "boom"}.String())
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	r := NewLogReporter(logger)

	Warnf(r, token.Position{}, "User", "method %s dropped", "Name")
	Errorf(r, token.Position{Filename: "u.go", Line: 1}, "User", "failed")
	Errorf(r, token.Position{}, "Order", "failed")

	require.Equal(t, 2, r.Errors())
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `msg="method Name dropped"`)
	assert.Contains(t, out, "target=User")
	assert.Contains(t, out, "pos=u.go:1")
}

func TestCollector(t *testing.T) {
	var c Collector
	tee := Tee{&c, NewLogReporter(nil)}
	Warnf(tee, token.Position{}, "A", "one")
	Errorf(tee, token.Position{}, "A", "two")
	Warnf(tee, token.Position{}, "B", "three")

	assert.Len(t, c.Diagnostics, 3)
	assert.Equal(t, []string{"one", "three"}, c.Messages(Warning))
	assert.Equal(t, []string{"two"}, c.Messages(Error))
	assert.Empty(t, c.Of(Note))
}
