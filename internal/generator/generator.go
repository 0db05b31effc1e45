// Package generator discovers builder targets in loaded Go packages and
// writes one builder source file per target.
package generator

import (
	"errors"
	"io"
	"maps"
	"os"

	"github.com/calumari/simplebuilder/internal/annotation"
	"github.com/calumari/simplebuilder/internal/diag"
)

var (
	// ErrUnsupportedGoVersion is returned when a target module declares a Go
	// version older than generated code needs.
	ErrUnsupportedGoVersion = errors.New("simplebuilder: generated builders require go 1.21 or later")
	// ErrTargetsFailed is returned after a run in which at least one target
	// could not be generated.
	ErrTargetsFailed = errors.New("builder generation failed")
)

// OutputFactory opens the file a generated builder is written to.
type OutputFactory func(path string) (io.WriteCloser, error)

// FileOutput creates or truncates path on disk.
func FileOutput(path string) (io.WriteCloser, error) { return os.Create(path) }

// Config holds generation settings.
type Config struct {
	Dir      string   // directory patterns are resolved against
	Patterns []string // package patterns, "./" when empty
	// Args are the compiler arguments, keys with or without the
	// simplebuilder. prefix.
	Args map[string]string
	// Deny replaces the annotation deny-list when non-nil.
	Deny     []string
	Output   OutputFactory
	Logger   diag.Logger
	Reporter diag.Reporter
	Command  string // invocation recorded in the file header
	Version  string // simplebuilder build version
}

// Option configures a Config.
type Option func(*Config) error

// NewConfig applies opts over the zero Config.
func NewConfig(opts ...Option) (Config, error) {
	var c Config
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return Config{}, err
		}
	}
	return c, nil
}

func WithDir(dir string) Option {
	return func(c *Config) error {
		c.Dir = dir
		return nil
	}
}

func WithPatterns(patterns ...string) Option {
	return func(c *Config) error {
		c.Patterns = append(c.Patterns, patterns...)
		return nil
	}
}

// WithArgs merges args into the compiler arguments. Later calls win.
func WithArgs(args map[string]string) Option {
	return func(c *Config) error {
		if c.Args == nil {
			c.Args = map[string]string{}
		}
		maps.Copy(c.Args, args)
		return nil
	}
}

// WithDeny replaces the annotation deny-list.
func WithDeny(patterns ...string) Option {
	return func(c *Config) error {
		c.Deny = patterns
		return nil
	}
}

func WithOutput(out OutputFactory) Option {
	return func(c *Config) error {
		if out == nil {
			return errors.New("output factory cannot be nil")
		}
		c.Output = out
		return nil
	}
}

func WithLogger(l diag.Logger) Option {
	return func(c *Config) error {
		c.Logger = l
		return nil
	}
}

func WithReporter(r diag.Reporter) Option {
	return func(c *Config) error {
		c.Reporter = r
		return nil
	}
}

// WithCommand records the invocation and build version in file headers.
func WithCommand(command, version string) Option {
	return func(c *Config) error {
		c.Command, c.Version = command, version
		return nil
	}
}

// Run generates builders for every target found in the configured
// packages. A failing target is reported and skipped; Run then returns
// ErrTargetsFailed once every other target has been written.
func Run(cfg Config) error { return newGenerator(cfg).run() }

// generator holds the state of one run.
type generator struct {
	cfg      Config
	logger   diag.Logger
	reporter diag.Reporter
	errors   *errorCounter
	filter   annotation.Filter
	source   annotation.Source

	// index maps target declarations to their resolved builder names so
	// properties of target types get a nested builder consumer.
	index map[string]*target
}

func newGenerator(cfg Config) *generator {
	g := &generator{cfg: cfg, logger: cfg.Logger, errors: &errorCounter{}, index: map[string]*target{}}
	if g.logger == nil {
		g.logger = diag.NopLogger{}
	}
	if g.cfg.Output == nil {
		g.cfg.Output = FileOutput
	}
	if cfg.Reporter != nil {
		g.reporter = diag.Tee{cfg.Reporter, g.errors}
	} else {
		g.reporter = diag.Tee{diag.NewLogReporter(g.logger), g.errors}
	}
	if cfg.Deny != nil {
		g.filter = annotation.NewFilter(cfg.Deny...)
	} else {
		g.filter = annotation.DefaultFilter()
	}
	g.source = annotation.NewSource(g.logger)
	return g
}

// errorCounter counts error diagnostics.
type errorCounter struct{ n int }

func (c *errorCounter) Report(d diag.Diagnostic) {
	if d.Kind == diag.Error {
		c.n++
	}
}
