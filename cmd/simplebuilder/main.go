package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"github.com/calumari/simplebuilder/internal/compilerargs"
	"github.com/calumari/simplebuilder/internal/diag"
	"github.com/calumari/simplebuilder/internal/generator"
)

// deriveVersion inspects build info for module version or vcs revision.
// preference order: module semantic version -> short commit hash -> "devel".
func deriveVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "devel"
	}
	if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value[:min(len(s.Value), 12)]
		}
	}
	return "devel"
}

// pairs collects repeated -A key=value flags.
type pairs []string

func (p *pairs) String() string { return strings.Join(*p, ",") }

func (p *pairs) Set(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("empty argument")
	}
	*p = append(*p, v)
	return nil
}

func main() {
	var (
		dir      string
		confPath string
		denyCSV  string
		verbose  bool
		args     pairs
	)
	flag.StringVar(&dir, "dir", ".", "Directory package patterns are resolved against")
	flag.Var(&args, "A", "Generator argument as key=value, e.g. -A simplebuilder.suffix=Maker (repeatable)")
	flag.StringVar(&confPath, "config", "", "YAML file of generator arguments, overridden by -A")
	flag.StringVar(&denyCSV, "deny", "", "Comma-separated annotation deny-list replacing the default")
	flag.BoolVar(&verbose, "v", false, "Log debug output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [packages]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nSimplebuilder generates fluent builders for types marked //simplebuilder:builder.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s -A simplebuilder.suffix=Maker ./...\n", os.Args[0])
	}
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := diag.NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	argMap := map[string]string{}
	if confPath != "" {
		if err := compilerargs.LoadFile(argMap, confPath); err != nil {
			fmt.Fprintf(os.Stderr, "simplebuilder: %v\n", err)
			os.Exit(1)
		}
	}
	compilerargs.ParsePairs(argMap, args)

	opts := []generator.Option{
		generator.WithDir(dir),
		generator.WithPatterns(flag.Args()...),
		generator.WithArgs(argMap),
		generator.WithLogger(logger),
		generator.WithReporter(diag.NewLogReporter(logger)),
		generator.WithCommand(displayCommand(dir, confPath, denyCSV, args, flag.Args()), deriveVersion()),
	}
	if denyCSV != "" {
		var deny []string
		for p := range strings.SplitSeq(denyCSV, ",") {
			if p = strings.TrimSpace(p); p != "" {
				deny = append(deny, p)
			}
		}
		opts = append(opts, generator.WithDeny(deny...))
	}

	cfg, err := generator.NewConfig(opts...)
	if err == nil {
		err = generator.Run(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "simplebuilder: %v\n", err)
		os.Exit(1)
	}
}

// displayCommand builds a canonical command line instead of raw argv, which
// may include build cache paths.
func displayCommand(dir, confPath, denyCSV string, args pairs, patterns []string) string {
	parts := []string{"simplebuilder"}
	if dir != "." {
		parts = append(parts, "-dir="+dir)
	}
	if confPath != "" {
		parts = append(parts, "-config="+confPath)
	}
	if denyCSV != "" {
		parts = append(parts, "-deny="+denyCSV)
	}
	for _, a := range args {
		parts = append(parts, "-A", a)
	}
	parts = append(parts, patterns...)
	return strings.Join(parts, " ")
}
