// Package cmd is the heliobind command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/heliolang/heliobind/bind"
	"github.com/heliolang/heliobind/scanner"
	"github.com/heliolang/heliobind/target"
)

// Execute runs the heliobind CLI with the given version string.
func Execute(version string) {
	cmd := &cli.Command{
		Name:                   "heliobind",
		Usage:                  "Generate Helio runtime bindings from annotated Go declarations",
		Version:                version,
		UseShortOptionHandling: true,
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "Generate bindings for the manifest's targets",
				ArgsUsage: "[target...]",
				Flags: append(commonFlags(),
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Regenerate whenever annotated sources change",
					},
				),
				Action: generateAction,
			},
			{
				Name:      "scan",
				Usage:     "Dry run: report how declarations classify, writing nothing",
				ArgsUsage: "[file.go...]",
				Flags:     append(commonFlags(), &cli.StringFlag{Name: "target", Aliases: []string{"t"}}),
				Action:    scanAction,
			},
			{
				Name:   "targets",
				Usage:  "List the manifest's targets in build order",
				Flags:  commonFlags(),
				Action: targetsAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "manifest",
			Aliases: []string{"m"},
			Usage:   "Manifest file",
			Value:   target.DefaultManifest,
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Debug logging",
		},
		&cli.BoolFlag{
			Name:    "no-color",
			Aliases: []string{"C"},
			Usage:   "Disable ANSI color output",
		},
	}
}

// colorEnabled mirrors NO_COLOR convention plus a TTY check, so piped
// output stays clean.
func colorEnabled(cmd *cli.Command, fd uintptr) bool {
	if cmd.Bool("no-color") || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(fd))
}

func newLogger(cmd *cli.Command) zerolog.Logger {
	level := zerolog.InfoLevel
	if cmd.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    !colorEnabled(cmd, os.Stderr.Fd()),
		TimeFormat: time.Kitchen,
	}).Level(level).With().Timestamp().Logger()
}

func loadRunner(cmd *cli.Command) (*target.Runner, *target.Manifest, error) {
	path := cmd.String("manifest")
	m, err := target.Load(path)
	if err != nil {
		return nil, nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, err
	}
	return target.NewRunner(m, filepath.Dir(abs), newLogger(cmd)), m, nil
}

// closure returns the named targets plus everything they transitively
// use, or every target when names is empty.
func closure(m *target.Manifest, names []string) (map[string]bool, error) {
	need := map[string]bool{}
	if len(names) == 0 {
		for _, t := range m.Targets {
			need[t.Name] = true
		}
		return need, nil
	}
	byName := map[string]*target.Target{}
	for _, t := range m.Targets {
		byName[t.Name] = t
	}
	var visit func(t *target.Target)
	visit = func(t *target.Target) {
		if need[t.Name] {
			return
		}
		need[t.Name] = true
		for _, u := range t.Uses {
			visit(byName[u])
		}
	}
	for _, name := range names {
		if byName[name] == nil {
			return nil, fmt.Errorf("unknown target %q", name)
		}
		visit(byName[name])
	}
	return need, nil
}

func generateAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("watch") && cmd.NArg() > 0 {
		return fmt.Errorf("--watch regenerates every target; drop the target arguments")
	}
	r, m, err := loadRunner(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("watch") {
		return r.Watch(ctx)
	}
	need, err := closure(m, cmd.Args().Slice())
	if err != nil {
		return err
	}
	ordered, err := r.Targets()
	if err != nil {
		return err
	}
	reg := bind.NewRegistry()
	for _, t := range ordered {
		if need[t.Name] {
			if err := r.Generate(t, reg); err != nil {
				return err
			}
		}
	}
	return nil
}

func scanAction(_ context.Context, cmd *cli.Command) error {
	color := colorEnabled(cmd, os.Stdout.Fd())

	// bare files scan without a manifest
	if cmd.NArg() > 0 {
		return scanFiles(cmd.Args().Slice(), color)
	}

	r, m, err := loadRunner(cmd)
	if err != nil {
		return err
	}
	var names []string
	if t := cmd.String("target"); t != "" {
		names = []string{t}
	}
	need, err := closure(m, names)
	if err != nil {
		return err
	}
	ordered, err := r.Targets()
	if err != nil {
		return err
	}

	reg := bind.NewRegistry()
	unsupported := 0
	for _, t := range ordered {
		// used targets still build so cross-target types classify, but
		// only the requested closure reports
		mod, _, err := r.BuildModel(t, reg)
		if err != nil {
			return err
		}
		if need[t.Name] {
			unsupported += printReport(os.Stdout, t, mod, color)
		}
	}
	if unsupported > 0 {
		return fmt.Errorf("%d declaration(s) would not bind", unsupported)
	}
	return nil
}

// scanFiles reports classification for bare annotated files, no
// manifest involved. The files must form one complete target.
func scanFiles(paths []string, color bool) error {
	reg := bind.NewRegistry()
	srcs := make([]bind.RecordSource, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		srcs = append(srcs, scanner.New(p, string(data), scanner.DefaultTags()))
	}
	m, err := bind.NewBuilder(reg).Build(srcs...)
	if err != nil {
		return err
	}
	bind.NewClassifier(reg).Resolve(m)
	n := printReport(os.Stdout, &target.Target{Name: strings.Join(paths, " ")}, m, color)
	if n > 0 {
		return fmt.Errorf("%d declaration(s) would not bind", n)
	}
	return nil
}

func targetsAction(_ context.Context, cmd *cli.Command) error {
	r, _, err := loadRunner(cmd)
	if err != nil {
		return err
	}
	ordered, err := r.Targets()
	if err != nil {
		return err
	}
	for _, t := range ordered {
		line := fmt.Sprintf("%-15s package %s", t.Name, t.Package)
		if len(t.Uses) > 0 {
			line += fmt.Sprintf("  (uses %v)", t.Uses)
		}
		fmt.Println(line)
	}
	return nil
}
