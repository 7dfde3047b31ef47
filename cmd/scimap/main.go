package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"scimap/internal/config"
	"scimap/internal/geom"
	"scimap/internal/tui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run returns the process exit code so deferred cleanup, including the log
// file, always happens before exit.
func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("scimap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	markers := fs.String("markers", "", "marker file (.geojson, .json, .csv, .kml) shown over the atlas")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: scimap [-markers file] [atlas.yaml]\n\n")
		fs.PrintDefaults()
		fmt.Fprintln(stderr)
		_ = config.Usage()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "scimap:", err)
		return 1
	}

	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "scimap")
		if err != nil {
			fmt.Fprintln(stderr, "scimap:", err)
			return 1
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// fail reports to stderr; the standard logger now points at the log file.
	fail := func(msg string, err error, attrs ...any) int {
		logger.Error(msg, append(attrs, "err", err)...)
		fmt.Fprintln(stderr, "scimap:", err)
		return 1
	}

	opts := tui.Options{Config: *cfg, Logger: logger}
	if p := fs.Arg(0); p != "" {
		a, err := geom.LoadAtlas(p)
		if err != nil {
			return fail("load atlas", err, "path", p)
		}
		opts.Atlas = a
	}
	if *markers != "" {
		ms, err := geom.LoadMarkers(*markers)
		if err != nil {
			return fail("load markers", err, "path", *markers)
		}
		opts.Markers = ms
	}

	m, err := tui.New(opts)
	if err != nil {
		return fail("start viewer", err)
	}
	logger.Info("starting", "extent", m.Viewport().Extent(), "zoomMin", cfg.ZoomMin, "zoomMax", cfg.ZoomMax)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		return fail("program exited", err)
	}
	return 0
}
