package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"lgpsreport/internal/compile"
	"lgpsreport/internal/config"
	"lgpsreport/internal/exporter"
	"lgpsreport/internal/files"
	"lgpsreport/internal/infrastructure"
	"lgpsreport/internal/insights"
	"lgpsreport/internal/operations"
	"lgpsreport/internal/validation"
)

const (
	modeReconstruct = "reconstruct"
	modeCompile     = "compile"
)

type options struct {
	in         string
	out        string
	mode       string
	filter     string
	dryRun     bool
	configFile string
	formats    string
	watch      bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("compiler", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.in, "in", "", "input directory (defaults to data/raw relative to the executable)")
	fs.StringVar(&opts.out, "out", "", "output directory (defaults to data/reports, or data/compiled in compile mode)")
	fs.StringVar(&opts.mode, "mode", modeReconstruct, "reconstruct or compile")
	fs.StringVar(&opts.filter, "filter", "", "comma-separated keywords; input files matching none of them are deleted first")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "report what -filter would delete without deleting")
	fs.StringVar(&opts.configFile, "config", "", "configuration file")
	fs.StringVar(&opts.formats, "formats", "", "comma-separated output formats (reconstruct mode)")
	fs.BoolVar(&opts.watch, "watch", false, "keep running and rebuild when the input directory changes")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.mode != modeReconstruct && opts.mode != modeCompile {
		return opts, fmt.Errorf("unknown mode %q (want %s or %s)", opts.mode, modeReconstruct, modeCompile)
	}
	for _, f := range splitList(opts.formats) {
		if !config.IsKnownFormat(f) {
			return opts, fmt.Errorf("unknown format %q", f)
		}
	}
	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Compiler failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

// run applies opts to cfg and executes one batch, or keeps rebuilding on
// changes when -watch is set.
func run(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger, stdout io.Writer) error {
	if opts.in != "" {
		cfg.Paths.RawDir = opts.in
	}
	if opts.out != "" {
		cfg.Paths.ReportsDir = opts.out
		cfg.Paths.CompiledDir = opts.out
	}
	if formats := splitList(opts.formats); len(formats) > 0 {
		cfg.Report.Formats = formats
	}

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputDirectory(paths.RawDir); err != nil {
		return err
	}
	outDir := paths.ReportsDir
	if opts.mode == modeCompile {
		outDir = paths.CompiledDir
	}
	if err := validator.ValidateOutputDirectory(outDir); err != nil {
		return err
	}

	if keywords := splitList(opts.filter); len(keywords) > 0 {
		deleted, err := files.NewManager(paths, logger).DeleteUnwanted(paths.RawDir, keywords, cfg.Report.FilterExts, opts.dryRun)
		if err != nil {
			return err
		}
		for _, name := range deleted {
			fmt.Fprintf(stdout, "removed %s\n", name)
		}
	}

	batch, exts, err := newBatch(ctx, cfg, paths, opts.mode, logger, stdout)
	if err != nil {
		return err
	}

	if err := batch(ctx); err != nil && !opts.watch {
		return err
	}
	if !opts.watch {
		return nil
	}

	watcher := files.NewWatcher(paths.RawDir, exts, files.DefaultSettle, logger)
	return watcher.Run(ctx, func(ctx context.Context, _ []string) error {
		return batch(ctx)
	})
}

// newBatch returns the work for mode and the extensions it reads.
func newBatch(ctx context.Context, cfg *config.Config, paths *config.Paths, mode string, logger *slog.Logger, stdout io.Writer) (func(context.Context) error, []string, error) {
	if mode == modeCompile {
		return func(ctx context.Context) error {
			return compileReports(ctx, cfg, paths, logger, stdout)
		}, []string{".docx"}, nil
	}

	writer, err := insights.New(ctx, cfg.Insights, logger)
	if err != nil {
		return nil, nil, err
	}
	manager, err := operations.NewPipeline(operations.Dependencies{
		Config:   cfg,
		Paths:    paths,
		Logger:   logger,
		Insights: writer,
	}, operations.NewConfig())
	if err != nil {
		return nil, nil, err
	}

	return func(ctx context.Context) error {
		resp, err := manager.Execute(ctx, operations.OperationRequest{})
		if resp != nil {
			printRun(stdout, resp)
		}
		return err
	}, cfg.Reconstruct.Extensions, nil
}

func printRun(w io.Writer, resp *operations.OperationResponse) {
	fmt.Fprintf(w, "run %s %s in %s\n", resp.ID, resp.Status, resp.Duration)
	for _, doc := range resp.Documents {
		if doc.Skipped {
			fmt.Fprintf(w, "  skipped %s: %s\n", filepath.Base(doc.Source), doc.SkipReason)
		}
	}
	for _, out := range resp.Outputs {
		fmt.Fprintf(w, "  wrote %s\n", out)
	}
}

// compileReports merges the per-fund analysis reports into the compiled
// Word document and its workbook twin.
func compileReports(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger, stdout io.Writer) error {
	found, err := files.NewDiscovery(paths.BaseDir).FindFilesByPattern(paths.RawDir, "*"+config.AnalysisReportSuffix)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return fmt.Errorf("no *%s files in %s", config.AnalysisReportSuffix, paths.RawDir)
	}

	res, err := compile.NewCompiler(logger).Compile(ctx, files.Paths(found))
	if err != nil {
		return err
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(stdout, "  skipped %s: %s\n", filepath.Base(s.Path), s.Reason)
	}

	docPath := paths.CompiledReport()
	if err := compile.WriteDocument(docPath, cfg.Report.Title, res.Records); err != nil {
		return err
	}
	bookPath := filepath.Join(paths.CompiledDir, config.CompiledWorkbookFile)
	if err := exporter.NewXLSXWriter(paths, logger).WriteSheets(bookPath, exporter.CompiledSheetOf(res.Records)); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "compiled %d records from %d documents\n  wrote %s\n  wrote %s\n",
		len(res.Records), res.Documents-len(res.Skipped), docPath, bookPath)
	return nil
}
