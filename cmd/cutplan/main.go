// CutPlan orders the cuts of a laser job so inner content is cut before the
// parts that enclose it, minimizing head travel within each level.
//
// Build:
//   go build -o cutplan ./cmd/cutplan
//
// Usage:
//   cutplan -job part.cutjob -out part.cutplan -pdf part.pdf
//   cutplan -job part.cutjob -profile engrave -compare

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/piwi3910/CutPlan/internal/engine"
	"github.com/piwi3910/CutPlan/internal/export"
	"github.com/piwi3910/CutPlan/internal/project"
)

func main() {
	var (
		jobPath      = flag.String("job", "", "job file to plan")
		settingsPath = flag.String("settings", project.DefaultSettingsPath(), "settings file")
		profile      = flag.String("profile", "", "named profile to use instead of the settings file")
		profilesPath = flag.String("profiles", project.DefaultProfilesPath(), "custom profiles file")
		outPath      = flag.String("out", "", "write the plan to this file")
		xlsxPath     = flag.String("xlsx", "", "export the cut order as a spreadsheet")
		pdfPath      = flag.String("pdf", "", "export the toolpath diagram as PDF")
		dxfPath      = flag.String("dxf", "", "export the toolpath as DXF")
		compare      = flag.Bool("compare", false, "compare the default scenarios and log the results")
		timeout      = flag.Duration("timeout", 0, "cancel planning after this long, 0 for no limit")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *jobPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(logger, options{
		job:      *jobPath,
		settings: *settingsPath,
		profile:  *profile,
		profiles: *profilesPath,
		out:      *outPath,
		xlsx:     *xlsxPath,
		pdf:      *pdfPath,
		dxf:      *dxfPath,
		compare:  *compare,
		timeout:  *timeout,
	}); err != nil {
		logger.Error("planning failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	job, settings, profile, profiles string
	out, xlsx, pdf, dxf              string
	compare                          bool
	timeout                          time.Duration
}

func run(logger *slog.Logger, o options) error {
	settings, err := project.ResolveSettings(o.settings, o.profile, o.profiles)
	if err != nil {
		return err
	}
	job, err := project.LoadJob(o.job)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	planner := engine.New(settings,
		engine.WithLogger(logger),
		engine.WithProgress(func(p engine.Progress) {
			logger.Debug("progress", "done", p.Done, "total", p.Total, "depth", p.Depth)
		}),
	)
	res, err := planner.Plan(ctx, job)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		logger.Warn(w)
	}

	if o.out != "" {
		if err := project.SavePlan(o.out, job, planner.Settings(), res); err != nil {
			return err
		}
		logger.Info("plan saved", "path", o.out)
	}
	if o.xlsx != "" {
		if err := export.ExportXLSX(o.xlsx, job, res); err != nil {
			return fmt.Errorf("xlsx export: %w", err)
		}
	}
	if o.pdf != "" {
		if err := export.ExportPDF(o.pdf, job, res, planner.Settings()); err != nil {
			return fmt.Errorf("pdf export: %w", err)
		}
	}
	if o.dxf != "" {
		if err := export.ExportDXF(o.dxf, res, planner.Settings().Start()); err != nil {
			return fmt.Errorf("dxf export: %w", err)
		}
	}

	if o.compare {
		results := engine.CompareScenarios(ctx, engine.BuildDefaultScenarios(planner.Settings()), job, engine.WithLogger(logger))
		engine.LogComparison(logger, results)
	}
	return nil
}
