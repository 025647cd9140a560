package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/color-game/contest/api"
	"github.com/color-game/contest/colors"
	"github.com/color-game/contest/config"
	"github.com/color-game/contest/datastore"
	"github.com/color-game/contest/ledger"
	"github.com/color-game/contest/models"
	"github.com/color-game/contest/scheduler"
	"github.com/color-game/contest/scoring"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// session is the opened store and ledger shared by the ledger commands
type session struct {
	cfg     config.Config
	logger  *slog.Logger
	store   datastore.KeyValueStore
	ledger  *ledger.Ledger
	palette []models.PaletteColor
}

func openSession(ctx context.Context) (*session, error) {
	logger := newLogger()
	cfg, err := config.Load(globalFlags.configFile)
	if err != nil {
		return nil, err
	}

	palette, err := colors.LoadPalette(cfg.PaletteFile)
	if err != nil {
		return nil, err
	}

	store, err := datastore.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreBackend, err)
	}

	l, err := ledger.New(ctx, store,
		ledger.WithLogger(logger),
		ledger.WithKeyPrefix(cfg.StoreKeyPrefix),
	)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &session{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		ledger:  l,
		palette: palette,
	}, nil
}

func (rt *session) Close() {
	if err := rt.store.Close(); err != nil {
		rt.logger.Error("failed to close store", "error", err)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the contest HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()
			setMaxProcs(rt.logger)

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			app, err := api.NewApplication(rt.cfg, rt.ledger, rt.palette, reg, rt.logger)
			if err != nil {
				return err
			}

			backups := scheduler.NewScheduler(rt.ledger, rt.cfg.BackupDir, rt.cfg.BackupInterval, rt.logger)
			backups.Start()
			defer backups.Stop()

			rt.logger.Info("color contest starting",
				"version", version,
				"backend", rt.cfg.StoreBackend,
				"metric", string(app.Metric),
				"palette", len(rt.palette),
			)
			return app.Serve(ctx, http.NewServeMux())
		},
	}
}

// parseColorArgs accepts either "#rrggbb" or three numbers "l c h"
func parseColorArgs(args []string) (models.ColorSample, error) {
	switch len(args) {
	case 1:
		return colors.FromHex(args[0])
	case 3:
		var values [3]float64
		for i, arg := range args {
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return models.ColorSample{}, fmt.Errorf("invalid number %q", arg)
			}
			values[i] = v
		}
		sample := models.ColorSample{L: values[0], C: values[1], H: values[2], Alpha: 1}
		if !colors.Valid(sample) {
			return models.ColorSample{}, errors.New("l must be in [0,1] and c must not be negative")
		}
		return sample, nil
	}
	return models.ColorSample{}, errors.New("expected #rrggbb or l c h")
}

func describeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <#rrggbb | l c h>",
		Short: "Describe a color",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := parseColorArgs(args)
			if err != nil {
				return err
			}
			cfg, err := config.Load(globalFlags.configFile)
			if err != nil {
				return err
			}
			palette, err := colors.LoadPalette(cfg.PaletteFile)
			if err != nil {
				return err
			}
			printDescription(cmd.OutOrStdout(), sample, colors.Describe(sample, palette))
			return nil
		},
	}
}

func randomCommand() *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Pick a random primer color",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			sample := colors.RandomSample(rand.New(rand.NewSource(seed)))
			printDescription(cmd.OutOrStdout(), sample, colors.Describe(sample, nil))
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 picks one from the clock")
	return cmd
}

func rankCommand() *cobra.Command {
	var (
		metricName string
		tags       string
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank entries against the reference color",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if metricName == "" {
				metricName = rt.cfg.ScoringMetric
			}
			metric, err := colors.ParseMetric(metricName)
			if err != nil {
				return err
			}

			state := rt.ledger.Snapshot()
			entries := ledger.FilterByAnyTag(state.Entries, splitTags(tags))
			printRanking(cmd.OutOrStdout(), models.RankingResponse{
				ReferenceColor: state.ReferenceColor,
				Metric:         string(metric),
				Entries:        scoring.Rank(entries, state.ReferenceColor, metric),
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&metricName, "metric", "", "distance metric (oklab or ciede2000)")
	cmd.Flags().StringVar(&tags, "tags", "", "only rank entries carrying any of these comma separated tags")
	return cmd
}

func splitTags(raw string) []string {
	var out []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func exportCommand() *cobra.Command {
	var (
		noTags bool
		tags   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entries as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			buf, err := rt.ledger.ExportFilteredEntries(splitTags(tags), !noTags)
			if err != nil {
				return err
			}

			if output == "-" {
				_, err = cmd.OutOrStdout().Write(append(buf, '\n'))
				return err
			}
			if output == "" {
				output = ledger.ExportFilename(time.Now())
			}
			if err := os.WriteFile(output, buf, 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "exported entries to %s", output)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noTags, "no-tags", false, "omit tags from the export")
	cmd.Flags().StringVar(&tags, "tags", "", "only export entries carrying any of these comma separated tags")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default contest-entries-<ms>.json)")
	return cmd
}

func importCommand() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import entries from an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}

			rt, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			var result models.ImportResult
			if replace {
				result = rt.ledger.ReplaceAllEntries(cmd.Context(), data)
			} else {
				result = rt.ledger.ImportEntries(cmd.Context(), data)
			}
			if !result.Success {
				return fmt.Errorf("import failed: %s", result.Error)
			}
			printSuccess(cmd.OutOrStdout(), "imported %d entries", result.Count)
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "replace every existing entry and tag")
	return cmd
}

func resetCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every entry, tag and the reference color",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to reset without --yes")
			}
			rt, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.ledger.Reset(cmd.Context()); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "contest reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func hashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := models.GenerateHash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func referenceCommand() *cobra.Command {
	var clearRef bool
	cmd := &cobra.Command{
		Use:   "reference [#rrggbb | l c h]",
		Short: "Show, set or clear the reference color",
		Args:  cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			switch {
			case clearRef:
				if err := rt.ledger.SetReferenceColor(cmd.Context(), nil); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "reference color cleared")
				return nil
			case len(args) > 0:
				sample, err := parseColorArgs(args)
				if err != nil {
					return err
				}
				if err := rt.ledger.SetReferenceColor(cmd.Context(), &sample); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "reference color set")
			}

			ref := rt.ledger.ReferenceColor()
			if ref == nil {
				printWarning(cmd.OutOrStdout(), "no reference color set")
				return nil
			}
			printDescription(cmd.OutOrStdout(), *ref, colors.Describe(*ref, rt.palette))
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearRef, "clear", false, "remove the reference color")
	return cmd
}
