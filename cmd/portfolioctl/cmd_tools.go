package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/portfolio-site/portfolio-backend/config"
	"github.com/portfolio-site/portfolio-backend/internal/bootstrap"
	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
	"github.com/portfolio-site/portfolio-backend/internal/logger"
	"github.com/portfolio-site/portfolio-backend/internal/synthesis"
	synthhttp "github.com/portfolio-site/portfolio-backend/internal/synthesis/http"
)

var describeKind string

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Suggest a description for a file",
	Long: `Run the configured description strategy (SYNTHESIS_STRATEGY) over a
file, or stdin when the file is "-".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKindArg(describeKind)
		if err != nil {
			return err
		}

		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		data, err := io.ReadAll(io.LimitReader(r, synthhttp.MaxUploadBytes))
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		zl, err := logger.New(cfg.App.Environment, "warn")
		if err != nil {
			return err
		}
		synth, err := synthesis.New(&cfg.Synthesis, zl)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		fmt.Fprintln(cmd.OutOrStdout(), synth.Synthesize(ctx, kind, string(data)))
		return nil
	},
}

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Snapshot every collection into DATA_DIR now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			if err := app.Mirror.Run(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "snapshots written to %s\n", app.Local.Dir())
			return nil
		})
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <projects|certificates>",
	Short: "Re-add the last mirror snapshot into an empty collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKindArg(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			n, err := app.Mirror.Restore(ctx, kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %d %s\n", n, kind.Collection())
			return nil
		})
	},
}

func init() {
	describeCmd.Flags().StringVar(&describeKind, "kind", string(domain.KindProject), "project or certificate")
}
