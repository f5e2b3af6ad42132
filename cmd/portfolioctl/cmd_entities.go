package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/portfolio-site/portfolio-backend/internal/bootstrap"
	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
	"github.com/portfolio-site/portfolio-backend/internal/entities/seed"
)

var listJSON bool

var seedCmd = &cobra.Command{
	Use:   "seed <fixtures.yaml>",
	Short: "Add projects and certificates from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		fx, err := seed.Load(f)
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			res, err := seed.Apply(ctx, app.Catalogs, fx)
			fmt.Fprintf(cmd.OutOrStdout(), "added %d projects, %d certificates\n",
				res.Added[domain.KindProject], res.Added[domain.KindCertificate])
			return err
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list <projects|certificates> [query]",
	Short: "List a collection, newest first",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKindArg(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			c := app.Catalog(kind)
			items := c.List(ctx)
			if len(args) == 2 {
				items = c.Search(ctx, args[1])
			}

			if listJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tTITLE")
			for _, e := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, time.UnixMilli(e.CreatedAt).Format(time.RFC3339), e.Title)
			}
			return tw.Flush()
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <projects|certificates> <id>",
	Short: "Delete one entity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKindArg(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
			if !app.Catalog(kind).Delete(ctx, args[1]) {
				return fmt.Errorf("%s %s not found", kind, args[1])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", kind, args[1])
			return nil
		})
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON")
}

func parseKindArg(s string) (domain.Kind, error) {
	k, ok := domain.ParseKind(s)
	if !ok {
		return "", fmt.Errorf("unknown collection %q, want projects or certificates", s)
	}
	return k, nil
}
