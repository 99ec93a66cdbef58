package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/hourly-quotes/internal/adapters/http/views"
	"github.com/jsamuelsen/hourly-quotes/internal/adapters/site"
)

func newBuildCmd(opts *rootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the site and a JSON snapshot into a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := bootstrap(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close(context.WithoutCancel(ctx))

			if outDir == "" {
				outDir = rt.cfg.Site.OutDir
			}

			tmpl, err := views.Parse(rt.loc)
			if err != nil {
				return err
			}

			builder, err := site.New(site.Config{
				Reader:    rt.queryService(),
				Templates: tmpl,
				OutDir:    outDir,
				Title:     rt.cfg.Site.Title,
				Workers:   rt.cfg.Store.ReadConcurrency,
				Logger:    rt.logger,
			})
			if err != nil {
				return err
			}

			res, err := builder.Build(ctx)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d files (%d days) to %s\n", res.Files, res.Days, res.OutDir)

			return err
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default site.out_dir)")

	return cmd
}
