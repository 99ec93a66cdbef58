package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate and store one quote for the current hour",
		Long: `Generate one quote using the parameters configured for the current hour
and append it to today's log. Meant to be triggered hourly by cron or a CI
schedule. Exits non-zero if generation or storage fails; a failed generation
stores nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := bootstrap(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close(context.WithoutCancel(ctx))

			svc, _, err := rt.generationService()
			if err != nil {
				return err
			}

			rec, err := svc.Run(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(rec)
		},
	}
}
