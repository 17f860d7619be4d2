package main

import (
	"fmt"

	sheetsreader "ledger_import/internal/adapters/sheets"
	"ledger_import/internal/services/sheetsync"

	"github.com/spf13/cobra"
)

func newSyncActsCmd() *cobra.Command {
	var only string

	cmd := &cobra.Command{
		Use:   "sync-acts",
		Short: "Replace acts tables from the Google Sheets ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.close()

			sh, err := a.cfg.Sheets(ctx)
			if err != nil {
				return err
			}

			tabs := a.tabs
			if only != "" {
				tabs = nil
				for _, t := range a.tabs {
					if t.Sheet == only || t.Table == only {
						tabs = append(tabs, t)
					}
				}
				if len(tabs) == 0 {
					return fmt.Errorf("no configured tab matches %q", only)
				}
			}

			svc := &sheetsync.Service{
				Reader:   sheetsreader.NewReader(sh.Service, sh.SpreadsheetID),
				Importer: a.importer,
				Tabs:     tabs,
			}
			res, err := svc.SyncAll(ctx)
			for _, r := range res {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows, %d warnings\n", r.Table, r.Rows, len(r.Warnings))
			}
			return err
		},
	}
	cmd.Flags().StringVar(&only, "tab", "", "sync a single sheet (by title or table name)")
	return cmd
}
