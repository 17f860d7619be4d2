package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"

	"ledger_import/internal/services/importer"

	"github.com/spf13/cobra"
)

func newImportFileCmd() *cobra.Command {
	var typ, path string

	cmd := &cobra.Command{
		Use:   "import-file",
		Short: "Import one xlsx/csv file (local path, s3:// or https://)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if typ == "" || path == "" {
				return errors.New("--type and --path are required")
			}

			ctx, a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			src := path
			if !strings.Contains(path, "://") {
				abs, err := filepath.Abs(path)
				if err != nil {
					return err
				}
				src = "file://" + abs
			}

			res, err := a.importer.Import(ctx, importer.Request{Type: typ, FilePath: src})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"type":             res.Type,
				"table":            res.Table,
				"format":           res.Format,
				"rows":             res.Rows,
				"stored":           res.Stored,
				"warnings":         len(res.Warnings),
				"sha256":           res.SHA256,
				"import_record_id": res.ImportRecordID,
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "import type: payments or an acts table")
	cmd.Flags().StringVar(&path, "path", "", "file to import")
	return cmd
}
