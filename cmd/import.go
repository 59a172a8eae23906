package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/SAP-F-2025/ielts-trainer/internal/services"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import questions from an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		sheet, _ := cmd.Flags().GetString("sheet")
		if path == "" {
			return errors.New("--file is required")
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		importer := services.NewImportService(a.repo.Question(), a.serviceLogger("import"), a.validator)
		summary, err := importer.ImportQuestionsFromExcel(cmd.Context(), f, sheet)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "rows: %d, imported: %d, rejected: %d (%s)\n",
			summary.ProcessedRows, summary.SuccessCount, summary.ErrorCount, summary.ProcessingTime)
		for _, e := range summary.Errors {
			fmt.Fprintf(out, "  row %d: %s %s\n", e.Row, e.Field, e.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("file", "f", "", "path to the .xlsx file")
	importCmd.Flags().String("sheet", "", "sheet name (defaults to the first sheet)")
}
