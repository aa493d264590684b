package main

import (
	"fmt"

	"github.com/phrazzld/vocabflow/internal/importer"
	"github.com/phrazzld/vocabflow/internal/service/learning"
	"github.com/spf13/cobra"
)

func newImportCmd(opts *options) *cobra.Command {
	var (
		learnerID string
		cfg       = importer.DefaultConfig()
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.csv>",
		Short: "Import a word list into a learner's library",
		Long: `Reads words from a spreadsheet or CSV file and adds them to the
learner's library as NEW words. Words already in the library are skipped.

By default column A holds the word, B the meaning and C an example
sentence, and the first row is a header.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := importer.ParseFile(args[0], cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, msg := range result.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", msg)
			}
			fmt.Fprintf(out, "parsed %d rows: %d words, %d skipped\n", result.Rows, len(result.Words), result.Skipped)
			if dryRun || len(result.Words) == 0 {
				return nil
			}

			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			svc, err := e.service()
			if err != nil {
				return err
			}

			imported, err := svc.ImportWords(cmd.Context(), learnerID, result.Words, learning.SourceSpreadsheet)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "imported %d words, %d already in the library\n", len(imported.Words), imported.Skipped)
			return nil
		},
	}

	learnerFlag(cmd, &learnerID)
	cmd.Flags().StringVar(&cfg.SheetName, "sheet", cfg.SheetName, "sheet to read (xlsx only, default first sheet)")
	cmd.Flags().StringVar(&cfg.WordColumn, "word-col", cfg.WordColumn, "column holding the word")
	cmd.Flags().StringVar(&cfg.MeaningColumn, "meaning-col", cfg.MeaningColumn, "column holding the meaning")
	cmd.Flags().StringVar(&cfg.ExampleColumn, "example-col", cfg.ExampleColumn, "column holding the example sentence")
	cmd.Flags().IntVar(&cfg.StartRow, "start-row", cfg.StartRow, "first data row (1-based)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the file without writing to the database")
	return cmd
}
