package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/phrazzld/vocabflow/internal/domain"
	"github.com/spf13/cobra"
)

func newPlanCmd(opts *options) *cobra.Command {
	var (
		learnerID string
		preview   bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show today's review plan for a learner",
		Long: `Prints the learner's day as the dashboard sees it: streak, the
session breakdown and today's focus words.

Opening the plan applies the daily rollover and, on the first visit of the
day, allocates the focus words and advances the learner's cursor, exactly
like the app does. Use --preview to print the same plan without saving
anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			svc, err := e.service()
			if err != nil {
				return err
			}

			dashboard := svc.Dashboard
			if preview {
				dashboard = svc.PreviewDashboard
			}
			d, err := dashboard(cmd.Context(), learnerID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if d.SetupRequired {
				fmt.Fprintln(out, "database schema missing: run `vocabctl migrate`")
				return nil
			}

			b := d.Breakdown
			fmt.Fprintf(out, "streak: %d days, level %d (%d XP)\n", d.Stats.Streak, d.Profile.Level, d.Profile.XP)
			fmt.Fprintf(out, "session: %d words (%d new, %d review, %d weak), about %d min\n",
				b.Total, b.NewCount, b.ReviewCount, b.WeakCount, b.EstimatedMinutes)
			if b.StoryAvailable && d.NextStory != nil {
				fmt.Fprintf(out, "story: %s\n", d.NextStory.Title)
			}
			fmt.Fprintln(out)
			return printWords(out, "focus words", d.FocusWords)
		},
	}
	learnerFlag(cmd, &learnerID)
	cmd.Flags().BoolVar(&preview, "preview", false, "show the plan without saving the rollover or focus allocation")
	return cmd
}

func newFocusCmd(opts *options) *cobra.Command {
	var learnerID string

	cmd := &cobra.Command{
		Use:   "focus",
		Short: "List today's focus words for a learner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			svc, err := e.service()
			if err != nil {
				return err
			}

			words, err := svc.FocusWords(cmd.Context(), learnerID)
			if err != nil {
				return err
			}
			return printWords(cmd.OutOrStdout(), "focus words", words)
		},
	}
	learnerFlag(cmd, &learnerID)
	return cmd
}

func printWords(out io.Writer, title string, words []domain.WordRecord) error {
	if len(words) == 0 {
		fmt.Fprintf(out, "%s: none\n", title)
		return nil
	}
	fmt.Fprintf(out, "%s:\n", title)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WORD\tSTATUS\tSTRENGTH\tNEXT REVIEW\tMEANING")
	for _, word := range words {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			word.Word, word.Status, word.StrengthScore, word.NextReviewDate.Format("2006-01-02"), word.Meaning)
	}
	return w.Flush()
}
