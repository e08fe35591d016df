package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quizwhiz/quizwhiz-backend/apiclient"
	"github.com/quizwhiz/quizwhiz-backend/models"
)

var errNotLoggedIn = errors.New("not logged in: run quizwhiz login first")

func newResultsCmd(flags *globalFlags) *cobra.Command {
	var clear, stats bool
	cmd := &cobra.Command{
		Use:   "results",
		Short: "List your saved quiz results",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, closeStore, err := openStore(ctx, flags)
			if err != nil {
				return err
			}
			defer closeStore()
			token, err := st.Token(ctx)
			if err != nil {
				return err
			}
			if token == "" {
				return errNotLoggedIn
			}

			client := apiclient.NewClient(flags.apiURL, nil)
			out := cmd.OutOrStdout()
			switch {
			case clear:
				removed, err := client.ClearResults(ctx, token)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d results.\n", removed)
				return nil
			case stats:
				s, err := client.Stats(ctx, token)
				if err != nil {
					return err
				}
				renderStats(out, s)
				return nil
			}

			results, err := client.GetResults(ctx, token)
			if err != nil {
				return err
			}
			renderResults(out, results)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "delete all saved results")
	cmd.Flags().BoolVar(&stats, "stats", false, "show statistics and achievements")
	return cmd
}

func renderResults(out io.Writer, results []models.Result) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No results yet. Run quizwhiz play to take a quiz.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTOPIC\tDIFFICULTY\tSCORE\tTIME")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d (%d%%)\t%s\n",
			r.Date.Local().Format("2006-01-02 15:04"), r.Topic, r.Difficulty,
			r.Score, r.TotalQuestions, r.Percentage, formatSeconds(int(r.TimeTaken)))
	}
	tw.Flush()
}

func renderStats(out io.Writer, s models.QuizStats) {
	fmt.Fprintf(out, "Quizzes taken:   %d\n", s.TotalQuizzes)
	fmt.Fprintf(out, "Average score:   %.1f%%\n", s.AverageScore)
	fmt.Fprintf(out, "Best score:      %.0f%%\n", s.BestScore)
	fmt.Fprintf(out, "Accuracy:        %.1f%%\n", s.Accuracy)
	fmt.Fprintf(out, "Current streak:  %d days\n", s.CurrentStreak)
	fmt.Fprintf(out, "Time spent:      %s\n", formatSeconds(int(s.TotalTimeSeconds)))
	if s.TotalQuizzes > 0 {
		fmt.Fprintf(out, "Fastest quiz:    %s\n", formatSeconds(int(s.FastestSeconds)))
	}
	if s.BestTopic != nil {
		fmt.Fprintf(out, "Best topic:      %s (%.1f%%)\n", s.BestTopic.Topic, s.BestTopic.Accuracy)
	}
	if s.Improvement != nil {
		fmt.Fprintf(out, "Improvement:     %+.1f points\n", *s.Improvement)
	}
	fmt.Fprintln(out, "\nAchievements:")
	for _, a := range s.Achievements {
		mark := " "
		if a.Earned {
			mark = "x"
		}
		fmt.Fprintf(out, "  [%s] %s: %s\n", mark, a.Name, a.Description)
	}
}
