package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quizwhiz/quizwhiz-backend/apiclient"
	"github.com/quizwhiz/quizwhiz-backend/session"
)

const pollInterval = 200 * time.Millisecond

type playFlags struct {
	topic      string
	difficulty string
	count      int
	timer      string
	duration   int
}

func newPlayCmd(flags *globalFlags) *cobra.Command {
	pf := &playFlags{}
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take a quiz in the terminal",
		Long: `Take a quiz in the terminal.

Answer with a-d (or 1-4), press Enter on an empty line to go to the next
question and type q to finish early. Settings not given as flags are
restored from the last quiz.`,
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
			client := apiclient.NewClient(flags.apiURL, nil).WithToken(token)
			ctrl := session.NewController(client, st, client, session.Options{})

			cfg := applyPlayFlags(cmd, ctrl.RestoreConfig(ctx), pf)
			out := cmd.OutOrStdout()
			if token == "" {
				fmt.Fprintln(out, "Not logged in: your result will not be saved.")
			}
			return playQuiz(ctx, ctrl, cfg, cmd.InOrStdin(), out)
		},
	}
	bindPlayFlags(cmd, pf)
	return cmd
}

func bindPlayFlags(cmd *cobra.Command, pf *playFlags) {
	cmd.Flags().StringVar(&pf.topic, "topic", "", "quiz topic")
	cmd.Flags().StringVar(&pf.difficulty, "difficulty", "", "easy, medium or hard")
	cmd.Flags().IntVar(&pf.count, "count", 0, "number of questions")
	cmd.Flags().StringVar(&pf.timer, "timer", "", "individual (per question) or collective (whole quiz)")
	cmd.Flags().IntVar(&pf.duration, "duration", 0, "seconds per question, or minutes for the whole quiz")
}

func applyPlayFlags(cmd *cobra.Command, cfg session.Config, pf *playFlags) session.Config {
	if cmd.Flags().Changed("topic") {
		cfg.Topic = pf.topic
	}
	if cmd.Flags().Changed("difficulty") {
		cfg.Difficulty = session.Difficulty(strings.ToLower(pf.difficulty))
	}
	if cmd.Flags().Changed("count") {
		cfg.NumQuestions = pf.count
	}
	if cmd.Flags().Changed("timer") {
		cfg.TimerType = session.TimerMode(strings.ToLower(pf.timer))
	}
	if cmd.Flags().Changed("duration") {
		cfg.TimerDuration = pf.duration
	}
	return cfg
}

// playQuiz configures ctrl with cfg and runs it against line input until
// the session finishes.
func playQuiz(ctx context.Context, ctrl *session.Controller, cfg session.Config, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Preparing %d %s questions on %q...\n", cfg.NumQuestions, cfg.Difficulty, cfg.Topic)
	outcome, err := ctrl.Configure(ctx, cfg)
	if err != nil {
		return err
	}
	switch {
	case outcome.Kind == session.OutcomeCached:
		fmt.Fprintf(out, "Could not reach the question service (%v); using saved questions.\n", outcome.Reason)
	case outcome.Kind == session.OutcomePlaceholder:
		fmt.Fprintf(out, "Could not load questions (%v); using placeholder questions.\n", outcome.Reason)
	case outcome.Padded > 0:
		fmt.Fprintf(out, "Only %d questions were available; %d placeholders added.\n", cfg.NumQuestions-outcome.Padded, outcome.Padded)
	}

	lines := readLines(ctx, in)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go ctrl.Run(runCtx)

	done := ctrl.Done()
	poll := time.NewTicker(pollInterval)
	defer poll.Stop()

	shown := -1
	for {
		snap := ctrl.Session()
		if snap.State == session.StateRunning && snap.Index != shown {
			shown = snap.Index
			renderQuestion(out, snap)
		}

		select {
		case <-done:
			result, status, _ := ctrl.Result()
			renderResult(out, result, status)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				// Input closed: finish with what was answered.
				lines = nil
				ctrl.Finalize(ctx)
				continue
			}
			handleLine(ctx, ctrl, shown, line, out)
		case <-poll.C:
		}
	}
}

// readLines forwards lines from in until EOF or ctx is done. A read already
// blocked in in cannot be interrupted, so after cancellation the goroutine
// lingers until in yields one more line or EOF; for the play command that
// is the process exit.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func handleLine(ctx context.Context, ctrl *session.Controller, shown int, line string, out io.Writer) {
	input := strings.ToLower(strings.TrimSpace(line))
	switch input {
	case "", "n", "next":
		ctrl.AdvanceFrom(shown)
		return
	case "q", "quit":
		ctrl.Finalize(ctx)
		return
	}

	idx := optionIndex(input)
	snap := ctrl.Session()
	q, ok := snap.Current()
	if idx < 0 || !ok || idx >= len(q.Options) {
		fmt.Fprintln(out, "Type a-d to answer, Enter for the next question, q to finish.")
		return
	}
	if err := ctrl.SelectAnswer(q.Options[idx]); err == nil {
		fmt.Fprintf(out, "Selected %c) %s\n", 'A'+idx, q.Options[idx])
	}
}

func optionIndex(input string) int {
	if len(input) != 1 {
		return -1
	}
	switch c := input[0]; {
	case c >= 'a' && c <= 'd':
		return int(c - 'a')
	case c >= '1' && c <= '4':
		return int(c - '1')
	}
	return -1
}

func renderQuestion(out io.Writer, snap session.Snapshot) {
	q, ok := snap.Current()
	if !ok {
		return
	}
	fmt.Fprintln(out)
	timeLeft := fmt.Sprintf("%ds for this question", snap.QuestionRemaining)
	if snap.Config.TimerType == session.TimerCollective {
		timeLeft = fmt.Sprintf("%s left", formatSeconds(snap.TotalRemaining))
	}
	fmt.Fprintf(out, "Question %d/%d (%d%% done, %s)\n", snap.Index+1, len(snap.Questions), snap.Progress(), timeLeft)
	fmt.Fprintln(out, q.Text)
	for i, opt := range q.Options {
		fmt.Fprintf(out, "  %c) %s\n", 'A'+i, opt)
	}
}

func formatSeconds(s int) string {
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func renderResult(out io.Writer, result session.Result, status session.SubmitStatus) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Quiz complete: %s (%s)\n", result.Topic, result.Difficulty)
	fmt.Fprintf(out, "Score: %d/%d (%d%%) %s\n", result.Score, result.TotalQuestions, result.Percentage, session.Feedback(result.Percentage))
	fmt.Fprintf(out, "Time taken: %s\n", formatSeconds(int(result.TimeTaken)))
	for i, d := range result.Questions {
		mark := "x"
		if d.IsCorrect {
			mark = "✓"
		}
		fmt.Fprintf(out, "%s %d. %s\n", mark, i+1, d.QuestionText)
		fmt.Fprintf(out, "     your answer: %s, correct: %s\n", d.UserAnswer, d.CorrectAnswer)
	}

	switch status.Kind {
	case session.SubmitSaved:
		fmt.Fprintln(out, "Result saved to your account.")
	case session.SubmitSkipped:
		fmt.Fprintln(out, "Result not saved: log in to keep your history.")
	case session.SubmitFailed:
		fmt.Fprintf(out, "Result could not be saved: %v\n", status.Err)
	}
}
