package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/quizrr/quizrr/internal/markup"
	"github.com/quizrr/quizrr/internal/quizzes"
)

var explainCmd = &cobra.Command{
	Use:   "explain [quiz-id question-id]",
	Short: "Explain the answer to a quiz question",
	Long: `Explain the answer to a question of a saved quiz, using the answer from
your latest result, or explain an ad-hoc question with --question and
--correct.`,
	Example: `  quizrr explain 3f2a... 2
  quizrr explain --question "Capital of France?" --answer Lyon --correct Paris`,
	Args: func(cmd *cobra.Command, args []string) error {
		if q, _ := cmd.Flags().GetString("question"); q != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		question, _ := cmd.Flags().GetString("question")
		answer, _ := cmd.Flags().GetString("answer")
		correct, _ := cmd.Flags().GetString("correct")

		e, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer e.Close()

		var res quizzes.ExplainResult
		if question != "" {
			res = e.svc.ExplainText(cmd.Context(), question, answer, correct)
		} else {
			qid, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid question id %q: %w", args[1], err)
			}
			res = e.svc.Explain(cmd.Context(), userFlag(cmd), args[0], qid)
		}

		if !res.Success {
			return errors.New(res.Error)
		}
		fmt.Fprintln(cmd.OutOrStdout(), markup.RenderANSI(res.Explanation))
		return nil
	},
}

func init() {
	explainCmd.Flags().String("question", "", "Question text for an ad-hoc explanation")
	explainCmd.Flags().String("answer", "", "The answer that was given")
	explainCmd.Flags().String("correct", "", "The correct answer")
}
