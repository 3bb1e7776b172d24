package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/quizrr/quizrr/internal/app"
	"github.com/quizrr/quizrr/internal/quizgen"
	"github.com/quizrr/quizrr/internal/quizzes"
)

var takeCmd = &cobra.Command{
	Use:   "take [quiz-id]",
	Short: "Take a quiz in the terminal",
	Long:  "Take a saved quiz by id, or start on the new-quiz screen with --topic.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id string
		if len(args) == 1 {
			id = args[0]
		}
		topic, _ := cmd.Flags().GetString("topic")
		return runTake(cmd, id, topic)
	},
}

func init() {
	takeCmd.Flags().StringP("topic", "t", "", "Generate a quiz on this topic first")
	takeCmd.Flags().StringP("mode", "m", string(quizgen.ModeGeneral), "Question style for --topic: general or deep")
}

func runTake(cmd *cobra.Command, quizID, topic string) error {
	// Log lines would corrupt the alternate screen.
	e, err := setup(cmd, io.Discard)
	if err != nil {
		return err
	}
	defer e.Close()

	opts := app.Options{
		Service: e.svc,
		UserID:  userFlag(cmd),
		Topic:   topic,
	}
	if m, err := cmd.Flags().GetString("mode"); err == nil {
		opts.Mode = quizgen.ParseMode(m)
	}

	if quizID != "" {
		q, err := e.svc.Quiz(cmd.Context(), quizID)
		if errors.Is(err, quizzes.ErrNotFound) {
			return fmt.Errorf("%s (%s)", quizzes.MsgQuizNotFound, quizID)
		}
		if err != nil {
			return err
		}
		opts.Quiz = q
	}

	return app.Run(cmd.Context(), opts)
}
