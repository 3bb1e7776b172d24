package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quizrr/quizrr/internal/markup"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved quizzes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		saved := e.svc.History(ctx, userFlag(cmd))
		if len(saved) == 0 {
			fmt.Println("No saved quizzes.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %5s  %-7s  %s\n", "ID", "Created", "Qs", "Score", "Title")
		fmt.Println(strings.Repeat("─", 100))
		for _, sq := range saved {
			score := "-"
			if res, err := e.svc.Result(ctx, userFlag(cmd), sq.ID); err == nil {
				score = fmt.Sprintf("%d/%d", res.Score, res.Total)
			}
			title := ""
			if blocks := markup.Render(sq.Title); len(blocks) > 0 {
				title = markup.PlainText(blocks[0].Nodes)
			}
			fmt.Printf("%-36s  %-16s  %5d  %-7s  %s\n",
				sq.ID,
				sq.CreatedAt.Local().Format("2006-01-02 15:04"),
				len(sq.Questions),
				score,
				truncate(title, 40),
			)
		}
		return nil
	},
}
