package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quizrr/quizrr/internal/extract"
	"github.com/quizrr/quizrr/internal/markup"
	"github.com/quizrr/quizrr/internal/quiz"
	"github.com/quizrr/quizrr/internal/quizgen"
	"github.com/quizrr/quizrr/internal/quizzes"
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic or text...]",
	Short: "Generate a quiz from text or a file",
	Example: `  quizrr generate "the water cycle"
  quizrr generate --mode deep --file notes.pdf
  echo "..." | quizrr generate -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		mode, _ := cmd.Flags().GetString("mode")
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := setup(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		var res quizzes.GenerateResult
		switch {
		case path != "":
			f, err := readUpload(path)
			if err != nil {
				return err
			}
			res = e.svc.GenerateFromFile(ctx, userFlag(cmd), quizgen.ParseMode(mode), f)
		default:
			content, err := readContent(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			res = e.svc.Generate(ctx, userFlag(cmd), quizzes.GenerateRequest{
				Kind:    quizgen.KindText,
				Mode:    quizgen.ParseMode(mode),
				Content: content,
			})
		}

		if !res.Success {
			return errors.New(res.Error)
		}
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res.Quiz)
		}
		printQuiz(cmd.OutOrStdout(), res.Quiz)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringP("file", "f", "", "Build the quiz from this file (txt, md, pdf, docx, xlsx)")
	generateCmd.Flags().StringP("mode", "m", string(quizgen.ModeGeneral), "Question style: general or deep")
	generateCmd.Flags().Bool("json", false, "Print the quiz as JSON")
}

// readContent joins args, or reads stdin when the only arg is "-".
func readContent(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(io.LimitReader(stdin, extract.MaxUploadBytes+1))
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		if len(data) > extract.MaxUploadBytes {
			return "", errors.New(quizzes.MsgFileTooLarge)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func readUpload(path string) (extract.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return extract.File{}, fmt.Errorf("open file: %w", err)
	}
	if info.Size() > extract.MaxUploadBytes {
		return extract.File{}, errors.New(quizzes.MsgFileTooLarge)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return extract.File{}, fmt.Errorf("read file: %w", err)
	}
	return extract.File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}

func printQuiz(w io.Writer, q *quiz.Quiz) {
	fmt.Fprintln(w, markup.RenderANSI(q.Title))
	fmt.Fprintf(w, "id: %s\n\n", q.ID)
	for i, question := range q.Questions {
		fmt.Fprintf(w, "%d. %s\n", i+1, markup.RenderANSI(question.Question))
		for j, opt := range question.Options {
			fmt.Fprintf(w, "   %c) %s\n", 'a'+j, markup.RenderANSI(opt))
		}
		fmt.Fprintf(w, "   answer: %s\n\n", markup.RenderANSI(question.Answer))
	}
}
