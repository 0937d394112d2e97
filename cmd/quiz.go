package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/itish2003/studysense/models"
	"github.com/itish2003/studysense/services"
	"github.com/spf13/cobra"
)

var quizQuestions int

var quizCmd = &cobra.Command{
	Use:   "quiz <subject>",
	Short: "Answer generated practice questions and get them graded",
	Long: `Generate practice questions from a subject's notes, answer them one by
one in the terminal and receive a score with feedback for each answer.
Finish an answer with an empty line.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuiz,
}

func init() {
	rootCmd.AddCommand(quizCmd)
	quizCmd.Flags().IntVarP(&quizQuestions, "questions", "n", 2, "number of questions")
}

func runQuiz(cmd *cobra.Command, args []string) error {
	subject := args[0]
	if quizQuestions < 1 {
		return fmt.Errorf("--questions must be at least 1")
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Generating %d question(s) for %s...\n", quizQuestions, subject)
	questions, problem, err := loadQuestions(cmd.Context(), a.knowledge, a.generation, subject, quizQuestions)
	if err != nil {
		return err
	}
	if problem != "" {
		color.Yellow("%s", problem)
		return nil
	}

	return quiz(cmd, a.generation, subject, models.NewCursor(questions))
}

// loadQuestions generates the quiz. A non-empty problem explains why there is
// nothing to ask.
func loadQuestions(ctx context.Context, knowledge services.KnowledgeService, generation services.GenerationService, subject string, n int) ([]models.PracticeQuestion, string, error) {
	notes, err := knowledge.ListBySubject(ctx, subject)
	if err != nil {
		return nil, "", err
	}
	if len(notes) == 0 {
		return nil, fmt.Sprintf("No notes found for %s. Upload or import some first.", subject), nil
	}

	questions, err := generation.GeneratePracticeQuestions(ctx, subject, n)
	if err != nil {
		return nil, "", err
	}
	switch {
	case len(questions) == 0:
		return nil, fmt.Sprintf("The model returned no questions for %s. Try again.", subject), nil
	case models.HasFailure(questions):
		return nil, questions[0].Error, nil
	}
	return questions, "", nil
}

func quiz(cmd *cobra.Command, generation services.GenerationService, subject string, cursor *models.Cursor[models.PracticeQuestion]) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	total := 0

	for !cursor.Done() {
		q, _ := cursor.Current()
		fmt.Fprintf(out, "\n%s %s\n", color.CyanString("Q%d/%d.", cursor.Position(), len(cursor.Items)), q.Question)

		answer, err := readAnswer(in)
		if err != nil {
			return err
		}
		cursor.Answer(answer)

		eval, err := generation.EvaluateAnswer(cmd.Context(), subject, q.Question, answer)
		if err != nil {
			return err
		}
		total += eval.Score
		fmt.Fprintf(out, "%s %s\n", scoreColor(eval.Score).Sprintf("Score: %d/100", eval.Score), eval.Feedback)

		cursor.Next()
	}

	avg := total / len(cursor.Items)
	fmt.Fprintf(out, "\n%s\n", scoreColor(avg).Sprintf("Average score: %d/100", avg))
	return nil
}

// readAnswer reads lines until an empty line or end of input.
func readAnswer(r *bufio.Reader) (string, error) {
	var lines []string
	for {
		line, err := r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			lines = append(lines, line)
		}
		if err == io.EOF || (err == nil && line == "") {
			return strings.Join(lines, "\n"), nil
		}
		if err != nil {
			return "", err
		}
	}
}

func scoreColor(score int) *color.Color {
	switch {
	case score >= 75:
		return color.New(color.FgGreen)
	case score >= 50:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
