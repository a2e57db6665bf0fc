package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talentflow/talentflow/internal/services"
)

var scoreCmd = &cobra.Command{
	Use:   "score <assessment.json> <answers.json>",
	Short: "Score a set of answers against an assessment document offline",
	Long: "Validates the assessment document, decodes the answers (a JSON object of question id to value) " +
		"against each question's type, drops answers to hidden questions and prints the score.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := readAssessment(args[0])
		if err != nil {
			return err
		}
		answers, err := readAnswers(a, args[1])
		if err != nil {
			return err
		}
		report := scoreReport(a, answers)
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", a.Title, a.JobTitle)
		fmt.Fprintf(out, "visible questions: %s\n", strings.Join(report.Visible, ", "))
		fmt.Fprintf(out, "score: %g / %g (%d%%)\n", report.Score.Earned, report.Score.Max, report.Percent)
		fmt.Fprintf(out, "total points: %g\n", report.TotalPoints)
		return nil
	},
}

func init() {
	scoreCmd.Flags().Bool("json", false, "Print the result as JSON")
}

type report struct {
	Visible     []string             `json:"visible"`
	Score       services.ScoreResult `json:"score"`
	Percent     int                  `json:"percent"`
	TotalPoints float64              `json:"totalPoints"`
	Pruned      []string             `json:"pruned,omitempty"`
}

func readAssessment(path string) (*services.Assessment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assessment: %w", err)
	}
	if err := services.ValidateAssessmentPayload(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var a services.Assessment
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode assessment: %w", err)
	}
	if err := services.ValidateAssessment(&a); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &a, nil
}

func readAnswers(a *services.Assessment, path string) (services.Answers, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	out := services.Answers{}
	for _, q := range a.Questions() {
		v, ok := raw[q.ID]
		if !ok {
			continue
		}
		ans, err := services.DecodeAnswer(q, v)
		if err != nil {
			if services.IsInvalid(err) {
				return nil, err
			}
			continue
		}
		out[q.ID] = ans
	}
	return out, nil
}

func scoreReport(a *services.Assessment, answers services.Answers) report {
	kept := services.PruneHidden(a, answers)
	var pruned []string
	for _, q := range a.Questions() {
		if _, had := answers[q.ID]; had {
			if _, still := kept[q.ID]; !still {
				pruned = append(pruned, q.ID)
			}
		}
	}
	score := services.Score(a, kept)
	return report{
		Visible:     services.VisibleQuestions(a, kept),
		Score:       score,
		Percent:     score.Percent(),
		TotalPoints: services.TotalPoints(a),
		Pruned:      pruned,
	}
}
