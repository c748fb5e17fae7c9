package quiz

import (
	"math"
	"strings"

	"wordplay/internal/models"
)

// Score computes aggregate correctness for a sequence of answers.
// Percentage is rounded to the nearest integer and is 0 when there are no answers.
func Score(answers []models.AnswerRecord) models.Score {
	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}

	total := len(answers)
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(correct) / float64(total) * 100))
	}

	return models.Score{Correct: correct, Total: total, Percentage: percentage}
}

// CheckAnswer reports whether a submission matches the expected term,
// ignoring case and surrounding whitespace
func CheckAnswer(submitted, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(expected))
}
