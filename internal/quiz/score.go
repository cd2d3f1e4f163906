package quiz

import "edunova-server/internal/models"

// DefaultQuestionPoints is the flat per-question score used regardless of a
// question's configured Points field. Pass 0 to Grade to honour per-question
// points instead.
const DefaultQuestionPoints = 10

// PassThreshold is display-only; a submission never stores pass/fail.
const PassThreshold = 0.60

// Grade scores an answer set against a quiz's questions and options.
// answers maps question id to the selected option id; a missing entry is an
// unanswered question and counts as incorrect. The answer key for a question
// is the first of its options marked correct; authoring guarantees there is
// exactly one, the grader does not.
func Grade(questions []models.Question, options []models.Option, answers map[string]string, pointsPerQuestion int) (score, maxScore int, graded []models.SubmissionAnswer) {
	graded = make([]models.SubmissionAnswer, 0, len(questions))
	for _, q := range questions {
		points := pointsPerQuestion
		if points <= 0 {
			points = q.Points
			if points <= 0 {
				points = DefaultQuestionPoints
			}
		}
		correctID := ""
		for _, o := range options {
			if o.QuestionID == q.ID && o.IsCorrect {
				correctID = o.ID
				break
			}
		}
		selected := answers[q.ID]
		correct := correctID != "" && selected == correctID
		if correct {
			score += points
		}
		maxScore += points
		graded = append(graded, models.SubmissionAnswer{
			QuestionID:       q.ID,
			SelectedOptionID: selected,
			IsCorrect:        correct,
		})
	}
	return score, maxScore, graded
}

// Passed reports whether a score clears the display threshold.
func Passed(score, maxScore int) bool {
	if maxScore == 0 {
		return false
	}
	return float64(score)/float64(maxScore) >= PassThreshold
}
