package quiz

import (
	"testing"

	"edunova-server/internal/models"
)

func fourQuestionQuiz() ([]models.Question, []models.Option) {
	questions := []models.Question{
		{ID: "q1", QuizID: "quiz", Points: 10},
		{ID: "q2", QuizID: "quiz", Points: 10},
		{ID: "q3", QuizID: "quiz", Points: 10},
		{ID: "q4", QuizID: "quiz", Points: 10},
	}
	options := []models.Option{
		{ID: "q1-right", QuestionID: "q1", IsCorrect: true},
		{ID: "q1-wrong", QuestionID: "q1"},
		{ID: "q2-right", QuestionID: "q2", IsCorrect: true},
		{ID: "q2-wrong", QuestionID: "q2"},
		{ID: "q3-right", QuestionID: "q3", IsCorrect: true},
		{ID: "q3-wrong", QuestionID: "q3"},
		{ID: "q4-right", QuestionID: "q4", IsCorrect: true},
		{ID: "q4-wrong", QuestionID: "q4"},
	}
	return questions, options
}

func TestGradeAllCorrect(t *testing.T) {
	questions, options := fourQuestionQuiz()
	answers := map[string]string{
		"q1": "q1-right", "q2": "q2-right", "q3": "q3-right", "q4": "q4-right",
	}
	score, max, graded := Grade(questions, options, answers, DefaultQuestionPoints)
	if score != 40 || max != 40 {
		t.Fatalf("score=%d max=%d, want 40/40", score, max)
	}
	for _, a := range graded {
		if !a.IsCorrect {
			t.Errorf("answer for %s graded incorrect", a.QuestionID)
		}
	}
}

func TestGradeNoneCorrect(t *testing.T) {
	questions, options := fourQuestionQuiz()
	answers := map[string]string{
		"q1": "q1-wrong", "q2": "q2-wrong", "q3": "q3-wrong", "q4": "q4-wrong",
	}
	score, max, _ := Grade(questions, options, answers, DefaultQuestionPoints)
	if score != 0 || max != 40 {
		t.Fatalf("score=%d max=%d, want 0/40", score, max)
	}
}

func TestGradeTwoOfFourFails(t *testing.T) {
	questions, options := fourQuestionQuiz()
	answers := map[string]string{
		"q1": "q1-right", "q2": "q2-right", "q3": "q3-wrong", "q4": "q4-wrong",
	}
	score, max, _ := Grade(questions, options, answers, DefaultQuestionPoints)
	if score != 20 || max != 40 {
		t.Fatalf("score=%d max=%d, want 20/40", score, max)
	}
	if Passed(score, max) {
		t.Error("50%% must not pass the 60%% threshold")
	}
}

func TestGradeThreeOfFourPasses(t *testing.T) {
	questions, options := fourQuestionQuiz()
	answers := map[string]string{
		"q1": "q1-right", "q2": "q2-right", "q3": "q3-right", "q4": "q4-wrong",
	}
	score, max, _ := Grade(questions, options, answers, DefaultQuestionPoints)
	if score != 30 || max != 40 {
		t.Fatalf("score=%d max=%d, want 30/40", score, max)
	}
	if !Passed(score, max) {
		t.Error("75%% must pass the 60%% threshold")
	}
}

func TestGradeUnansweredCountsIncorrect(t *testing.T) {
	questions, options := fourQuestionQuiz()
	score, max, graded := Grade(questions, options, map[string]string{"q1": "q1-right"}, DefaultQuestionPoints)
	if score != 10 || max != 40 {
		t.Fatalf("score=%d max=%d, want 10/40", score, max)
	}
	if len(graded) != 4 {
		t.Fatalf("graded %d answers, want one per question", len(graded))
	}
	for _, a := range graded[1:] {
		if a.IsCorrect || a.SelectedOptionID != "" {
			t.Errorf("unanswered %s graded as %+v", a.QuestionID, a)
		}
	}
}

func TestGradeUsesFirstCorrectOption(t *testing.T) {
	// Bad authoring: two options marked correct. The first one found wins.
	questions := []models.Question{{ID: "q1", Points: 10}}
	options := []models.Option{
		{ID: "first", QuestionID: "q1", IsCorrect: true},
		{ID: "second", QuestionID: "q1", IsCorrect: true},
	}
	score, _, _ := Grade(questions, options, map[string]string{"q1": "second"}, DefaultQuestionPoints)
	if score != 0 {
		t.Error("second correct option must not match the key")
	}
	score, _, _ = Grade(questions, options, map[string]string{"q1": "first"}, DefaultQuestionPoints)
	if score != 10 {
		t.Error("first correct option is the key")
	}
}

func TestGradeNoCorrectOption(t *testing.T) {
	questions := []models.Question{{ID: "q1", Points: 10}}
	options := []models.Option{{ID: "only", QuestionID: "q1"}}
	score, max, _ := Grade(questions, options, map[string]string{"q1": "only"}, DefaultQuestionPoints)
	if score != 0 || max != 10 {
		t.Fatalf("score=%d max=%d, want 0/10 when no key exists", score, max)
	}
}

func TestGradeConfigurablePoints(t *testing.T) {
	// Passing 0 honours each question's own Points field.
	questions := []models.Question{
		{ID: "q1", Points: 5},
		{ID: "q2", Points: 15},
	}
	options := []models.Option{
		{ID: "q1-right", QuestionID: "q1", IsCorrect: true},
		{ID: "q2-right", QuestionID: "q2", IsCorrect: true},
	}
	score, max, _ := Grade(questions, options, map[string]string{"q1": "q1-right"}, 0)
	if score != 5 || max != 20 {
		t.Fatalf("score=%d max=%d, want 5/20 with per-question points", score, max)
	}
}

func TestPassedZeroMax(t *testing.T) {
	if Passed(0, 0) {
		t.Error("empty quiz must not pass")
	}
}
