package quiz

import (
	"fmt"
	"math"
	"sort"
	"time"

	"edunova-server/internal/metrics"
	"edunova-server/internal/models"
	"edunova-server/internal/store"

	"go.uber.org/zap"
)

// Notifier delivers a notification to a user. Implemented by the
// notification service; nil disables delivery.
type Notifier interface {
	Notify(userID, title, message string, typ models.NotificationType)
}

type Service struct {
	store    *store.Store
	notifier Notifier
	log      *zap.SugaredLogger
	attempts *attemptTracker
	now      func() time.Time
}

func NewService(st *store.Store, notifier Notifier, log *zap.SugaredLogger) *Service {
	return &Service{
		store:    st,
		notifier: notifier,
		log:      log,
		attempts: newAttemptTracker(),
		now:      time.Now,
	}
}

// ---- quiz CRUD ----

type CreateQuizInput struct {
	CourseID    string `json:"courseId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TimeLimit   int    `json:"timeLimit"`
}

func (s *Service) CreateQuiz(in CreateQuizInput) (models.Quiz, error) {
	if _, err := s.store.CourseByID(in.CourseID); err != nil {
		return models.Quiz{}, err
	}
	q := models.Quiz{
		ID:          store.NewID("quiz"),
		CourseID:    in.CourseID,
		Title:       in.Title,
		Description: in.Description,
		TimeLimit:   in.TimeLimit,
		CreatedAt:   s.now(),
	}
	s.store.InsertQuiz(q)
	return q, nil
}

func (s *Service) UpdateQuiz(id string, in CreateQuizInput) (models.Quiz, error) {
	return s.store.UpdateQuiz(id, func(q *models.Quiz) {
		q.Title = in.Title
		q.Description = in.Description
		q.TimeLimit = in.TimeLimit
	})
}

func (s *Service) DeleteQuiz(id string) error {
	return s.store.DeleteQuiz(id)
}

func (s *Service) QuizByID(id string) (models.Quiz, error) {
	return s.store.QuizByID(id)
}

func (s *Service) QuizzesByCourse(courseID string) []models.Quiz {
	return s.store.Quizzes(func(q models.Quiz) bool { return q.CourseID == courseID })
}

// ---- questions and options ----

type OptionInput struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type CreateQuestionInput struct {
	Text    string              `json:"text"`
	Type    models.QuestionType `json:"type"`
	Points  int                 `json:"points"`
	Options []OptionInput       `json:"options"`
}

// CreateQuestion inserts a question together with its options, the way the
// question editor submits them.
func (s *Service) CreateQuestion(quizID string, in CreateQuestionInput) (models.Question, error) {
	if _, err := s.store.QuizByID(quizID); err != nil {
		return models.Question{}, err
	}
	points := in.Points
	if points <= 0 {
		points = DefaultQuestionPoints
	}
	q := models.Question{
		ID:     store.NewID("question"),
		QuizID: quizID,
		Text:   in.Text,
		Type:   in.Type,
		Points: points,
	}
	s.store.InsertQuestion(q)
	for _, opt := range in.Options {
		s.store.InsertOption(models.Option{
			ID:         store.NewID("option"),
			QuestionID: q.ID,
			Text:       opt.Text,
			IsCorrect:  opt.IsCorrect,
		})
	}
	return q, nil
}

func (s *Service) UpdateQuestion(id string, in CreateQuestionInput) (models.Question, error) {
	return s.store.UpdateQuestion(id, func(q *models.Question) {
		q.Text = in.Text
		q.Type = in.Type
		if in.Points > 0 {
			q.Points = in.Points
		}
	})
}

func (s *Service) DeleteQuestion(id string) error {
	return s.store.DeleteQuestion(id)
}

func (s *Service) QuestionsByQuiz(quizID string) []models.Question {
	return s.store.Questions(func(q models.Question) bool { return q.QuizID == quizID })
}

func (s *Service) OptionsByQuiz(quizID string) []models.Option {
	questionIDs := make(map[string]bool)
	for _, q := range s.QuestionsByQuiz(quizID) {
		questionIDs[q.ID] = true
	}
	return s.store.Options(func(o models.Option) bool { return questionIDs[o.QuestionID] })
}

func (s *Service) UpdateOption(id string, in OptionInput) (models.Option, error) {
	return s.store.UpdateOption(id, func(o *models.Option) {
		o.Text = in.Text
		o.IsCorrect = in.IsCorrect
	})
}

// ---- taking a quiz ----

// AttemptStatus is what the quiz page needs to render: where the student is
// in the attempt machine and, when in progress, the remaining time.
type AttemptStatus struct {
	State            AttemptState       `json:"state"`
	RemainingSeconds int                `json:"remainingSeconds,omitempty"`
	Submission       *models.Submission `json:"submission,omitempty"`
}

// Status reports the attempt state for a (student, quiz) pair. An existing
// submission means Submitted; an active attempt means InProgress.
func (s *Service) Status(studentID, quizID string) (AttemptStatus, error) {
	if _, err := s.store.QuizByID(quizID); err != nil {
		return AttemptStatus{}, err
	}
	if sub, ok := s.latestSubmission(studentID, quizID); ok {
		return AttemptStatus{State: StateSubmitted, Submission: &sub}, nil
	}
	key := attemptKey{studentID: studentID, quizID: quizID}
	if a, ok := s.attempts.get(key); ok {
		st := AttemptStatus{State: StateInProgress}
		if !a.deadline.IsZero() {
			st.RemainingSeconds = int(a.deadline.Sub(s.now()).Seconds())
			if st.RemainingSeconds < 0 {
				st.RemainingSeconds = 0
			}
		}
		return st, nil
	}
	return AttemptStatus{State: StateNotStarted}, nil
}

// Start moves a NotStarted pair to InProgress and, for a timed quiz, arms the
// auto-submit timer. Starting twice just returns the running attempt.
func (s *Service) Start(studentID, quizID string) (AttemptStatus, error) {
	q, err := s.store.QuizByID(quizID)
	if err != nil {
		return AttemptStatus{}, err
	}
	if sub, ok := s.latestSubmission(studentID, quizID); ok {
		return AttemptStatus{State: StateSubmitted, Submission: &sub}, nil
	}
	key := attemptKey{studentID: studentID, quizID: quizID}
	started := s.now()
	var deadline time.Time
	if q.TimeLimit > 0 {
		deadline = started.Add(time.Duration(q.TimeLimit) * time.Minute)
	}
	a := s.attempts.start(key, started, deadline)
	if q.TimeLimit > 0 {
		s.attempts.arm(key, time.Until(deadline), func() { s.expire(key) })
	}
	st := AttemptStatus{State: StateInProgress}
	if !a.deadline.IsZero() {
		st.RemainingSeconds = int(a.deadline.Sub(s.now()).Seconds())
	}
	return st, nil
}

// SaveAnswer records a selected option for an in-progress attempt so an
// auto-submit has something to grade.
func (s *Service) SaveAnswer(studentID, quizID, questionID, optionID string) error {
	key := attemptKey{studentID: studentID, quizID: quizID}
	if !s.attempts.saveAnswer(key, questionID, optionID) {
		return fmt.Errorf("attempt for student %s on quiz %s: %w", studentID, quizID, store.ErrNotFound)
	}
	return nil
}

// Submit grades the attempt and stores the submission. Answers passed in are
// merged over any saved incrementally; the attempt ends either way. A pair
// already in Submitted is refused; only Retake leaves that state.
func (s *Service) Submit(studentID, quizID string, answers map[string]string) (models.GradedSubmission, error) {
	if _, ok := s.latestSubmission(studentID, quizID); ok {
		return models.GradedSubmission{}, fmt.Errorf("submission for student %s on quiz %s: %w", studentID, quizID, store.ErrAlreadyExists)
	}
	key := attemptKey{studentID: studentID, quizID: quizID}
	saved, _ := s.attempts.finish(key)
	merged := make(map[string]string, len(saved)+len(answers))
	for k, v := range saved {
		merged[k] = v
	}
	for k, v := range answers {
		merged[k] = v
	}
	return s.grade(studentID, quizID, merged)
}

// expire fires when a timed attempt runs out; whatever was answered so far is
// graded as-is.
func (s *Service) expire(key attemptKey) {
	answers, ok := s.attempts.finish(key)
	if !ok {
		return
	}
	if _, err := s.grade(key.studentID, key.quizID, answers); err != nil {
		s.log.Errorw("auto-submit on timer expiry failed",
			"student", key.studentID, "quiz", key.quizID, "err", err)
	}
}

func (s *Service) grade(studentID, quizID string, answers map[string]string) (models.GradedSubmission, error) {
	started := time.Now()
	q, err := s.store.QuizByID(quizID)
	if err != nil {
		return models.GradedSubmission{}, err
	}
	questions := s.QuestionsByQuiz(quizID)
	options := s.OptionsByQuiz(quizID)

	score, maxScore, graded := Grade(questions, options, answers, DefaultQuestionPoints)
	sub := models.Submission{
		ID:          store.NewID("submission"),
		QuizID:      quizID,
		StudentID:   studentID,
		Score:       score,
		MaxScore:    maxScore,
		SubmittedAt: s.now(),
		Answers:     graded,
	}
	s.store.InsertSubmission(sub)
	metrics.ObserveGrading(time.Since(started))

	if s.notifier != nil {
		s.notifier.Notify(studentID, "Quiz graded",
			fmt.Sprintf("You scored %d/%d on %s.", score, maxScore, q.Title),
			models.NotifySuccess)
	}
	s.log.Infow("submission graded", "quiz", quizID, "student", studentID, "score", score, "max", maxScore)
	return s.decorate(sub), nil
}

// Retake deletes the existing submission for the pair, returning the attempt
// machine to NotStarted.
func (s *Service) Retake(studentID, quizID string) error {
	removed := s.store.DeleteSubmissions(func(sub models.Submission) bool {
		return sub.QuizID == quizID && sub.StudentID == studentID
	})
	if removed == 0 {
		return fmt.Errorf("submission for student %s on quiz %s: %w", studentID, quizID, store.ErrNotFound)
	}
	return nil
}

// SubmissionsForStudent lists a student's graded submissions, newest first.
func (s *Service) SubmissionsForStudent(studentID string) []models.GradedSubmission {
	subs := s.store.Submissions(func(sub models.Submission) bool { return sub.StudentID == studentID })
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].SubmittedAt.After(subs[j].SubmittedAt) })
	out := make([]models.GradedSubmission, len(subs))
	for i, sub := range subs {
		out[i] = s.decorate(sub)
	}
	return out
}

func (s *Service) latestSubmission(studentID, quizID string) (models.Submission, bool) {
	subs := s.store.Submissions(func(sub models.Submission) bool {
		return sub.QuizID == quizID && sub.StudentID == studentID
	})
	if len(subs) == 0 {
		return models.Submission{}, false
	}
	latest := subs[0]
	for _, sub := range subs[1:] {
		if sub.SubmittedAt.After(latest.SubmittedAt) {
			latest = sub
		}
	}
	return latest, true
}

func (s *Service) decorate(sub models.Submission) models.GradedSubmission {
	pct := 0
	if sub.MaxScore > 0 {
		pct = int(math.Round(100 * float64(sub.Score) / float64(sub.MaxScore)))
	}
	return models.GradedSubmission{
		Submission: sub,
		Percentage: pct,
		Passed:     Passed(sub.Score, sub.MaxScore),
	}
}
