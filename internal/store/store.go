// Package store is the authoritative in-memory holder of all entity
// collections. Collections are slices so insertion order is preserved;
// every lookup is a linear scan. A single store-wide mutex is the
// transactional boundary: each cascade runs entirely under one lock
// acquisition, so no other operation can observe a half-finished cascade.
package store

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"edunova-server/internal/models"
)

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users         []models.User
	courses       []models.Course
	lessons       []models.Lesson
	enrollments   []models.Enrollment
	quizzes       []models.Quiz
	questions     []models.Question
	options       []models.Option
	submissions   []models.Submission
	progress      []models.Progress
	notifications []models.Notification
}

// New returns an empty store. Production code seeds one via Open; tests
// build up exactly the records they need.
func New() *Store {
	return &Store{now: time.Now}
}

// NewID generates a fresh record id: prefix, millisecond timestamp, and a
// random base-36 suffix. Unique enough for a single process; nothing in the
// store enforces uniqueness beyond this.
func NewID(prefix string) string {
	suffix := strconv.FormatUint(uint64(rand.Int63()), 36)
	if len(suffix) > 9 {
		suffix = suffix[:9]
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), suffix)
}

type entity interface {
	EntityID() string
}

func indexOf[T entity](items []T, id string) int {
	for i, it := range items {
		if it.EntityID() == id {
			return i
		}
	}
	return -1
}

func collect[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0)
	for _, it := range items {
		if keep == nil || keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func drop[T any](items []T, gone func(T) bool) []T {
	out := items[:0]
	for _, it := range items {
		if !gone(it) {
			out = append(out, it)
		}
	}
	return out
}

// ---- users ----

func (s *Store) InsertUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
}

func (s *Store) UserByID(id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.users, id); i >= 0 {
		return s.users[i], nil
	}
	return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
}

// Users returns matching users in insertion order. A nil filter matches all.
func (s *Store) Users(filter func(models.User) bool) []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.users, filter)
}

func (s *Store) UpdateUser(id string, mutate func(*models.User)) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.users, id)
	if i < 0 {
		return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	mutate(&s.users[i])
	return s.users[i], nil
}

// ---- courses ----

func (s *Store) InsertCourse(c models.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses = append(s.courses, c)
}

func (s *Store) CourseByID(id string) (models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.courses, id); i >= 0 {
		return s.courses[i], nil
	}
	return models.Course{}, fmt.Errorf("course %s: %w", id, ErrNotFound)
}

func (s *Store) Courses(filter func(models.Course) bool) []models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.courses, filter)
}

func (s *Store) UpdateCourse(id string, mutate func(*models.Course)) (models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.courses, id)
	if i < 0 {
		return models.Course{}, fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	mutate(&s.courses[i])
	return s.courses[i], nil
}

// ---- lessons ----

func (s *Store) InsertLesson(l models.Lesson) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lessons = append(s.lessons, l)
}

func (s *Store) LessonByID(id string) (models.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.lessons, id); i >= 0 {
		return s.lessons[i], nil
	}
	return models.Lesson{}, fmt.Errorf("lesson %s: %w", id, ErrNotFound)
}

func (s *Store) Lessons(filter func(models.Lesson) bool) []models.Lesson {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.lessons, filter)
}

func (s *Store) UpdateLesson(id string, mutate func(*models.Lesson)) (models.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.lessons, id)
	if i < 0 {
		return models.Lesson{}, fmt.Errorf("lesson %s: %w", id, ErrNotFound)
	}
	mutate(&s.lessons[i])
	return s.lessons[i], nil
}

// DeleteLesson removes a lesson only. Completed-lesson ids held by progress
// records are intentionally left alone; percentages are recomputed against
// the current lesson count on the next completion event.
func (s *Store) DeleteLesson(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.lessons, id)
	if i < 0 {
		return fmt.Errorf("lesson %s: %w", id, ErrNotFound)
	}
	s.lessons = append(s.lessons[:i], s.lessons[i+1:]...)
	return nil
}

// ---- enrollments ----

func (s *Store) Enrollments(filter func(models.Enrollment) bool) []models.Enrollment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.enrollments, filter)
}

// ---- quizzes ----

func (s *Store) InsertQuiz(q models.Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes = append(s.quizzes, q)
}

func (s *Store) QuizByID(id string) (models.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.quizzes, id); i >= 0 {
		return s.quizzes[i], nil
	}
	return models.Quiz{}, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
}

func (s *Store) Quizzes(filter func(models.Quiz) bool) []models.Quiz {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.quizzes, filter)
}

func (s *Store) UpdateQuiz(id string, mutate func(*models.Quiz)) (models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.quizzes, id)
	if i < 0 {
		return models.Quiz{}, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	mutate(&s.quizzes[i])
	return s.quizzes[i], nil
}

// ---- questions ----

func (s *Store) InsertQuestion(q models.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, q)
}

func (s *Store) QuestionByID(id string) (models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.questions, id); i >= 0 {
		return s.questions[i], nil
	}
	return models.Question{}, fmt.Errorf("question %s: %w", id, ErrNotFound)
}

func (s *Store) Questions(filter func(models.Question) bool) []models.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.questions, filter)
}

func (s *Store) UpdateQuestion(id string, mutate func(*models.Question)) (models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.questions, id)
	if i < 0 {
		return models.Question{}, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	mutate(&s.questions[i])
	return s.questions[i], nil
}

// ---- options ----

func (s *Store) InsertOption(o models.Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = append(s.options, o)
}

func (s *Store) Options(filter func(models.Option) bool) []models.Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.options, filter)
}

func (s *Store) UpdateOption(id string, mutate func(*models.Option)) (models.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.options, id)
	if i < 0 {
		return models.Option{}, fmt.Errorf("option %s: %w", id, ErrNotFound)
	}
	mutate(&s.options[i])
	return s.options[i], nil
}

// ---- submissions ----

func (s *Store) InsertSubmission(sub models.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, sub)
}

func (s *Store) Submissions(filter func(models.Submission) bool) []models.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := collect(s.submissions, filter)
	for i := range out {
		out[i] = cloneSubmission(out[i])
	}
	return out
}

// DeleteSubmissions removes every submission matching the filter and reports
// how many were removed.
func (s *Store) DeleteSubmissions(match func(models.Submission) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.submissions)
	s.submissions = drop(s.submissions, match)
	return before - len(s.submissions)
}

// ---- progress ----

func (s *Store) ProgressFor(studentID, courseID string) (models.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.progress {
		if p.StudentID == studentID && p.CourseID == courseID {
			return cloneProgress(p), nil
		}
	}
	return models.Progress{}, fmt.Errorf("progress for student %s in course %s: %w", studentID, courseID, ErrNotFound)
}

func (s *Store) ProgressRecords(filter func(models.Progress) bool) []models.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := collect(s.progress, filter)
	for i := range out {
		out[i] = cloneProgress(out[i])
	}
	return out
}

// ---- notifications ----

func (s *Store) InsertNotification(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
}

func (s *Store) Notifications(filter func(models.Notification) bool) []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.notifications, filter)
}

func (s *Store) UpdateNotification(id string, mutate func(*models.Notification)) (models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.notifications, id)
	if i < 0 {
		return models.Notification{}, fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	mutate(&s.notifications[i])
	return s.notifications[i], nil
}

// UpdateNotifications applies the mutator to every matching notification and
// reports how many were touched.
func (s *Store) UpdateNotifications(match func(models.Notification) bool, mutate func(*models.Notification)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.notifications {
		if match(s.notifications[i]) {
			mutate(&s.notifications[i])
			n++
		}
	}
	return n
}

// Records containing slices must be deep-copied so callers hold snapshots,
// not aliases into store memory.

func cloneProgress(p models.Progress) models.Progress {
	p.CompletedLessonIDs = append([]string(nil), p.CompletedLessonIDs...)
	return p
}

func cloneSubmission(sub models.Submission) models.Submission {
	sub.Answers = append([]models.SubmissionAnswer(nil), sub.Answers...)
	return sub
}
