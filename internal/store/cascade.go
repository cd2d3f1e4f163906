package store

import (
	"fmt"
	"math"

	"edunova-server/internal/models"
)

// Referential cleanup. Each exported operation takes the store lock once and
// performs the whole cascade under it, so callers never observe orphaned
// child records mid-delete.

// DeleteCourse removes the course and everything hanging off it: lessons,
// quizzes (with their questions, options and submissions), enrollments and
// progress records.
func (s *Store) DeleteCourse(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.courses, id)
	if i < 0 {
		return fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	for _, q := range s.quizzes {
		if q.CourseID == id {
			s.cascadeQuizLocked(q.ID)
		}
	}
	s.quizzes = drop(s.quizzes, func(q models.Quiz) bool { return q.CourseID == id })
	s.lessons = drop(s.lessons, func(l models.Lesson) bool { return l.CourseID == id })
	s.enrollments = drop(s.enrollments, func(e models.Enrollment) bool { return e.CourseID == id })
	s.progress = drop(s.progress, func(p models.Progress) bool { return p.CourseID == id })
	s.courses = append(s.courses[:i], s.courses[i+1:]...)
	return nil
}

// DeleteQuiz removes the quiz, its questions with their options, and every
// submission against it.
func (s *Store) DeleteQuiz(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.quizzes, id)
	if i < 0 {
		return fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	s.cascadeQuizLocked(id)
	s.quizzes = append(s.quizzes[:i], s.quizzes[i+1:]...)
	return nil
}

// cascadeQuizLocked removes a quiz's children but not the quiz itself.
func (s *Store) cascadeQuizLocked(quizID string) {
	questionIDs := make(map[string]bool)
	for _, q := range s.questions {
		if q.QuizID == quizID {
			questionIDs[q.ID] = true
		}
	}
	s.options = drop(s.options, func(o models.Option) bool { return questionIDs[o.QuestionID] })
	s.questions = drop(s.questions, func(q models.Question) bool { return q.QuizID == quizID })
	s.submissions = drop(s.submissions, func(sub models.Submission) bool { return sub.QuizID == quizID })
}

// DeleteQuestion removes the question and its options. Sibling questions of
// the same quiz are untouched.
func (s *Store) DeleteQuestion(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.questions, id)
	if i < 0 {
		return fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	s.options = drop(s.options, func(o models.Option) bool { return o.QuestionID == id })
	s.questions = append(s.questions[:i], s.questions[i+1:]...)
	return nil
}

// DeleteUser removes the user and, treating them as a student, their
// enrollments, progress records and submissions.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.users, id)
	if i < 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	s.enrollments = drop(s.enrollments, func(e models.Enrollment) bool { return e.StudentID == id })
	s.progress = drop(s.progress, func(p models.Progress) bool { return p.StudentID == id })
	s.submissions = drop(s.submissions, func(sub models.Submission) bool { return sub.StudentID == id })
	s.users = append(s.users[:i], s.users[i+1:]...)
	return nil
}

// Enroll creates the enrollment and its derived progress record in one step.
// A second enrollment for the same (student, course) pair is rejected.
func (s *Store) Enroll(studentID, courseID string) (models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.courses, courseID) < 0 {
		return models.Enrollment{}, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
	}
	for _, e := range s.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return models.Enrollment{}, fmt.Errorf("student %s in course %s: %w", studentID, courseID, ErrAlreadyEnrolled)
		}
	}
	now := s.now()
	enrollment := models.Enrollment{
		ID:         NewID("enrollment"),
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: now,
	}
	s.enrollments = append(s.enrollments, enrollment)
	s.progress = append(s.progress, models.Progress{
		ID:                 NewID("progress"),
		StudentID:          studentID,
		CourseID:           courseID,
		CompletedLessonIDs: []string{},
		Percent:            0,
		LastAccessedAt:     now,
	})
	return enrollment, nil
}

// RemoveEnrollment drops the enrollment and its matching progress record.
func (s *Store) RemoveEnrollment(studentID, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for _, e := range s.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("enrollment of %s in %s: %w", studentID, courseID, ErrNotFound)
	}
	s.enrollments = drop(s.enrollments, func(e models.Enrollment) bool {
		return e.StudentID == studentID && e.CourseID == courseID
	})
	s.progress = drop(s.progress, func(p models.Progress) bool {
		return p.StudentID == studentID && p.CourseID == courseID
	})
	return nil
}

// MarkLessonComplete records a completed lesson and recomputes the percentage
// against the course's current lesson count. Completing the same lesson twice
// is a no-op. A course with no lessons yields 0 percent.
func (s *Store) MarkLessonComplete(studentID, courseID, lessonID string) (models.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pi := -1
	for i, p := range s.progress {
		if p.StudentID == studentID && p.CourseID == courseID {
			pi = i
			break
		}
	}
	if pi < 0 {
		return models.Progress{}, fmt.Errorf("progress for student %s in course %s: %w", studentID, courseID, ErrNotFound)
	}
	p := &s.progress[pi]
	done := false
	for _, id := range p.CompletedLessonIDs {
		if id == lessonID {
			done = true
			break
		}
	}
	if !done {
		p.CompletedLessonIDs = append(p.CompletedLessonIDs, lessonID)
		total := 0
		for _, l := range s.lessons {
			if l.CourseID == courseID {
				total++
			}
		}
		if total == 0 {
			p.Percent = 0
		} else {
			p.Percent = int(math.Round(100 * float64(len(p.CompletedLessonIDs)) / float64(total)))
		}
	}
	p.LastAccessedAt = s.now()
	return cloneProgress(*p), nil
}
