package store

import (
	"errors"
	"testing"

	"edunova-server/internal/models"
)

// seedCourse builds a course with lessons, a quiz with questions/options, an
// enrolled student with progress, and one submission against the quiz.
func seedCourse(t *testing.T, s *Store) {
	t.Helper()
	s.InsertUser(models.User{ID: "stu", Role: models.RoleStudent, IsActive: true})
	s.InsertCourse(models.Course{ID: "c1", Title: "Course"})
	s.InsertLesson(models.Lesson{ID: "l1", CourseID: "c1", OrderNumber: 1})
	s.InsertLesson(models.Lesson{ID: "l2", CourseID: "c1", OrderNumber: 2})
	s.InsertLesson(models.Lesson{ID: "l3", CourseID: "c1", OrderNumber: 3})
	s.InsertQuiz(models.Quiz{ID: "q1", CourseID: "c1"})
	s.InsertQuestion(models.Question{ID: "qn1", QuizID: "q1"})
	s.InsertQuestion(models.Question{ID: "qn2", QuizID: "q1"})
	s.InsertOption(models.Option{ID: "o1", QuestionID: "qn1", IsCorrect: true})
	s.InsertOption(models.Option{ID: "o2", QuestionID: "qn1"})
	s.InsertOption(models.Option{ID: "o3", QuestionID: "qn2", IsCorrect: true})
	if _, err := s.Enroll("stu", "c1"); err != nil {
		t.Fatal(err)
	}
	s.InsertSubmission(models.Submission{ID: "sub1", QuizID: "q1", StudentID: "stu"})
}

func TestDeleteCourseCascadesFully(t *testing.T) {
	s := New()
	seedCourse(t, s)
	// An unrelated course to prove the cascade is scoped.
	s.InsertCourse(models.Course{ID: "c2"})
	s.InsertLesson(models.Lesson{ID: "other", CourseID: "c2"})

	if err := s.DeleteCourse("c1"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.CourseByID("c1"); !errors.Is(err, ErrNotFound) {
		t.Error("course survived deletion")
	}
	if n := len(s.Lessons(func(l models.Lesson) bool { return l.CourseID == "c1" })); n != 0 {
		t.Errorf("%d lessons left referencing the course", n)
	}
	if n := len(s.Quizzes(func(q models.Quiz) bool { return q.CourseID == "c1" })); n != 0 {
		t.Errorf("%d quizzes left referencing the course", n)
	}
	if n := len(s.Questions(nil)); n != 0 {
		t.Errorf("%d questions left after quiz cascade", n)
	}
	if n := len(s.Options(nil)); n != 0 {
		t.Errorf("%d options left after quiz cascade", n)
	}
	if n := len(s.Submissions(nil)); n != 0 {
		t.Errorf("%d submissions left after quiz cascade", n)
	}
	if n := len(s.Enrollments(nil)); n != 0 {
		t.Errorf("%d enrollments left", n)
	}
	if n := len(s.ProgressRecords(nil)); n != 0 {
		t.Errorf("%d progress records left", n)
	}
	// The unrelated course is untouched.
	if _, err := s.LessonByID("other"); err != nil {
		t.Error("cascade reached an unrelated course's lesson")
	}
}

func TestDeleteQuizRemovesQuestionsOptionsSubmissions(t *testing.T) {
	s := New()
	seedCourse(t, s)

	if err := s.DeleteQuiz("q1"); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Questions(nil)); n != 0 {
		t.Errorf("%d questions left", n)
	}
	if n := len(s.Options(nil)); n != 0 {
		t.Errorf("%d options left", n)
	}
	if n := len(s.Submissions(nil)); n != 0 {
		t.Errorf("%d submissions left", n)
	}
	// Course, lessons and enrollment stay.
	if _, err := s.CourseByID("c1"); err != nil {
		t.Error("quiz cascade must not touch the course")
	}
	if n := len(s.Lessons(nil)); n != 3 {
		t.Errorf("lessons affected by quiz delete: %d left, want 3", n)
	}
}

func TestDeleteQuestionRemovesOnlyItsOptions(t *testing.T) {
	s := New()
	s.InsertQuiz(models.Quiz{ID: "q1"})
	s.InsertQuestion(models.Question{ID: "qn1", QuizID: "q1"})
	s.InsertQuestion(models.Question{ID: "qn2", QuizID: "q1"})
	for _, id := range []string{"a", "b", "c", "d"} {
		s.InsertOption(models.Option{ID: id, QuestionID: "qn1"})
	}
	s.InsertOption(models.Option{ID: "sibling", QuestionID: "qn2"})

	if err := s.DeleteQuestion("qn1"); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Options(func(o models.Option) bool { return o.QuestionID == "qn1" })); n != 0 {
		t.Errorf("%d options left for deleted question", n)
	}
	if _, err := s.QuestionByID("qn2"); err != nil {
		t.Error("sibling question removed")
	}
	if n := len(s.Options(func(o models.Option) bool { return o.QuestionID == "qn2" })); n != 1 {
		t.Error("sibling question's option removed")
	}
}

func TestDeleteUserRemovesStudentRecords(t *testing.T) {
	s := New()
	seedCourse(t, s)

	if err := s.DeleteUser("stu"); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Enrollments(nil)); n != 0 {
		t.Errorf("%d enrollments left", n)
	}
	if n := len(s.ProgressRecords(nil)); n != 0 {
		t.Errorf("%d progress records left", n)
	}
	if n := len(s.Submissions(nil)); n != 0 {
		t.Errorf("%d submissions left", n)
	}
	// Content owned by others survives.
	if _, err := s.CourseByID("c1"); err != nil {
		t.Error("user delete must not touch courses")
	}
}

func TestEnrollCreatesProgressAndRejectsDuplicates(t *testing.T) {
	s := New()
	s.InsertCourse(models.Course{ID: "c1"})

	if _, err := s.Enroll("stu", "c1"); err != nil {
		t.Fatal(err)
	}
	p, err := s.ProgressFor("stu", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Percent != 0 || len(p.CompletedLessonIDs) != 0 {
		t.Errorf("fresh progress = %d%% with %d completed, want 0%% and none",
			p.Percent, len(p.CompletedLessonIDs))
	}

	if _, err := s.Enroll("stu", "c1"); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("second enroll err = %v, want ErrAlreadyEnrolled", err)
	}
	if _, err := s.Enroll("stu", "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("enroll in missing course err = %v, want ErrNotFound", err)
	}
}

func TestRemoveEnrollmentDropsProgress(t *testing.T) {
	s := New()
	s.InsertCourse(models.Course{ID: "c1"})
	if _, err := s.Enroll("stu", "c1"); err != nil {
		t.Fatal(err)
	}

	if err := s.RemoveEnrollment("stu", "c1"); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Enrollments(nil)); n != 0 {
		t.Errorf("%d enrollments left", n)
	}
	if _, err := s.ProgressFor("stu", "c1"); !errors.Is(err, ErrNotFound) {
		t.Error("progress record survived unenrollment")
	}
	if err := s.RemoveEnrollment("stu", "c1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second removal err = %v, want ErrNotFound", err)
	}
}

func TestMarkLessonCompleteProgression(t *testing.T) {
	s := New()
	seedCourse(t, s)

	steps := []struct {
		lesson string
		want   int
	}{
		{"l1", 33},
		{"l2", 67},
		{"l3", 100},
	}
	for _, step := range steps {
		p, err := s.MarkLessonComplete("stu", "c1", step.lesson)
		if err != nil {
			t.Fatal(err)
		}
		if p.Percent != step.want {
			t.Errorf("after %s percent = %d, want %d", step.lesson, p.Percent, step.want)
		}
	}
}

func TestMarkLessonCompleteIsIdempotent(t *testing.T) {
	s := New()
	seedCourse(t, s)

	first, err := s.MarkLessonComplete("stu", "c1", "l1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.MarkLessonComplete("stu", "c1", "l1")
	if err != nil {
		t.Fatal(err)
	}
	if len(second.CompletedLessonIDs) != len(first.CompletedLessonIDs) {
		t.Errorf("completed set grew on repeat: %d -> %d",
			len(first.CompletedLessonIDs), len(second.CompletedLessonIDs))
	}
	if second.Percent != first.Percent {
		t.Errorf("percent changed on repeat: %d -> %d", first.Percent, second.Percent)
	}
}

func TestMarkLessonCompleteRequiresEnrollment(t *testing.T) {
	s := New()
	s.InsertCourse(models.Course{ID: "c1"})
	s.InsertLesson(models.Lesson{ID: "l1", CourseID: "c1"})

	if _, err := s.MarkLessonComplete("stranger", "c1", "l1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMarkLessonCompleteEmptyCourse(t *testing.T) {
	s := New()
	s.InsertCourse(models.Course{ID: "c1"})
	if _, err := s.Enroll("stu", "c1"); err != nil {
		t.Fatal(err)
	}
	// No lessons exist; completing an id must not divide by zero.
	p, err := s.MarkLessonComplete("stu", "c1", "phantom")
	if err != nil {
		t.Fatal(err)
	}
	if p.Percent != 0 {
		t.Errorf("percent = %d, want 0 for a course with no lessons", p.Percent)
	}
}

func TestPercentRecomputedAgainstCurrentLessonCount(t *testing.T) {
	s := New()
	seedCourse(t, s)

	if _, err := s.MarkLessonComplete("stu", "c1", "l1"); err != nil {
		t.Fatal(err)
	}
	// Deleting a lesson leaves the stored percent stale until the next
	// completion event recomputes it against the new count.
	if err := s.DeleteLesson("l3"); err != nil {
		t.Fatal(err)
	}
	p, _ := s.ProgressFor("stu", "c1")
	if p.Percent != 33 {
		t.Fatalf("percent changed without a completion event: %d", p.Percent)
	}
	p, err := s.MarkLessonComplete("stu", "c1", "l2")
	if err != nil {
		t.Fatal(err)
	}
	if p.Percent != 100 {
		t.Errorf("percent = %d, want 100 (2 of 2 current lessons)", p.Percent)
	}
}
