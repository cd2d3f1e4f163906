package course

import (
	"fmt"
	"math"
	"sort"
	"time"

	"edunova-server/internal/models"
	"edunova-server/internal/store"

	"go.uber.org/zap"
)

// Notifier delivers a notification to a user; nil disables delivery.
type Notifier interface {
	Notify(userID, title, message string, typ models.NotificationType)
}

type Service struct {
	store    *store.Store
	notifier Notifier
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewService(st *store.Store, notifier Notifier, log *zap.SugaredLogger) *Service {
	return &Service{store: st, notifier: notifier, log: log, now: time.Now}
}

// ---- courses ----

type CourseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	TeacherID   string `json:"teacherId"`
	Thumbnail   string `json:"thumbnail"`
	Duration    string `json:"duration"`
	Level       string `json:"level"`
}

func (s *Service) CreateCourse(in CourseInput) (models.Course, error) {
	teacher, err := s.store.UserByID(in.TeacherID)
	if err != nil {
		return models.Course{}, err
	}
	if teacher.Role != models.RoleTeacher && teacher.Role != models.RoleAdmin {
		return models.Course{}, store.ValidationError("course owner must be a teacher")
	}
	c := models.Course{
		ID:          store.NewID("course"),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		TeacherID:   in.TeacherID,
		Thumbnail:   in.Thumbnail,
		Duration:    in.Duration,
		Level:       in.Level,
		CreatedAt:   s.now(),
	}
	s.store.InsertCourse(c)
	return c, nil
}

func (s *Service) UpdateCourse(id string, in CourseInput) (models.Course, error) {
	return s.store.UpdateCourse(id, func(c *models.Course) {
		c.Title = in.Title
		c.Description = in.Description
		c.Category = in.Category
		c.Thumbnail = in.Thumbnail
		c.Duration = in.Duration
		c.Level = in.Level
		if in.TeacherID != "" {
			c.TeacherID = in.TeacherID
		}
	})
}

func (s *Service) DeleteCourse(id string) error {
	if err := s.store.DeleteCourse(id); err != nil {
		return err
	}
	s.log.Infow("course deleted with cascade", "course", id)
	return nil
}

func (s *Service) CourseByID(id string) (models.Course, error) {
	return s.store.CourseByID(id)
}

func (s *Service) ListCourses() []models.Course {
	return s.store.Courses(nil)
}

func (s *Service) CoursesByTeacher(teacherID string) []models.Course {
	return s.store.Courses(func(c models.Course) bool { return c.TeacherID == teacherID })
}

// ---- lessons ----

type LessonInput struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	VideoURL    string `json:"videoUrl"`
	OrderNumber int    `json:"orderNumber"`
	Duration    string `json:"duration"`
}

func (s *Service) CreateLesson(courseID string, in LessonInput) (models.Lesson, error) {
	if _, err := s.store.CourseByID(courseID); err != nil {
		return models.Lesson{}, err
	}
	l := models.Lesson{
		ID:          store.NewID("lesson"),
		CourseID:    courseID,
		Title:       in.Title,
		Content:     in.Content,
		VideoURL:    in.VideoURL,
		OrderNumber: in.OrderNumber,
		Duration:    in.Duration,
	}
	s.store.InsertLesson(l)
	return l, nil
}

func (s *Service) UpdateLesson(id string, in LessonInput) (models.Lesson, error) {
	return s.store.UpdateLesson(id, func(l *models.Lesson) {
		l.Title = in.Title
		l.Content = in.Content
		l.VideoURL = in.VideoURL
		l.OrderNumber = in.OrderNumber
		l.Duration = in.Duration
	})
}

func (s *Service) DeleteLesson(id string) error {
	return s.store.DeleteLesson(id)
}

// LessonsByCourse returns a course's lessons sorted by order number.
// Sorting is stable so equal order numbers keep their store order, which is
// what next/previous navigation relies on.
func (s *Service) LessonsByCourse(courseID string) []models.Lesson {
	lessons := s.store.Lessons(func(l models.Lesson) bool { return l.CourseID == courseID })
	sort.SliceStable(lessons, func(i, j int) bool { return lessons[i].OrderNumber < lessons[j].OrderNumber })
	return lessons
}

// ---- enrollment and progress ----

func (s *Service) Enroll(studentID, courseID string) (models.Enrollment, error) {
	enrollment, err := s.store.Enroll(studentID, courseID)
	if err != nil {
		return models.Enrollment{}, err
	}
	if s.notifier != nil {
		if c, cerr := s.store.CourseByID(courseID); cerr == nil {
			s.notifier.Notify(studentID, "Enrolled",
				fmt.Sprintf("You are now enrolled in %s.", c.Title), models.NotifySuccess)
		}
	}
	s.log.Infow("enrolled", "student", studentID, "course", courseID)
	return enrollment, nil
}

func (s *Service) RemoveEnrollment(studentID, courseID string) error {
	return s.store.RemoveEnrollment(studentID, courseID)
}

// EnrolledStudents joins users over a course's enrollments. Enrollments
// whose student no longer exists are skipped.
func (s *Service) EnrolledStudents(courseID string) []models.EnrolledStudent {
	enrollments := s.store.Enrollments(func(e models.Enrollment) bool { return e.CourseID == courseID })
	out := make([]models.EnrolledStudent, 0, len(enrollments))
	for _, e := range enrollments {
		student, err := s.store.UserByID(e.StudentID)
		if err != nil {
			continue
		}
		student.PasswordHash = ""
		out = append(out, models.EnrolledStudent{
			User:       student,
			EnrolledAt: e.EnrolledAt.Format(time.RFC3339),
		})
	}
	return out
}

// EnrolledCourses lists the courses a student is enrolled in, in enrollment
// order. Dangling course references are skipped.
func (s *Service) EnrolledCourses(studentID string) []models.Course {
	enrollments := s.store.Enrollments(func(e models.Enrollment) bool { return e.StudentID == studentID })
	out := make([]models.Course, 0, len(enrollments))
	for _, e := range enrollments {
		if c, err := s.store.CourseByID(e.CourseID); err == nil {
			out = append(out, c)
		}
	}
	return out
}

func (s *Service) MarkLessonComplete(studentID, courseID, lessonID string) (models.Progress, error) {
	if _, err := s.store.LessonByID(lessonID); err != nil {
		return models.Progress{}, err
	}
	return s.store.MarkLessonComplete(studentID, courseID, lessonID)
}

func (s *Service) ProgressFor(studentID, courseID string) (models.Progress, error) {
	return s.store.ProgressFor(studentID, courseID)
}

func (s *Service) ProgressForStudent(studentID string) []models.Progress {
	return s.store.ProgressRecords(func(p models.Progress) bool { return p.StudentID == studentID })
}

// DashboardStats aggregates a student's progress the way the dashboard
// displays it.
func (s *Service) DashboardStats(studentID string) models.DashboardStats {
	records := s.ProgressForStudent(studentID)
	stats := models.DashboardStats{EnrolledCourses: len(s.store.Enrollments(
		func(e models.Enrollment) bool { return e.StudentID == studentID }))}
	if len(records) == 0 {
		return stats
	}
	sum := 0
	for _, p := range records {
		sum += p.Percent
		if p.Percent == 100 {
			stats.CompletedCourses++
		}
	}
	stats.AveragePercent = int(math.Round(float64(sum) / float64(len(records))))
	return stats
}
