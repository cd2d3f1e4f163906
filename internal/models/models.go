package models

import "time"

// Role controls what a user can see and manage.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// QuestionType is how a question is rendered and answered.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
)

// NotificationType is the severity shown next to a notification.
type NotificationType string

const (
	NotifyInfo    NotificationType = "info"
	NotifySuccess NotificationType = "success"
	NotifyWarning NotificationType = "warning"
	NotifyError   NotificationType = "error"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	TeacherID   string    `json:"teacherId"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Level       string    `json:"level,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Lesson struct {
	ID          string `json:"id"`
	CourseID    string `json:"courseId"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	VideoURL    string `json:"videoUrl,omitempty"`
	OrderNumber int    `json:"orderNumber"`
	Duration    string `json:"duration,omitempty"`
}

type Enrollment struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"studentId"`
	CourseID   string    `json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

type Quiz struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"courseId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	TimeLimit   int       `json:"timeLimit,omitempty"` // minutes; 0 means untimed
	CreatedAt   time.Time `json:"createdAt"`
}

type Question struct {
	ID     string       `json:"id"`
	QuizID string       `json:"quizId"`
	Text   string       `json:"text"`
	Type   QuestionType `json:"type"`
	Points int          `json:"points,omitempty"`
}

type Option struct {
	ID         string `json:"id"`
	QuestionID string `json:"questionId"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"isCorrect"`
}

// SubmissionAnswer records how one question was answered.
// SelectedOptionID is empty when the question was left unanswered.
type SubmissionAnswer struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId"`
	IsCorrect        bool   `json:"isCorrect"`
}

type Submission struct {
	ID          string             `json:"id"`
	QuizID      string             `json:"quizId"`
	StudentID   string             `json:"studentId"`
	Score       int                `json:"score"`
	MaxScore    int                `json:"maxScore"`
	SubmittedAt time.Time          `json:"submittedAt"`
	Answers     []SubmissionAnswer `json:"answers"`
}

type Progress struct {
	ID                 string    `json:"id"`
	StudentID          string    `json:"studentId"`
	CourseID           string    `json:"courseId"`
	CompletedLessonIDs []string  `json:"completedLessonIds"`
	Percent            int       `json:"percent"`
	LastAccessedAt     time.Time `json:"lastAccessedAt"`
}

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (u User) EntityID() string         { return u.ID }
func (c Course) EntityID() string       { return c.ID }
func (l Lesson) EntityID() string       { return l.ID }
func (e Enrollment) EntityID() string   { return e.ID }
func (q Quiz) EntityID() string         { return q.ID }
func (q Question) EntityID() string     { return q.ID }
func (o Option) EntityID() string       { return o.ID }
func (s Submission) EntityID() string   { return s.ID }
func (p Progress) EntityID() string     { return p.ID }
func (n Notification) EntityID() string { return n.ID }
