package models

// APIResponse is the discriminated success/error shape every endpoint returns.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func OK(data interface{}) APIResponse { return APIResponse{Success: true, Data: data} }
func Fail(message string) APIResponse { return APIResponse{Success: false, Error: message} }

// EnrolledStudent is a user joined with their enrollment date for the
// course-management screen.
type EnrolledStudent struct {
	User
	EnrolledAt string `json:"enrolledAt"`
}

// GradedSubmission decorates a submission with the display-only pass
// computation. Passed is never stored.
type GradedSubmission struct {
	Submission
	Percentage int  `json:"percentage"`
	Passed     bool `json:"passed"`
}

// DashboardStats are the aggregates the student dashboard shows.
type DashboardStats struct {
	EnrolledCourses  int `json:"enrolledCourses"`
	CompletedCourses int `json:"completedCourses"`
	AveragePercent   int `json:"averagePercent"`
}
