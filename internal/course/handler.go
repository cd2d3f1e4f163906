package course

import (
	"encoding/json"
	"net/http"

	"edunova-server/internal/api"
	"edunova-server/internal/auth"
	"edunova-server/internal/models"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	if teacherID := r.URL.Query().Get("teacherId"); teacherID != "" {
		api.WriteData(w, http.StatusOK, h.service.CoursesByTeacher(teacherID))
		return
	}
	api.WriteData(w, http.StatusOK, h.service.ListCourses())
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.CourseByID(mux.Vars(r)["id"])
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, c)
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var in CourseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Teachers create courses they own; only admins may assign another owner.
	if user, ok := auth.CurrentUser(r.Context()); ok {
		if in.TeacherID == "" || user.Role != models.RoleAdmin {
			in.TeacherID = user.ID
		}
	}
	c, err := h.service.CreateCourse(in)
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var in CourseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := h.service.UpdateCourse(mux.Vars(r)["id"], in)
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, c)
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCourse(mux.Vars(r)["id"]); err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, true)
}

// ---- lessons ----

func (h *Handler) ListLessons(w http.ResponseWriter, r *http.Request) {
	api.WriteData(w, http.StatusOK, h.service.LessonsByCourse(mux.Vars(r)["id"]))
}

func (h *Handler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var in LessonInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	l, err := h.service.CreateLesson(mux.Vars(r)["id"], in)
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusCreated, l)
}

func (h *Handler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	var in LessonInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	l, err := h.service.UpdateLesson(mux.Vars(r)["lessonId"], in)
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, l)
}

func (h *Handler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteLesson(mux.Vars(r)["lessonId"]); err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, true)
}

// ---- enrollment and progress ----

func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	enrollment, err := h.service.Enroll(user.ID, mux.Vars(r)["id"])
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusCreated, enrollment)
}

func (h *Handler) RemoveEnrollment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.service.RemoveEnrollment(vars["studentId"], vars["id"]); err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, true)
}

func (h *Handler) EnrolledStudents(w http.ResponseWriter, r *http.Request) {
	api.WriteData(w, http.StatusOK, h.service.EnrolledStudents(mux.Vars(r)["id"]))
}

func (h *Handler) MyCourses(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	api.WriteData(w, http.StatusOK, h.service.EnrolledCourses(user.ID))
}

func (h *Handler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	vars := mux.Vars(r)
	p, err := h.service.MarkLessonComplete(user.ID, vars["id"], vars["lessonId"])
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, p)
}

func (h *Handler) MyProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	api.WriteData(w, http.StatusOK, h.service.ProgressForStudent(user.ID))
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	api.WriteData(w, http.StatusOK, h.service.DashboardStats(user.ID))
}
