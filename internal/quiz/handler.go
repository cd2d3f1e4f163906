package quiz

import (
	"encoding/json"
	"net/http"

	"edunova-server/internal/api"
	"edunova-server/internal/auth"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	api.WriteData(w, http.StatusOK, h.service.QuizzesByCourse(mux.Vars(r)["id"]))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.QuizByID(mux.Vars(r)["id"])
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, q)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateQuizInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q, err := h.service.CreateQuiz(in)
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusCreated, q)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in CreateQuizInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q, err := h.service.UpdateQuiz(mux.Vars(r)["id"], in)
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, q)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuiz(mux.Vars(r)["id"]); err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, true)
}

// ---- questions ----

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["id"]
	if _, err := h.service.QuizByID(quizID); err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, map[string]interface{}{
		"questions": h.service.QuestionsByQuiz(quizID),
		"options":   h.service.OptionsByQuiz(quizID),
	})
}

func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var in CreateQuestionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q, err := h.service.CreateQuestion(mux.Vars(r)["id"], in)
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusCreated, q)
}

func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var in CreateQuestionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q, err := h.service.UpdateQuestion(mux.Vars(r)["questionId"], in)
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, q)
}

func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuestion(mux.Vars(r)["questionId"]); err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, true)
}

func (h *Handler) UpdateOption(w http.ResponseWriter, r *http.Request) {
	var in OptionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	o, err := h.service.UpdateOption(mux.Vars(r)["optionId"], in)
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, o)
}

// ---- taking ----

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	st, err := h.service.Status(user.ID, mux.Vars(r)["id"])
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, st)
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	st, err := h.service.Start(user.ID, mux.Vars(r)["id"])
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, st)
}

func (h *Handler) SaveAnswer(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	var in struct {
		QuestionID string `json:"questionId"`
		OptionID   string `json:"optionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.service.SaveAnswer(user.ID, mux.Vars(r)["id"], in.QuestionID, in.OptionID); err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, true)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	var in struct {
		Answers map[string]string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.service.Submit(user.ID, mux.Vars(r)["id"], in.Answers)
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, result)
}

func (h *Handler) Retake(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	if err := h.service.Retake(user.ID, mux.Vars(r)["id"]); err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, true)
}

func (h *Handler) MyGrades(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	api.WriteData(w, http.StatusOK, h.service.SubmissionsForStudent(user.ID))
}
