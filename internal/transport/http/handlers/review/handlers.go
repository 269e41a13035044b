package reviewhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"perfdesk/internal/domain/audit"
	"perfdesk/internal/domain/auth"
	"perfdesk/internal/domain/notice"
	"perfdesk/internal/domain/review"
	"perfdesk/internal/domain/session"
	"perfdesk/internal/export"
	"perfdesk/internal/transport/http/api"
	"perfdesk/internal/transport/http/middleware"
	"perfdesk/internal/transport/http/shared"
)

type Handler struct {
	Service  *review.Service
	Sessions *session.Manager
	Notices  *notice.Center
	Audit    *audit.Service
	Perms    middleware.PermissionStore
}

func NewHandler(service *review.Service, sessions *session.Manager, notices *notice.Center, auditSvc *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Sessions: sessions, Notices: notices, Audit: auditSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reviews", func(r chi.Router) {
		read := middleware.RequirePermission(auth.PermReviewRead, h.Perms)
		edit := middleware.RequirePermission(auth.PermReviewEdit, h.Perms)

		r.With(read).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermReviewCreate, h.Perms)).Post("/", h.handleCreate)

		r.Route("/{reviewID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(read).Get("/summary", h.handleSummary)
			r.With(read).Get("/notices", h.handleNotices)
			r.With(middleware.RequirePermission(auth.PermReviewExport, h.Perms)).Get("/export.pdf", h.handleExportPDF)

			r.With(edit).Put("/summary-comment", h.handleSetSummaryComment)

			r.Route("/competencies", func(r chi.Router) {
				r.With(edit).Post("/", h.handleAddCompetency)
				r.With(edit).Put("/{index}", h.handleUpdateCompetency)
				r.With(edit).Delete("/{index}", h.handleRemoveCompetency)
				r.With(edit).Put("/{index}/self-rating", h.handleCompetencySelfRating)
				r.With(edit).Put("/{index}/manager-rating", h.handleCompetencyManagerRating)
				r.With(read).Get("/{index}/comments", h.handleCompetencyComments)
				r.With(edit).Post("/{index}/comments", h.handleAddCompetencyComment)
			})

			r.Route("/goals", func(r chi.Router) {
				r.With(edit).Post("/", h.handleAddGoal)
				r.With(edit).Put("/{index}", h.handleUpdateGoal)
				r.With(edit).Delete("/{index}", h.handleRemoveGoal)
				r.With(edit).Put("/{index}/self-rating", h.handleGoalSelfRating)
				r.With(edit).Put("/{index}/manager-rating", h.handleGoalManagerRating)
				r.With(read).Get("/{index}/comments", h.handleGoalComments)
				r.With(edit).Post("/{index}/comments", h.handleAddGoalComment)
			})

			r.Route("/reflections", func(r chi.Router) {
				r.With(edit).Post("/", h.handleAddReflection)
				r.With(edit).Put("/{index}/question", h.handleUpdateReflectionQuestion)
				r.With(edit).Put("/{index}/answer", h.handleSetReflectionAnswer)
				r.With(edit).Delete("/{index}", h.handleRemoveReflection)
			})
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reviews, err := h.Service.List(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_list_failed", "failed to list reviews", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, reviews, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload struct {
		CycleID    string `json:"cycleId"`
		EmployeeID string `json:"employeeId"`
		ManagerID  string `json:"managerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("cycleId", payload.CycleID, "cycle id is required")
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("managerId", payload.ManagerID, "manager id is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	doc := &review.Review{
		ID:              uuid.NewString(),
		CycleID:         payload.CycleID,
		EmployeeID:      payload.EmployeeID,
		ManagerID:       payload.ManagerID,
		Status:          review.StatusDraft,
		Competencies:    []review.Competency{},
		AssignedGoals:   []review.AssignedGoal{},
		SelfReflections: []review.SelfReflection{},
	}
	if err := h.Service.Create(r.Context(), doc); err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_create_failed", "failed to create review", middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user.UserID, audit.ActionReviewCreate, "review", doc.ID, nil, payload)
	api.Created(w, map[string]string{"id": doc.ID}, middleware.GetRequestID(r.Context()))
}

// handleGet opens (or resumes) the caller's editing session and returns
// the in-memory document plus the recomputed summary. HR has no session;
// it reads the stored row directly.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reviewID := chi.URLParam(r, "reviewID")

	if user.RoleName == auth.RoleHR {
		doc, err := h.Service.Load(r.Context(), reviewID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		api.Success(w, map[string]any{"review": doc, "summary": review.Summarize(doc)}, middleware.GetRequestID(r.Context()))
		return
	}

	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	api.Success(w, map[string]any{
		"review":  s.Snapshot(),
		"summary": s.Summary(),
		"role":    s.Role,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reviewID := chi.URLParam(r, "reviewID")

	// A live session's in-memory lists win over the stored row.
	if s, ok := h.Sessions.Get(reviewID, user.UserID); ok {
		api.Success(w, s.Summary(), middleware.GetRequestID(r.Context()))
		return
	}
	doc, err := h.Service.Load(r.Context(), reviewID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, review.Summarize(doc), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleNotices(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reviewID := chi.URLParam(r, "reviewID")
	api.Success(w, h.Notices.Active(session.Key(reviewID, user.UserID)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompetencySelfRating(w http.ResponseWriter, r *http.Request) {
	h.rating(w, r, func(s *session.Session, index, rating int) error {
		return s.SetCompetencySelfRating(index, rating)
	})
}

func (h *Handler) handleCompetencyManagerRating(w http.ResponseWriter, r *http.Request) {
	h.rating(w, r, func(s *session.Session, index, rating int) error {
		return s.SetCompetencyManagerRating(index, rating)
	})
}

func (h *Handler) handleGoalSelfRating(w http.ResponseWriter, r *http.Request) {
	h.rating(w, r, func(s *session.Session, index, rating int) error {
		return s.SetGoalSelfRating(index, rating)
	})
}

func (h *Handler) handleGoalManagerRating(w http.ResponseWriter, r *http.Request) {
	h.rating(w, r, func(s *session.Session, index, rating int) error {
		return s.SetGoalManagerRating(index, rating)
	})
}

func (h *Handler) rating(w http.ResponseWriter, r *http.Request, apply func(*session.Session, int, int) error) {
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}

	var payload struct {
		Rating int `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Rating("rating", payload.Rating)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := apply(s, index, payload.Rating); err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, s.Summary(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddCompetency(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "competency name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := s.AddCompetency(payload.Name, payload.Description); err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, user.UserID, audit.ActionCompetencyAdd, "review", s.ReviewID, nil, payload)
	api.Created(w, s.Snapshot().Competencies, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateCompetency(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "competency name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	before := h.competencyAt(s, index)
	if err := s.UpdateCompetency(index, payload.Name, payload.Description); err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, user.UserID, audit.ActionCompetencyEdit, "review", s.ReviewID, before, payload)
	api.Success(w, s.Snapshot().Competencies, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRemoveCompetency(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	before := h.competencyAt(s, index)
	if err := s.RemoveCompetency(index); err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, user.UserID, audit.ActionCompetencyRemove, "review", s.ReviewID, before, nil)
	api.Success(w, s.Snapshot().Competencies, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	payload, ok := h.goalPayload(w, r)
	if !ok {
		return
	}
	if err := s.AddGoal(payload.Title, payload.Description, payload.Status, payload.DueDate); err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, user.UserID, audit.ActionGoalAdd, "review", s.ReviewID, nil, payload)
	api.Created(w, s.Snapshot().AssignedGoals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	payload, ok := h.goalPayload(w, r)
	if !ok {
		return
	}
	before := h.goalAt(s, index)
	if err := s.UpdateGoal(index, payload.Title, payload.Description, payload.Status, payload.DueDate); err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, user.UserID, audit.ActionGoalEdit, "review", s.ReviewID, before, payload)
	api.Success(w, s.Snapshot().AssignedGoals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRemoveGoal(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	before := h.goalAt(s, index)
	if err := s.RemoveGoal(index); err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, user.UserID, audit.ActionGoalRemove, "review", s.ReviewID, before, nil)
	api.Success(w, s.Snapshot().AssignedGoals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddReflection(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	var payload struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("question", payload.Question, "question text is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	if err := s.AddReflectionQuestion(payload.Question); err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, user.UserID, audit.ActionQuestionAdd, "review", s.ReviewID, nil, payload)
	api.Created(w, s.Snapshot().SelfReflections, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateReflectionQuestion(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	var payload struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if err := s.UpdateReflectionQuestion(index, payload.Question); err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, user.UserID, audit.ActionQuestionEdit, "review", s.ReviewID, nil, payload)
	api.Success(w, s.Snapshot().SelfReflections, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetReflectionAnswer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	var payload struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if err := s.SetReflectionAnswer(index, payload.Answer); err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, s.Snapshot().SelfReflections, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRemoveReflection(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	if err := s.RemoveReflection(index); err != nil {
		h.fail(w, r, err)
		return
	}
	h.record(r, user.UserID, audit.ActionQuestionRemove, "review", s.ReviewID, nil, nil)
	api.Success(w, s.Snapshot().SelfReflections, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetSummaryComment(w http.ResponseWriter, r *http.Request) {
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if err := s.SetSummaryComment(payload.Text); err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, s.Snapshot().SummaryComments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompetencyComments(w http.ResponseWriter, r *http.Request) {
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	comments, err := s.CompetencyComments(r.Context(), index)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, comments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddCompetencyComment(w http.ResponseWriter, r *http.Request) {
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	content, ok := h.commentPayload(w, r)
	if !ok {
		return
	}
	comment, err := s.AddCompetencyComment(r.Context(), index, content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Created(w, comment, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGoalComments(w http.ResponseWriter, r *http.Request) {
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	comments, err := s.GoalComments(r.Context(), index)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, comments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddGoalComment(w http.ResponseWriter, r *http.Request) {
	s, ok := h.openSession(w, r)
	if !ok {
		return
	}
	index, ok := h.indexParam(w, r)
	if !ok {
		return
	}
	content, ok := h.commentPayload(w, r)
	if !ok {
		return
	}
	comment, err := s.AddGoalComment(r.Context(), index, content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Created(w, comment, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "reviewID")
	doc, err := h.Service.Load(r.Context(), reviewID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pdfBytes, err := export.ReviewPDF(doc)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to render review pdf", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="review-`+reviewID+`.pdf"`)
	if _, err := w.Write(pdfBytes); err != nil {
		slog.Warn("review pdf write failed", "err", err)
	}
}

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	s, err := h.Sessions.Open(r.Context(), chi.URLParam(r, "reviewID"), user.UserID)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_index", "item index must be a non-negative integer", middleware.GetRequestID(r.Context()))
		return 0, false
	}
	return index, true
}

type goalPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate"`
}

func (h *Handler) goalPayload(w http.ResponseWriter, r *http.Request) (goalPayload, bool) {
	var payload goalPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return payload, false
	}
	v := shared.NewValidator()
	v.Required("title", payload.Title, "goal title is required")
	v.GoalStatus("status", payload.Status)
	v.Date("dueDate", payload.DueDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return payload, false
	}
	return payload, true
}

func (h *Handler) commentPayload(w http.ResponseWriter, r *http.Request) (string, bool) {
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return "", false
	}
	v := shared.NewValidator()
	v.Required("content", payload.Content, "comment content is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return "", false
	}
	return payload.Content, true
}

func (h *Handler) competencyAt(s *session.Session, index int) any {
	competencies := s.Snapshot().Competencies
	if index < 0 || index >= len(competencies) {
		return nil
	}
	return competencies[index]
}

func (h *Handler) goalAt(s *session.Session, index int) any {
	goals := s.Snapshot().AssignedGoals
	if index < 0 || index >= len(goals) {
		return nil
	}
	return goals[index]
}

func (h *Handler) record(r *http.Request, actorID, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), actorID, action, entityType, entityID, middleware.GetRequestID(r.Context()), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, review.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "review not found", requestID)
	case errors.Is(err, review.ErrIndexOutOfRange):
		api.Fail(w, http.StatusNotFound, "not_found", "item not found at index", requestID)
	case errors.Is(err, review.ErrNotPermitted), errors.Is(err, session.ErrNoAccess):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
	case errors.Is(err, review.ErrInvalidRating), errors.Is(err, review.ErrInvalidStatus):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), requestID)
	default:
		slog.Warn("review request failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}
