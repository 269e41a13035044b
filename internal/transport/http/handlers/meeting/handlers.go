package meetinghandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"perfdesk/internal/domain/audit"
	"perfdesk/internal/domain/auth"
	"perfdesk/internal/domain/meeting"
	"perfdesk/internal/domain/notice"
	"perfdesk/internal/transport/http/api"
	"perfdesk/internal/transport/http/middleware"
	"perfdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *meeting.Service
	Notices *notice.Center
	Audit   *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *meeting.Service, notices *notice.Center, auditSvc *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Notices: notices, Audit: auditSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/meetings", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermMeetingRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermMeetingCreate, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermMeetingRead, h.Perms)).Get("/{meetingID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermMeetingRead, h.Perms)).Get("/{meetingID}/notices", h.handleNotices)
		r.With(middleware.RequirePermission(auth.PermMeetingWrite, h.Perms)).Put("/{meetingID}/fields/{field}", h.handleEditField)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	meetings, err := h.Service.List(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "meeting_list_failed", "failed to list meetings", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, meetings, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload struct {
		EmployeeID  string `json:"employeeId"`
		ScheduledAt string `json:"scheduledAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	scheduledAt, _ := v.Date("scheduledAt", payload.ScheduledAt)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	if scheduledAt.IsZero() {
		scheduledAt = time.Now().UTC()
	}

	m, err := h.Service.Create(r.Context(), payload.EmployeeID, user.UserID, scheduledAt)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "meeting_create_failed", "failed to create meeting", middleware.GetRequestID(r.Context()))
		return
	}
	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionMeetingCreate, "meeting", m.ID, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
			slog.Warn("audit meeting.create failed", "err", err)
		}
	}
	api.Created(w, m, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	m, err := h.Service.Get(r.Context(), chi.URLParam(r, "meetingID"))
	if errors.Is(err, meeting.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "meeting not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "meeting_get_failed", "failed to load meeting", middleware.GetRequestID(r.Context()))
		return
	}
	if user.UserID != m.EmployeeID && user.UserID != m.ManagerID && user.RoleName != auth.RoleHR {
		api.Fail(w, http.StatusForbidden, "forbidden", "not a meeting participant", middleware.GetRequestID(r.Context()))
		return
	}
	// Manager notes stay private to the manager.
	if user.UserID != m.ManagerID {
		delete(m.Fields, meeting.FieldManagerNotes)
	}
	api.Success(w, m, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEditField(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	meetingID := chi.URLParam(r, "meetingID")
	field := chi.URLParam(r, "field")

	m, err := h.Service.Get(r.Context(), meetingID)
	if errors.Is(err, meeting.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "meeting not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "meeting_get_failed", "failed to load meeting", middleware.GetRequestID(r.Context()))
		return
	}
	if !meeting.ValidField(field) {
		api.Fail(w, http.StatusBadRequest, "unknown_field", "unknown meeting field", middleware.GetRequestID(r.Context()))
		return
	}
	if !meeting.CanEdit(m, field, user.UserID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to edit this field", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.EditField(meetingID, field, payload.Value); err != nil {
		api.Fail(w, http.StatusBadRequest, "unknown_field", "unknown meeting field", middleware.GetRequestID(r.Context()))
		return
	}
	// The write is debounced; the ack only confirms the local update.
	api.Success(w, map[string]string{"status": "pending"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleNotices(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Notices.Active(chi.URLParam(r, "meetingID")), middleware.GetRequestID(r.Context()))
}
