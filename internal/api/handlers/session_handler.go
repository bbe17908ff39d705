package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tutorhive/tutorhive/internal/services"
	"github.com/tutorhive/tutorhive/internal/utils"
)

type SessionHandler struct {
	svc services.SessionService
}

func NewSessionHandler(svc services.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type CreateOpenSessionRequest struct {
	Title           string    `json:"title" binding:"required"`
	Description     string    `json:"description"`
	Subject         string    `json:"subject"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required"`
	MeetLink        string    `json:"meet_link" binding:"required"`
	Capacity        int       `json:"capacity"`
}

func (h *SessionHandler) CreateOpen(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateOpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.CreateOpen", "invalid request body", err))
		return
	}

	session, err := h.svc.CreateOpen(c.Request.Context(), services.CreateOpenInput{
		MentorID:        userID,
		Title:           req.Title,
		Description:     req.Description,
		Subject:         req.Subject,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		MeetLink:        req.MeetLink,
		Capacity:        req.Capacity,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusCreated, "session published", session)
}

func (h *SessionHandler) Get(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	session, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "", session)
}

func (h *SessionHandler) Join(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	session, err := h.svc.Join(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "joined session", session)
}

func (h *SessionHandler) ListAvailable(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	out, err := h.svc.ListAvailable(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "", out)
}

func (h *SessionHandler) ListMine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, offset := pageParams(c)
	out, err := h.svc.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "", out)
}

type CompleteSessionRequest struct {
	Notes                 string `json:"notes"`
	ActualDurationMinutes int    `json:"actual_duration_minutes"`
}

func (h *SessionHandler) Complete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Complete", "invalid request body", err))
		return
	}

	session, err := h.svc.Complete(c.Request.Context(), c.Param("id"), userID, req.Notes, req.ActualDurationMinutes)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "session completed", session)
}

type CancelSessionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *SessionHandler) Cancel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CancelSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Cancel", "invalid request body", err))
		return
	}

	session, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), userID, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "session cancelled", session)
}
