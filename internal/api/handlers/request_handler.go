package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tutorhive/tutorhive/internal/services"
	"github.com/tutorhive/tutorhive/internal/utils"
)

type RequestHandler struct {
	svc services.RequestService
}

func NewRequestHandler(svc services.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

type CreateRequestRequest struct {
	MentorID        string      `json:"mentor_id" binding:"required"`
	Subject         string      `json:"subject" binding:"required"`
	Description     string      `json:"description"`
	DurationMinutes int         `json:"duration_minutes" binding:"required"`
	PreferredTimes  []time.Time `json:"preferred_times"`
	ProposedPrice   float64     `json:"proposed_price"`
}

func (h *RequestHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "RequestHandler.Create", "invalid request body", err))
		return
	}

	out, err := h.svc.Create(c.Request.Context(), services.CreateRequestInput{
		StudentID:       userID,
		MentorID:        req.MentorID,
		Subject:         req.Subject,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		PreferredTimes:  req.PreferredTimes,
		ProposedPrice:   req.ProposedPrice,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusCreated, "request created", out)
}

func (h *RequestHandler) ListMineAsStudent(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, offset := pageParams(c)
	out, err := h.svc.ListByStudent(c.Request.Context(), userID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "", out)
}

func (h *RequestHandler) ListMineAsMentor(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, offset := pageParams(c)
	out, err := h.svc.ListByMentor(c.Request.Context(), userID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "", out)
}

type AcceptRequestRequest struct {
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	MeetLink        string    `json:"meet_link"`
	ResponseMessage string    `json:"response_message"`
}

func (h *RequestHandler) Accept(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AcceptRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "RequestHandler.Accept", "invalid request body", err))
		return
	}

	session, err := h.svc.Accept(c.Request.Context(), userID, c.Param("id"), req.ScheduledAt, req.MeetLink, req.ResponseMessage)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "request accepted", session)
}

type RejectRequestRequest struct {
	Reason string `json:"reason"`
}

func (h *RequestHandler) Reject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req RejectRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "RequestHandler.Reject", "invalid request body", err))
		return
	}

	out, err := h.svc.Reject(c.Request.Context(), userID, c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "request rejected", out)
}
