package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorhive/tutorhive/internal/services"
	"github.com/tutorhive/tutorhive/internal/utils"
)

type ReviewHandler struct {
	svc services.ReviewService
}

func NewReviewHandler(svc services.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

type CreateReviewRequest struct {
	RevieweeID string `json:"reviewee_id"`
	Rating     int    `json:"rating" binding:"required"`
	Comment    string `json:"comment"`
	IsPublic   *bool  `json:"is_public"`
}

func (h *ReviewHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ReviewHandler.Create", "invalid request body", err))
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	review, err := h.svc.Create(c.Request.Context(), services.CreateReviewInput{
		ReviewerID: userID,
		SessionID:  c.Param("id"),
		RevieweeID: req.RevieweeID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		IsPublic:   isPublic,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusCreated, "review created", review)
}

type UpdateReviewRequest struct {
	Rating   int    `json:"rating" binding:"required"`
	Comment  string `json:"comment"`
	IsPublic *bool  `json:"is_public"`
}

func (h *ReviewHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ReviewHandler.Update", "invalid request body", err))
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	review, err := h.svc.Update(c.Request.Context(), userID, c.Param("id"), req.Rating, req.Comment, isPublic)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "review updated", review)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, currentRole(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "review deleted", nil)
}

func (h *ReviewHandler) ListForUser(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	limit, offset := pageParams(c)
	out, err := h.svc.ListForUser(c.Request.Context(), c.Param("id"), true, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "", out)
}
