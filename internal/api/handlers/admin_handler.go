package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorhive/tutorhive/internal/services"
)

type AdminHandler struct {
	users services.UserService
}

func NewAdminHandler(users services.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

func (h *AdminHandler) ListPending(c *gin.Context) {
	limit, offset := pageParams(c)
	out, err := h.users.ListPendingApproval(c.Request.Context(), int(limit), int(offset))
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "", out)
}

func (h *AdminHandler) Approve(c *gin.Context) {
	if err := h.users.Approve(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "user approved", nil)
}

func (h *AdminHandler) VerifyDocuments(c *gin.Context) {
	if err := h.users.VerifyDocuments(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "documents verified", nil)
}
