package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/tutorhive/tutorhive/internal/models"
	"github.com/tutorhive/tutorhive/internal/services"
	"github.com/tutorhive/tutorhive/internal/utils"
)

type ProfileHandler struct {
	svc   services.ProfileService
	users services.UserService
}

func NewProfileHandler(svc services.ProfileService, users services.UserService) *ProfileHandler {
	return &ProfileHandler{svc: svc, users: users}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "", p)
}

type UpdateProfileRequest struct {
	Headline   *string  `json:"headline,omitempty"`
	Bio        *string  `json:"bio,omitempty"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`

	Skills *[]string `json:"skills,omitempty"`

	// JSONB fields (raw)
	Education    *json.RawMessage `json:"education,omitempty"`
	Availability *json.RawMessage `json:"availability,omitempty"`
}

func (h *ProfileHandler) UpdateMine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProfileHandler.UpdateMine", "invalid request body", err))
		return
	}

	// Load existing (if not found => create new)
	existing, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		if utils.IsCode(err, utils.CodeNotFound) {
			existing = &models.MentorProfile{UserID: userID}
		} else {
			writeError(c, err)
			return
		}
	}

	if req.Headline != nil {
		existing.Headline = *req.Headline
	}
	if req.Bio != nil {
		existing.Bio = *req.Bio
	}
	if req.HourlyRate != nil {
		existing.HourlyRate = *req.HourlyRate
	}
	if req.Skills != nil {
		existing.Skills = *req.Skills
	}
	if req.Education != nil {
		existing.Education = datatypes.JSON(*req.Education)
	}
	if req.Availability != nil {
		existing.Availability = datatypes.JSON(*req.Availability)
	}

	existing.UpdatedAt = time.Now().UTC()

	if err := h.svc.Upsert(c.Request.Context(), existing); err != nil {
		writeError(c, err)
		return
	}

	respond(c, http.StatusOK, "profile updated", existing)
}

func (h *ProfileHandler) ListMentors(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	limit, offset := pageParams(c)

	if skill := c.Query("skill"); skill != "" {
		out, err := h.svc.SearchBySkill(c.Request.Context(), skill, int(limit), int(offset))
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, "", out)
		return
	}

	out, err := h.users.ListMentors(c.Request.Context(), int(limit), int(offset))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "", out)
}
