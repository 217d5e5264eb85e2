package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GuideNet/GuideNet/internal/domain"
	"github.com/GuideNet/GuideNet/internal/store/postgres"
)

type MentorHandler struct {
	Mentors *postgres.MentorRepo
}

func (h *MentorHandler) Upsert(c *gin.Context) {
	var req struct {
		Expertise []string `json:"expertise" binding:"required"`
		Company   string   `json:"company"`
		Title     string   `json:"title"`
		Available *bool    `json:"available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mentor payload"})
		return
	}
	m := &domain.Mentor{
		UserID:    currentUser(c),
		Expertise: req.Expertise,
		Company:   req.Company,
		Title:     req.Title,
		Available: true,
	}
	if req.Available != nil {
		m.Available = *req.Available
	}
	if err := h.Mentors.Upsert(c.Request.Context(), m); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MentorHandler) List(c *gin.Context) {
	mentors, err := h.Mentors.List(c.Request.Context(), c.Query("expertise"))
	if err != nil {
		respondErr(c, err)
		return
	}
	if mentors == nil {
		mentors = []domain.Mentor{}
	}
	c.JSON(http.StatusOK, mentors)
}

func (h *MentorHandler) GetByUser(c *gin.Context) {
	m, err := h.Mentors.GetByUser(c.Request.Context(), domain.UserID(c.Param("userId")))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
