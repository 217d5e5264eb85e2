package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GuideNet/GuideNet/internal/domain"
	"github.com/GuideNet/GuideNet/internal/store/postgres"
)

type PostHandler struct {
	Posts *postgres.PostRepo
}

func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.Posts.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) Create(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Content) > domain.MaxPostLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post payload"})
		return
	}
	post, err := h.Posts.Create(c.Request.Context(), currentUser(c), req.Content)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	err := h.Posts.Delete(c.Request.Context(), domain.PostID(c.Param("id")), currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *PostHandler) Comment(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment payload"})
		return
	}
	comment, err := h.Posts.AddComment(c.Request.Context(), domain.PostID(c.Param("id")), currentUser(c), req.Content)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *PostHandler) Like(c *gin.Context) {
	if err := h.Posts.Like(c.Request.Context(), domain.PostID(c.Param("id")), currentUser(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": true})
}

func (h *PostHandler) Unlike(c *gin.Context) {
	if err := h.Posts.Unlike(c.Request.Context(), domain.PostID(c.Param("id")), currentUser(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": false})
}
