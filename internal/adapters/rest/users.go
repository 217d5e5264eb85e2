package rest

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GuideNet/GuideNet/internal/app"
	"github.com/GuideNet/GuideNet/internal/domain"
	"github.com/GuideNet/GuideNet/internal/store/postgres"
)

const maxAvatarBytes = 2 << 20

type UserHandler struct {
	Users *postgres.UserRepo
	Board *app.Switchboard
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.Users.GetByID(c.Request.Context(), currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Bio      string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile payload"})
		return
	}
	if len(req.Username) > domain.MaxUsernameLen || len(req.Bio) > domain.MaxBioLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field too long"})
		return
	}
	if err := h.Users.UpdateProfile(c.Request.Context(), currentUser(c), req.Username, req.Bio); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing avatar file"})
		return
	}
	if file.Size > maxAvatarBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "avatar too large"})
		return
	}
	f, err := file.Open()
	if err != nil {
		respondErr(c, err)
		return
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, maxAvatarBytes))
	if err != nil {
		respondErr(c, err)
		return
	}
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}
	if err := h.Users.SetAvatar(c.Request.Context(), currentUser(c), content, contentType); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploaded": true})
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.Users.GetByID(c.Request.Context(), domain.UserID(c.Param("id")))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (h *UserHandler) Avatar(c *gin.Context) {
	content, contentType, err := h.Users.GetAvatar(c.Request.Context(), domain.UserID(c.Param("id")))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, content)
}

// Online exposes the presence registry: does the user hold a live socket.
func (h *UserHandler) Online(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"online": h.Board.Online(domain.UserID(c.Param("id")))})
}
