package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mnln/accounts/internal/server/models"
)

type RegisterRequest struct {
	UserName            string  `json:"username" binding:"required"`
	PasswordHash        string  `json:"password_hash" binding:"required"`
	Email               *string `json:"email"`
	ChessDotComUsername *string `json:"chess_dot_com_username"`
	LichessUsername     *string `json:"lichess_username"`
}

type RegisterResponse struct {
	UserID int64 `json:"user_id"`
}

type LoginRequest struct {
	UserName     string `json:"username" binding:"required"`
	PasswordHash string `json:"password_hash" binding:"required"`
}

type LoginResponse struct {
	JWT string `json:"jwt"`
}

type SaltRequest struct {
	UserName string `json:"username" binding:"required"`
}

type SaltResponse struct {
	Salt string `json:"salt"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	id, err := h.users.Register(c.Request.Context(), req.UserName, req.PasswordHash, models.UserProfile{
		Email:               req.Email,
		ChessDotComUsername: req.ChessDotComUsername,
		LichessUsername:     req.LichessUsername,
	})
	h.metrics.Registrations.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, RegisterResponse{UserID: id})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	token, err := h.users.Login(c.Request.Context(), req.UserName, req.PasswordHash)
	h.metrics.Logins.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{JWT: token})
}

func (h *Handler) Salt(c *gin.Context) {
	var req SaltRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	salt, err := h.users.Salt(c.Request.Context(), req.UserName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SaltResponse{Salt: salt})
}

func (h *Handler) UserPageData(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}

	data, err := h.profiles.PageData(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}
