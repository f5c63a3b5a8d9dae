package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mnln/accounts/internal/imgformat"
)

type UploadAvatarResponse struct {
	URL string `json:"url"`
}

func (h *Handler) UploadAvatar(c *gin.Context) {
	claims := claimsFrom(c)

	mr, err := c.Request.MultipartReader()
	if err != nil {
		respondBadRequest(c, "expected a multipart/form-data body")
		return
	}

	res, err := h.avatars.Upload(c.Request.Context(), claims.UserID, mr)
	h.metrics.AvatarUploads.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		respondError(c, err)
		return
	}
	h.metrics.AvatarBytes.Add(float64(res.Size))
	h.log.Info(c.Request.Context(), "avatar uploaded", "user_id", claims.UserID, "key", res.Key, "bytes", res.Size)

	c.JSON(http.StatusOK, UploadAvatarResponse{URL: res.URL})
}

func (h *Handler) GetAvatar(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}

	av, err := h.avatars.Retrieve(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer av.Body.Close()

	length := av.ContentLength
	if length <= 0 {
		length = -1
	}
	// Only versioned URLs change on re-upload; the bare one must be revalidated.
	cacheControl := "no-cache"
	if c.Query("v") != "" {
		cacheControl = "public, max-age=31536000, immutable"
	}
	c.DataFromReader(http.StatusOK, length, av.ContentType, av.Body, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *Handler) AvatarHistory(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}

	uploads, err := h.avatars.History(c.Request.Context(), *claimsFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	type item struct {
		Key       string `json:"key"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]item, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, item{Key: u.ObjectKey, CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")})
	}
	c.JSON(http.StatusOK, out)
}

func SupportedImageFormats(c *gin.Context) {
	c.String(http.StatusOK, imgformat.AcceptString())
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
