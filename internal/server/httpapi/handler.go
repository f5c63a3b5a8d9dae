// Package httpapi is the gin HTTP surface of the accounts server. Handlers
// translate requests into service calls and map classified service errors
// onto status codes.
package httpapi

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mnln/accounts/internal/logging"
	"github.com/mnln/accounts/internal/server/auth"
	"github.com/mnln/accounts/internal/server/metrics"
	"github.com/mnln/accounts/internal/server/models"
	"github.com/mnln/accounts/internal/server/services"
	"github.com/mnln/accounts/internal/server/svcerr"
)

type UserService interface {
	Register(ctx context.Context, username, passwordHash string, profile models.UserProfile) (int64, error)
	Login(ctx context.Context, username, passwordHash string) (string, error)
	Salt(ctx context.Context, username string) (string, error)
}

type AvatarService interface {
	Upload(ctx context.Context, userID int64, mr *multipart.Reader) (*services.UploadResult, error)
	Retrieve(ctx context.Context, userID int64) (*services.Avatar, error)
	History(ctx context.Context, requester auth.Claims, userID int64) ([]models.AvatarUpload, error)
}

type ProfileService interface {
	PageData(ctx context.Context, userID int64) (*services.UserPageData, error)
}

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type Handler struct {
	users    UserService
	avatars  AvatarService
	profiles ProfileService
	metrics  *metrics.Metrics
	log      logging.Logger
}

func NewHandler(users UserService, avatars AvatarService, profiles ProfileService, m *metrics.Metrics, log logging.Logger) *Handler {
	return &Handler{
		users:    users,
		avatars:  avatars,
		profiles: profiles,
		metrics:  m,
		log:      log.With("module", "httpapi"),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError writes the public view of err.
func respondError(c *gin.Context, err error) {
	status, detail := svcerr.Public(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: detail})
}

func respondBadRequest(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: detail})
}

func pathUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid user id")
		return 0, false
	}
	return id, true
}

func outcome(err error) string {
	return metrics.Outcome(err, svcerr.IsExposed(err) && !svcerr.IsOpaque(err))
}
