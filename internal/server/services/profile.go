package services

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/mnln/accounts/internal/common"
	"github.com/mnln/accounts/internal/logging"
	"github.com/mnln/accounts/internal/server/repositories/repomanager"
	"github.com/mnln/accounts/internal/server/svcerr"
)

// UserPageData is what the frontend shows on a user's page.
type UserPageData struct {
	UserName           string  `json:"username"`
	Email              *string `json:"email"`
	AvatarURL          *string `json:"avatar_url"`
	ChessDotComProfile *string `json:"chess_dot_com_profile"`
	LichessProfile     *string `json:"lichess_profile"`
}

func ChessDotComProfile(username string) string {
	return "https://www.chess.com/member/" + username
}

func LichessProfile(username string) string {
	return "https://lichess.org/@/" + username
}

type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	baseAPIURL  string
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger, baseAPIURL string) *ProfileService {
	return &ProfileService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "profile_service"),
		baseAPIURL:  strings.TrimRight(baseAPIURL, "/"),
	}
}

func (s *ProfileService) PageData(ctx context.Context, userID int64) (*UserPageData, error) {
	p, err := s.repomanager.Users(s.db).GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, svcerr.ToExposed(common.ErrUserNotFound, http.StatusNotFound, "user not found")
		}
		s.log.Error(ctx, "failed to get user page data", "user_id", userID, "error", err)
		return nil, svcerr.ToOpaque(err)
	}

	data := &UserPageData{
		UserName: p.UserName,
		Email:    p.Email,
	}
	if p.AvatarKey != nil {
		u := VersionedAvatarURL(s.baseAPIURL, userID, *p.AvatarKey)
		data.AvatarURL = &u
	}
	if p.ChessDotComUsername != nil {
		u := ChessDotComProfile(*p.ChessDotComUsername)
		data.ChessDotComProfile = &u
	}
	if p.LichessUsername != nil {
		u := LichessProfile(*p.LichessUsername)
		data.LichessProfile = &u
	}

	return data, nil
}
