package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/mnln/accounts/internal/common"
	"github.com/mnln/accounts/internal/dbx"
	"github.com/mnln/accounts/internal/imgformat"
	"github.com/mnln/accounts/internal/logging"
	"github.com/mnln/accounts/internal/server/auth"
	"github.com/mnln/accounts/internal/server/cache"
	"github.com/mnln/accounts/internal/server/models"
	"github.com/mnln/accounts/internal/server/objectstore"
	"github.com/mnln/accounts/internal/server/repositories/repomanager"
	"github.com/mnln/accounts/internal/server/svcerr"
	"github.com/mnln/accounts/internal/server/upload"
)

// ObjectStore is the blob storage the avatar service writes to.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (*objectstore.Object, error)
}

// Avatar is a stored avatar opened for reading. The caller closes Body.
type Avatar struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// UploadResult describes a successful upload.
type UploadResult struct {
	URL  string
	Key  string
	Size int64
}

// AvatarService stores avatars in object storage and keeps the user's
// avatar key in the database.
type AvatarService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	cache       cache.AvatarKeys
	log         logging.Logger
	baseAPIURL  string
	now         func() time.Time
}

func NewAvatarService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, keys cache.AvatarKeys,
	log logging.Logger, baseAPIURL string) *AvatarService {
	if keys == nil {
		keys = cache.Nop{}
	}
	return &AvatarService{
		db:          db,
		repomanager: m,
		store:       store,
		cache:       keys,
		log:         log.With("module", "avatar_service"),
		baseAPIURL:  strings.TrimRight(baseAPIURL, "/"),
		now:         time.Now,
	}
}

// ObjectKey is the storage key of an avatar uploaded at t.
func ObjectKey(userID int64, t time.Time, f imgformat.Format) string {
	return fmt.Sprintf("avatars/%d/%d.%s", userID, t.UnixMilli(), f.Ext())
}

// AvatarURL is the public address of a user's avatar.
func AvatarURL(baseAPIURL string, userID int64) string {
	return fmt.Sprintf("%s/api/user/%d/avatar", strings.TrimRight(baseAPIURL, "/"), userID)
}

// VersionedAvatarURL is AvatarURL with a v parameter taken from the upload
// time encoded in key. The plain URL is returned when key carries none.
func VersionedAvatarURL(baseAPIURL string, userID int64, key string) string {
	u := AvatarURL(baseAPIURL, userID)
	name := path.Base(key)
	ms, err := strconv.ParseInt(strings.TrimSuffix(name, path.Ext(name)), 10, 64)
	if err != nil {
		return u
	}
	return fmt.Sprintf("%s?v=%d", u, ms)
}

// Upload stores the single "avatar" field of mr as userID's new avatar.
//
// The object is written before the database is touched, so a failure can
// leave an unreferenced object but never a reference to a missing one.
// Trailing form fields are only detected after the avatar has been saved;
// they still fail the request with a 400.
func (s *AvatarService) Upload(ctx context.Context, userID int64, mr *multipart.Reader) (*UploadResult, error) {
	field, err := upload.Next(mr)
	if err != nil {
		if svcerr.IsOpaque(err) {
			s.log.Error(ctx, "failed to read avatar form", "user_id", userID, "error", err)
		}
		return nil, err
	}

	now := s.now()
	key := ObjectKey(userID, now, field.Format)

	if err := s.store.Put(ctx, key, field.Body, field.Format.ContentType()); err != nil {
		var re *upload.ReadError
		if errors.As(err, &re) {
			s.log.Error(ctx, "failed to read avatar body", "user_id", userID, "key", key, "error", err)
		} else {
			s.log.Error(ctx, "failed to store avatar", "user_id", userID, "key", key, "error", err)
		}
		return nil, svcerr.ToOpaque(err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).SetAvatarKey(ctx, userID, key); err != nil {
			return err
		}
		_, err := s.repomanager.Avatars(tx).Record(ctx, userID, key)
		return err
	})
	if err != nil {
		s.log.Error(ctx, "failed to set the uploaded avatar", "user_id", userID, "key", key, "error", err)
		return nil, svcerr.ToOpaque(err)
	}

	if err := s.cache.Set(ctx, userID, key); err != nil {
		s.log.Warn(ctx, "failed to cache avatar key", "user_id", userID, "error", err)
	}

	if err := upload.ExpectEnd(mr); err != nil {
		if svcerr.IsOpaque(err) {
			s.log.Error(ctx, "failed to read avatar form", "user_id", userID, "error", err)
		}
		return nil, err
	}

	return &UploadResult{
		URL:  VersionedAvatarURL(s.baseAPIURL, userID, key),
		Key:  key,
		Size: field.Body.BytesRead(),
	}, nil
}

// Retrieve opens userID's current avatar.
func (s *AvatarService) Retrieve(ctx context.Context, userID int64) (*Avatar, error) {
	key, err := s.avatarKey(ctx, userID)
	if err != nil {
		return nil, err
	}

	obj, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Error(ctx, "failed to get avatar object", "user_id", userID, "key", key, "error", err)
		return nil, svcerr.ToOpaque(err)
	}

	contentType := "application/octet-stream"
	if f, ok := imgformat.Infer(key); ok {
		contentType = f.ContentType()
	} else {
		s.log.Error(ctx, "unsupported image format for the user avatar file", "user_id", userID, "key", key)
	}

	return &Avatar{
		Body:          obj.Body,
		ContentType:   contentType,
		ContentLength: obj.ContentLength,
	}, nil
}

// History lists the avatars ever uploaded by userID. Only the user and
// admins may see it.
func (s *AvatarService) History(ctx context.Context, requester auth.Claims, userID int64) ([]models.AvatarUpload, error) {
	if requester.UserID != userID && requester.Role != models.RoleAdmin {
		return nil, svcerr.ToExposed(common.ErrForbidden, http.StatusForbidden, "forbidden")
	}

	uploads, err := s.repomanager.Avatars(s.db).ListByUser(ctx, userID)
	if err != nil {
		s.log.Error(ctx, "failed to list avatar uploads", "user_id", userID, "error", err)
		return nil, svcerr.ToOpaque(err)
	}
	return uploads, nil
}

func (s *AvatarService) avatarKey(ctx context.Context, userID int64) (string, error) {
	key, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.log.Warn(ctx, "avatar key cache unavailable", "user_id", userID, "error", err)
	}
	if ok {
		return key, nil
	}

	k, err := s.repomanager.Users(s.db).GetAvatarKey(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.log.Error(ctx, "failed to load avatar key", "user_id", userID, "error", err)
		return "", svcerr.ToOpaque(err)
	}
	if k == nil {
		return "", svcerr.ToExposed(common.ErrAvatarNotFound, http.StatusNotFound, "avatar not found")
	}

	if err := s.cache.Fill(ctx, userID, *k); err != nil {
		s.log.Warn(ctx, "failed to cache avatar key", "user_id", userID, "error", err)
	}
	return *k, nil
}
