package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mnln/accounts/internal/common"
	"github.com/mnln/accounts/internal/dbx"
	"github.com/mnln/accounts/internal/server/models"
	"github.com/mnln/accounts/internal/server/objectstore"
	avatarsrepo "github.com/mnln/accounts/internal/server/repositories/avatars"
	usersrepo "github.com/mnln/accounts/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// memUsers is a users.Repository backed by a map. Username uniqueness is
// enforced the way the unique index does it.
type memUsers struct {
	mu     sync.Mutex
	byID   map[int64]*models.User
	nextID int64

	createErr  error
	getErr     error
	setKeyErr  error
	getKeyErr  error
	profileErr error

	// afterGetKey runs once GetAvatarKey has read the key, outside the lock.
	afterGetKey func()
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]*models.User{}}
}

func (m *memUsers) find(name string) *models.User {
	for _, u := range m.byID {
		if u.UserName == name {
			return u
		}
	}
	return nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.find(u.UserName) != nil {
		return nil, common.ErrAlreadyExists
	}
	m.nextID++
	cp := *u
	cp.ID = m.nextID
	m.byID[cp.ID] = &cp
	return &cp, nil
}

func (m *memUsers) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u := m.find(login)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetPasswordHash(ctx context.Context, login string) (string, error) {
	u, err := m.GetUserByLogin(ctx, login)
	if err != nil {
		return "", err
	}
	return u.PasswordHash, nil
}

func (m *memUsers) SetAvatarKey(_ context.Context, userID int64, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setKeyErr != nil {
		return m.setKeyErr
	}
	u, ok := m.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.AvatarKey = &key
	return nil
}

func (m *memUsers) GetAvatarKey(_ context.Context, userID int64) (*string, error) {
	m.mu.Lock()
	if m.getKeyErr != nil {
		m.mu.Unlock()
		return nil, m.getKeyErr
	}
	u, ok := m.byID[userID]
	if !ok {
		m.mu.Unlock()
		return nil, common.ErrorNotFound
	}
	var key *string
	if u.AvatarKey != nil {
		k := *u.AvatarKey
		key = &k
	}
	hook := m.afterGetKey
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return key, nil
}

func (m *memUsers) GetProfile(_ context.Context, userID int64) (*models.ProfileRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	u, ok := m.byID[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.ProfileRow{
		UserName:  u.UserName,
		AvatarKey: u.AvatarKey,
		UserProfile: models.UserProfile{
			Email:               u.Email,
			ChessDotComUsername: u.ChessDotComUsername,
			LichessUsername:     u.LichessUsername,
		},
	}, nil
}

type memAvatars struct {
	mu        sync.Mutex
	records   []models.AvatarUpload
	recordErr error
	listErr   error
}

func (m *memAvatars) Record(_ context.Context, userID int64, key string) (*models.AvatarUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return nil, m.recordErr
	}
	r := models.AvatarUpload{ID: int64(len(m.records) + 1), UserID: userID, ObjectKey: key, CreatedAt: time.Now()}
	m.records = append(m.records, r)
	return &r, nil
}

func (m *memAvatars) ListByUser(_ context.Context, userID int64) ([]models.AvatarUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.AvatarUpload
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].UserID == userID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

type fakeRepoManager struct {
	users   *memUsers
	avatars *memAvatars
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{users: newMemUsers(), avatars: &memAvatars{}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.users }
func (m *fakeRepoManager) Avatars(dbx.DBTX) avatarsrepo.Repository      { return m.avatars }

// memStore is an in-memory ObjectStore that reads bodies to the end.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	puts    int
	putErr  error
	getErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memStore) Put(_ context.Context, key string, r io.Reader, contentType string) error {
	s.mu.Lock()
	s.puts++
	s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	s.types[key] = contentType
	return nil
}

func (s *memStore) Get(_ context.Context, key string) (*objectstore.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	b, ok := s.objects[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &objectstore.Object{
		Body:          io.NopCloser(bytes.NewReader(b)),
		ContentType:   s.types[key],
		ContentLength: int64(len(b)),
	}, nil
}

// txDB returns a sqlmock DB; expect is called to register the transaction
// expectations of the test.
func txDB(t *testing.T, expect func(sqlmock.Sqlmock)) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	if expect != nil {
		expect(mock)
	}
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db
}

func expectCommit(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func expectRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

type formPart struct {
	disposition string
	body        string
}

func avatarPart(fileName, body string) formPart {
	return formPart{disposition: `form-data; name="avatar"; filename="` + fileName + `"`, body: body}
}

func multipartReader(t *testing.T, parts ...formPart) *multipart.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", p.disposition)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = io.Copy(pw, strings.NewReader(p.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return multipart.NewReader(&buf, w.Boundary())
}

func multipartReaderFrom(r io.Reader, boundary string) *multipart.Reader {
	return multipart.NewReader(r, boundary)
}
