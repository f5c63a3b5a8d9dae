package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/mnln/accounts/internal/client/api"
	"github.com/mnln/accounts/internal/client/repositories/sessions"
	"github.com/mnln/accounts/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	registered services.Profile
	password   []byte
	loginErr   error
	uploadErr  error
	uploaded   string
	profile    *api.UserPageData
	loggedOut  bool
}

func (f *fakeAuth) Register(_ context.Context, _ string, password []byte, p services.Profile) (int64, error) {
	f.registered = p
	f.password = password
	return 5, nil
}

func (f *fakeAuth) Login(_ context.Context, username string, password []byte) (*sessions.Session, error) {
	f.password = password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &sessions.Session{UserName: username, UserID: 5, Token: "t"}, nil
}

func (f *fakeAuth) Current(context.Context) (*sessions.Session, error) {
	return nil, services.ErrNotLoggedIn
}

func (f *fakeAuth) Logout(context.Context) error {
	f.loggedOut = true
	return nil
}

func (f *fakeAuth) UploadAvatar(_ context.Context, path string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploaded = path
	return "http://api/api/user/5/avatar?v=1", nil
}

func (f *fakeAuth) Profile(context.Context) (*api.UserPageData, error) {
	return f.profile, nil
}

func (f *fakeAuth) Ping(context.Context) error { return nil }

func newTestApp(t *testing.T, input string) (*App, *fakeAuth, *bytes.Buffer) {
	t.Helper()

	origPw := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte("secret"), nil }
	t.Cleanup(func() { getPassword = origPw })

	fa := &fakeAuth{}
	var out bytes.Buffer
	return &App{
		auth:   fa,
		reader: bufio.NewReader(strings.NewReader(input)),
		out:    &out,
	}, fa, &out
}

func TestRegister_OptionalFields(t *testing.T) {
	a, fa, out := newTestApp(t, "ann\nann@example.com\n\nann_l\n")

	require.NoError(t, a.Register(context.Background()))

	require.NotNil(t, fa.registered.Email)
	assert.Equal(t, "ann@example.com", *fa.registered.Email)
	assert.Nil(t, fa.registered.ChessDotComUsername)
	require.NotNil(t, fa.registered.LichessUsername)
	assert.Equal(t, "ann_l", *fa.registered.LichessUsername)
	assert.Contains(t, out.String(), "Registered user ann (id 5)")

	// the password buffer is wiped after use
	assert.Equal(t, make([]byte, 6), fa.password)
}

func TestLogin(t *testing.T) {
	a, _, out := newTestApp(t, "ann\n")

	require.NoError(t, a.Login(context.Background()))
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(ann)", a.getStatus())
	assert.Contains(t, out.String(), "Login successful")

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
}

func TestLogin_Failure(t *testing.T) {
	a, fa, out := newTestApp(t, "ann\n")
	fa.loginErr = api.ErrUnauthorized

	assert.Error(t, a.Login(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Login unsuccessful")
}

func TestUploadAvatar_Command(t *testing.T) {
	a, fa, out := newTestApp(t, "")
	a.userName = "ann"

	require.NoError(t, a.UploadAvatar(context.Background(), "me.gif"))
	assert.Equal(t, "me.gif", fa.uploaded)
	assert.Contains(t, out.String(), "Avatar uploaded")

	out.Reset()
	require.NoError(t, a.UploadAvatar(context.Background(), "doc.pdf"))
	assert.Contains(t, out.String(), "Unsupported image format")
	assert.Equal(t, "me.gif", fa.uploaded)
}

func TestUploadAvatar_ExpiredSession(t *testing.T) {
	a, fa, _ := newTestApp(t, "")
	a.userName = "ann"
	fa.uploadErr = services.ErrSessionExpired

	err := a.UploadAvatar(context.Background(), "me.png")
	assert.True(t, errors.Is(err, services.ErrSessionExpired))
	assert.False(t, a.isLoggedIn())
}

func TestShow(t *testing.T) {
	a, fa, out := newTestApp(t, "")
	avatar := "http://api/api/user/5/avatar"
	fa.profile = &api.UserPageData{UserName: "ann", AvatarURL: &avatar}

	require.NoError(t, a.Show(context.Background()))
	assert.Contains(t, out.String(), "User:     ann")
	assert.Contains(t, out.String(), avatar)
	assert.NotContains(t, out.String(), "Email")
}
