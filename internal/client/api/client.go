// Package api is the HTTP client of the accounts server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mnln/accounts/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a non-2xx answer from the server.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
}

// Is lets callers match a 401 with errors.Is(err, ErrUnauthorized).
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

type RegisterRequest struct {
	UserName            string  `json:"username"`
	PasswordHash        string  `json:"password_hash"`
	Email               *string `json:"email,omitempty"`
	ChessDotComUsername *string `json:"chess_dot_com_username,omitempty"`
	LichessUsername     *string `json:"lichess_username,omitempty"`
}

type UserPageData struct {
	UserName           string  `json:"username"`
	Email              *string `json:"email"`
	AvatarURL          *string `json:"avatar_url"`
	ChessDotComProfile *string `json:"chess_dot_com_profile"`
	LichessProfile     *string `json:"lichess_profile"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (int64, error) {
	var resp struct {
		UserID int64 `json:"user_id"`
	}
	if err := c.postJSON(ctx, "/api/user/register", req, &resp); err != nil {
		return 0, err
	}
	return resp.UserID, nil
}

func (c *Client) Salt(ctx context.Context, username string) (string, error) {
	var resp struct {
		Salt string `json:"salt"`
	}
	if err := c.postJSON(ctx, "/api/user/salt", map[string]string{"username": username}, &resp); err != nil {
		return "", err
	}
	return resp.Salt, nil
}

func (c *Client) Login(ctx context.Context, username, passwordHash string) (string, error) {
	var resp struct {
		JWT string `json:"jwt"`
	}
	body := map[string]string{"username": username, "password_hash": passwordHash}
	if err := c.postJSON(ctx, "/api/user/login", body, &resp); err != nil {
		return "", err
	}
	return resp.JWT, nil
}

// UploadAvatar streams the file at path as the avatar of the token's owner
// and returns the new avatar URL.
func (c *Client) UploadAvatar(ctx context.Context, token, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile(common.AvatarFieldName, filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/user/avatar", pr)
	if err != nil {
		_ = pr.Close()
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(req, &resp); err != nil {
		_ = pr.Close()
		return "", err
	}
	return resp.URL, nil
}

func (c *Client) PageData(ctx context.Context, userID int64) (*UserPageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/bff/user-page-data/"+strconv.FormatInt(userID, 10), nil)
	if err != nil {
		return nil, err
	}

	var data UserPageData
	if err := c.do(req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Ping calls the health check.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health-check", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &Error{Status: resp.StatusCode, Detail: body.Error}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
