// Package service contains application services for authentication and
// plagiarism submissions.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/cqhs/articlecheck/internal/errs"
	"github.com/cqhs/articlecheck/internal/httpx"
	"github.com/cqhs/articlecheck/internal/model"
	"github.com/cqhs/articlecheck/internal/session"
)

// AuthService defines the session and account operations against the backend.
type AuthService interface {
	// Register creates an account and returns the backend's user record.
	Register(ctx context.Context, reg model.Registration) (model.User, error)
	// Login exchanges credentials for a session token and stores it.
	Login(ctx context.Context, username, password string) (model.TokenResponse, error)
	// CurrentUser fetches the account for the stored session.
	CurrentUser(ctx context.Context) (model.User, error)
	// AppendReport links a plagiarism report id into the account's report list.
	AppendReport(ctx context.Context, reportID string) (model.User, error)
	// Logout discards the stored session token. No network call.
	Logout()
	// IsAuthenticated reports whether a session token is currently stored.
	IsAuthenticated() bool
}

type AuthServiceImpl struct {
	api     *httpx.Client
	session session.Store
	log     *zap.Logger
}

var _ AuthService = (*AuthServiceImpl)(nil)

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(api *httpx.Client, sess session.Store, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{api: api, session: sess, log: log}
}

// Register posts the registration fields. On failure the backend's detail
// message wins over the generic one.
func (s *AuthServiceImpl) Register(ctx context.Context, reg model.Registration) (model.User, error) {
	var user model.User
	if err := s.api.PostJSON(ctx, "/register", reg, &user); err != nil {
		var apiErr *httpx.APIError
		if errors.As(err, &apiErr) && apiErr.Detail() != "" {
			return model.User{}, fmt.Errorf("%s: %w", apiErr.Detail(), err)
		}
		return model.User{}, fmt.Errorf("registration failed, try again later: %w", err)
	}
	return user, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login validates the credentials locally, then tries the token endpoint as
// JSON and, only when the backend answers 422, once more as form-urlencoded —
// some backends accept only the legacy encoding. Any access token in the
// reply becomes the stored session token.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (model.TokenResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.TokenResponse{}, errs.ErrEmptyUsername
	}
	if strings.TrimSpace(password) == "" {
		return model.TokenResponse{}, errs.ErrEmptyPassword
	}

	resp, err := s.loginJSON(ctx, username, password)
	if errors.Is(err, errs.ErrUnprocessable) {
		s.log.Info("token endpoint rejected JSON, retrying form-urlencoded",
			zap.String("username", username))
		resp, err = s.loginForm(ctx, username, password)
	}
	if err != nil {
		return model.TokenResponse{}, s.mapLoginError(err)
	}

	if resp.AccessToken != "" {
		if serr := s.session.Set(resp.AccessToken); serr != nil {
			return model.TokenResponse{}, fmt.Errorf("store session token: %w", serr)
		}
	}
	return resp, nil
}

func (s *AuthServiceImpl) loginJSON(ctx context.Context, username, password string) (model.TokenResponse, error) {
	var resp model.TokenResponse
	err := s.api.PostJSON(ctx, "/token", loginRequest{Username: username, Password: password}, &resp)
	return resp, err
}

func (s *AuthServiceImpl) loginForm(ctx context.Context, username, password string) (model.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	var resp model.TokenResponse
	err := s.api.PostForm(ctx, "/token", form, &resp)
	return resp, err
}

// mapLoginError turns a token-endpoint failure into a user-facing message:
// backend detail first (validation lists joined), then 422 → malformed input,
// 401 → bad credentials, anything else → generic.
func (s *AuthServiceImpl) mapLoginError(err error) error {
	var apiErr *httpx.APIError
	if errors.As(err, &apiErr) {
		if d := apiErr.Detail(); d != "" {
			return fmt.Errorf("%s: %w", d, err)
		}
		if errors.Is(err, errs.ErrUnprocessable) {
			return fmt.Errorf("malformed login request, check the input: %w", err)
		}
		if errors.Is(err, errs.ErrUnauthorized) {
			return fmt.Errorf("wrong username or password: %w", err)
		}
	}
	return fmt.Errorf("login failed: %w", err)
}

// CurrentUser fails fast without a stored token. A 401 here means the session
// died server-side; the HTTP layer has already cleared the token by the time
// the error surfaces.
func (s *AuthServiceImpl) CurrentUser(ctx context.Context) (model.User, error) {
	if !s.IsAuthenticated() {
		return model.User{}, errs.ErrNotLoggedIn
	}

	var user model.User
	if err := s.api.GetJSON(ctx, "/users/me", &user); err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			return model.User{}, fmt.Errorf("%w: log in again", errs.ErrSessionExpired)
		}
		return model.User{}, fmt.Errorf("could not fetch user: %w", err)
	}
	return user, nil
}

// AppendReport posts a report id for the backend to append to the account's
// report list, returning the updated record.
func (s *AuthServiceImpl) AppendReport(ctx context.Context, reportID string) (model.User, error) {
	body := map[string]string{"report_id": reportID}
	var user model.User
	if err := s.api.PostJSON(ctx, "/users/update-reports", body, &user); err != nil {
		var apiErr *httpx.APIError
		if errors.As(err, &apiErr) && apiErr.Detail() != "" {
			return model.User{}, fmt.Errorf("%s: %w", apiErr.Detail(), err)
		}
		return model.User{}, fmt.Errorf("could not update report list: %w", err)
	}
	return user, nil
}

// Logout clears the stored token.
func (s *AuthServiceImpl) Logout() {
	s.session.Clear()
}

// IsAuthenticated is a pure presence predicate; token validity is discovered
// lazily via a 401.
func (s *AuthServiceImpl) IsAuthenticated() bool {
	_, ok := s.session.Get()
	return ok
}
