// Package auth wraps the authentication endpoints and keeps the token store in step
// with them: login persists the token, logout and rejected profile lookups clear it.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/foodbank-client/internal/apiclient"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/logger"
	"github.com/angelmondragon/foodbank-client/pkg/types"
	"github.com/angelmondragon/foodbank-client/pkg/validate"
)

const (
	loginFailedMessage    = "Login failed. Please check your credentials."
	registerFailedMessage = "Registration failed. Please try again."
	resendFailedMessage   = "Failed to resend verification email"
	verifyFailedMessage   = "Email verification failed"
	currentUserMessage    = "Failed to load your profile"
	noTokenMessage        = "No authentication token found"
	invalidTokenMessage   = "Your session has expired. Please sign in again."

	logoutRemoteMessage = "Logged out successfully"
	logoutLocalMessage  = "Logged out locally"
)

// Service is the auth gateway used by the session bootstrapper and the CLI.
type Service interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Logout(ctx context.Context) LogoutResult
	CurrentUser(ctx context.Context) (*User, error)
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	ResendVerification(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, token string) error
}

type transport interface {
	DoInto(ctx context.Context, req apiclient.Request, out any) (*types.Envelope, error)
}

type tokenStore interface {
	Read(ctx context.Context) (string, bool, error)
	Write(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// ServiceParams bundles the dependencies required to build an auth gateway.
type ServiceParams struct {
	Client transport
	Tokens tokenStore
	Logger *logger.Logger
}

type service struct {
	client transport
	tokens tokenStore
	logg   *logger.Logger
}

// NewService constructs the auth gateway.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("api client is required")
	}
	if params.Tokens == nil {
		return nil, fmt.Errorf("token store is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		client: params.Client,
		tokens: params.Tokens,
		logg:   logg,
	}, nil
}

func (s *service) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := validate.Struct(creds); err != nil {
		return nil, err
	}

	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:     "auth.login",
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   creds,
	}, nil)
	if err != nil {
		return nil, apiclient.Failure(env, err, loginFailedMessage)
	}

	token, user := sessionFromEnvelope(env)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeRemote, loginFailedMessage)
	}
	if err := s.tokens.Write(ctx, token); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist auth token")
	}

	ctx = s.logg.WithTokenFingerprint(ctx, token)
	if user != nil {
		ctx = s.logg.WithUserID(ctx, user.ID)
	}
	s.logg.Info(ctx, "auth.login.success")

	return &LoginResult{
		Token:   token,
		User:    user,
		Message: apiclient.ServerMessage(env),
	}, nil
}

func (s *service) Logout(ctx context.Context) LogoutResult {
	token, ok, err := s.tokens.Read(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "auth.logout.token_read_failed")
	}

	remote := true
	if ok {
		if _, err := s.client.DoInto(ctx, apiclient.Request{
			Op:     "auth.logout",
			Method: http.MethodPost,
			Path:   "/auth/logout",
			Body:   struct{}{},
			Token:  token,
		}, nil); err != nil {
			remote = false
			s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "auth.logout.remote_failed")
		}
	}

	if err := s.tokens.Clear(ctx); err != nil {
		s.logg.Error(ctx, "auth.logout.clear_failed", err)
	}

	msg := logoutRemoteMessage
	if !remote {
		msg = logoutLocalMessage
	}
	return LogoutResult{Success: true, Remote: remote, Message: msg}
}

func (s *service) CurrentUser(ctx context.Context) (*User, error) {
	token, ok, err := s.tokens.Read(ctx)
	if err != nil && !ok {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, noTokenMessage)
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, noTokenMessage)
	}

	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:    "auth.me",
		Path:  "/auth/me",
		Token: token,
	}, nil)
	if err != nil {
		status := pkgerrors.StatusOf(err)
		if pkgerrors.Is(err, pkgerrors.CodeRemote) && tokenRejected(status) {
			if clearErr := s.tokens.Clear(ctx); clearErr != nil {
				s.logg.Error(ctx, "auth.me.clear_failed", clearErr)
			}
			s.logg.Info(s.logg.WithField(ctx, "status", status), "auth.me.token_invalid")
			return nil, pkgerrors.Wrap(pkgerrors.CodeTokenInvalid, err, invalidTokenMessage).WithStatus(status)
		}
		return nil, apiclient.Failure(env, err, currentUserMessage)
	}

	_, user := sessionFromEnvelope(env)
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeRemote, currentUserMessage)
	}
	return user, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:     "auth.register",
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   req,
	}, nil)
	if err != nil {
		return nil, apiclient.Failure(env, err, registerFailedMessage)
	}

	_, user := sessionFromEnvelope(env)
	result := &RegisterResult{
		User:                user,
		Message:             apiclient.ServerMessage(env),
		PendingVerification: user == nil || !user.IsVerified,
	}
	return result, nil
}

func (s *service) ResendVerification(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validate.Var("email", email, "required,email"); err != nil {
		return err
	}
	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:     "auth.resend_verification",
		Method: http.MethodPost,
		Path:   "/auth/resend-verification",
		Body:   map[string]string{"email": email},
	}, nil)
	return apiclient.Failure(env, err, resendFailedMessage)
}

func (s *service) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if err := validate.Var("token", token, "required"); err != nil {
		return err
	}
	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:    "auth.verify_email",
		Path:  "/auth/verify-email",
		Query: url.Values{"token": {token}},
	}, nil)
	return apiclient.Failure(env, err, verifyFailedMessage)
}

// tokenRejected matches the statuses the profile endpoint uses for a dead token.
func tokenRejected(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusInternalServerError
}

// sessionFromEnvelope accepts the token and user either at the top level or nested in data.
func sessionFromEnvelope(env *types.Envelope) (string, *User) {
	if env == nil {
		return "", nil
	}
	token := strings.TrimSpace(env.Token)
	user := decodeUser(env.User)

	var nested sessionPayload
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &nested) == nil {
		if token == "" {
			token = strings.TrimSpace(nested.Token)
		}
		if user == nil {
			user = decodeUser(nested.User)
		}
	}
	if user == nil {
		user = decodeUser(env.Data)
	}
	return token, user
}

func decodeUser(raw json.RawMessage) *User {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil
	}
	if user.ID == "" && user.Email == "" {
		return nil
	}
	return &user
}
