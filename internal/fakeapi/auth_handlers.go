package fakeapi

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/foodbank-client/internal/auth"
	"github.com/angelmondragon/foodbank-client/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/security"
	"github.com/angelmondragon/foodbank-client/pkg/validate"
)

const verificationTokenBytes = 32

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req auth.RegisterRequest
	if err := validate.DecodeJSON(r.Body, &req); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}

	role, err := enums.ParseUserRole(req.Role)
	if err != nil || !role.SelfService() {
		writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Invalid role"))
		return
	}

	hash, err := security.HashPassword(req.Password, s.passwords)
	if err != nil {
		writeError(ctx, s.logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password"))
		return
	}
	token, err := security.NewVerificationToken(verificationTokenBytes)
	if err != nil {
		writeError(ctx, s.logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verification token"))
		return
	}

	now := s.now()
	rec := &userRecord{
		User: auth.User{
			ID:        newID(),
			Name:      strings.TrimSpace(req.Name),
			Email:     normalizeEmail(req.Email),
			Role:      role.String(),
			CreatedAt: &now,
		},
		PasswordHash:      hash,
		VerificationToken: token,
	}
	if !s.store.insertUser(rec) {
		writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeConflict, "User already exists with this email"))
		return
	}

	writeSuccessStatus(w, http.StatusCreated, envelope{
		Message: "Registration successful. Please check your email to verify your account.",
		User:    rec.User,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req auth.Credentials
	if err := validate.DecodeJSON(r.Body, &req); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}

	rec, ok := s.store.userByEmail(req.Email)
	if !ok {
		writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid credentials"))
		return
	}
	match, err := security.VerifyPassword(req.Password, rec.PasswordHash)
	if err != nil || !match {
		writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid credentials"))
		return
	}
	if !rec.IsVerified {
		writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "Please verify your email before logging in"))
		return
	}

	token, err := s.mintToken(rec.User)
	if err != nil {
		writeError(ctx, s.logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token"))
		return
	}
	writeSuccessStatus(w, http.StatusOK, envelope{
		Message: "Login successful",
		Token:   token,
		User:    rec.User,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.store.revoke(tokenIDFromContext(r.Context()))
	writeSuccessStatus(w, http.StatusOK, envelope{Message: "Logged out successfully"})
}

// handleMe authenticates inline so a forced status applies even to a valid token.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if status := s.hooks.forcedMeStatus(); status != 0 {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeRemote, http.StatusText(status)).WithStatus(status))
		return
	}
	s.authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, _ := s.store.userByID(userIDFromContext(r.Context()))
		writeSuccessStatus(w, http.StatusOK, envelope{User: rec.User})
	})).ServeHTTP(w, r)
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if err := validate.Var("token", token, "required"); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	rec, ok := s.store.verifyByToken(token)
	if !ok {
		writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Invalid or expired verification token"))
		return
	}
	writeSuccessStatus(w, http.StatusOK, envelope{Message: "Email verified successfully", User: rec.User})
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := validate.DecodeJSON(r.Body, &req); err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	rec, ok := s.store.userByEmail(req.Email)
	if !ok {
		writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "User not found"))
		return
	}
	if rec.IsVerified {
		writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Email is already verified"))
		return
	}
	token, err := security.NewVerificationToken(verificationTokenBytes)
	if err != nil {
		writeError(ctx, s.logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verification token"))
		return
	}
	s.store.updateUser(rec.ID, func(u *userRecord) { u.VerificationToken = token })
	writeSuccessStatus(w, http.StatusOK, envelope{Message: "Verification email sent"})
}
