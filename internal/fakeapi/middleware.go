package fakeapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgauth "github.com/angelmondragon/foodbank-client/pkg/auth"
	"github.com/angelmondragon/foodbank-client/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const requestIDHeader = "X-Request-Id"

type contextKey string

const ctxUserID contextKey = "user_id"

func userIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

func requestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)
			next.ServeHTTP(w, r.WithContext(logg.WithRequestID(r.Context(), reqID)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument logs each request, counts it per route for test hooks and exports
// prometheus counters. The route pattern is only known after chi has routed.
func instrument(logg *logger.Logger, hooks *Hooks, requests *prometheus.CounterVec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			if len(route) > 1 {
				route = strings.TrimSuffix(route, "/")
			}
			hooks.record(r.Method + " " + route)
			requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()

			logg.Info(logg.WithFields(ctx, map[string]any{
				"route":       route,
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			}), "request.complete")
		})
	}
}

func recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					ctx := logg.WithFields(r.Context(), map[string]any{"panic": rec})
					logg.Error(ctx, "panic.recovered", err)
					writeError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// authenticate requires a valid, unrevoked bearer token for a known user.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Access denied. No token provided."))
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		claims, err := pkgauth.ParseAccessToken(s.cfg, raw)
		if err != nil {
			writeError(ctx, s.logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "Invalid token"))
			return
		}
		if s.store.isRevoked(claims.ID) {
			writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Token has been revoked"))
			return
		}
		if _, ok := s.store.userByID(claims.UserID); !ok {
			writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "User no longer exists"))
			return
		}

		ctx = withUserID(ctx, claims.UserID)
		ctx = context.WithValue(ctx, ctxTokenID, claims.ID)
		ctx = s.logg.WithUserID(ctx, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

const ctxTokenID contextKey = "token_id"

func tokenIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxTokenID).(string); ok {
		return v
	}
	return ""
}

// requireAdmin lets only administrators through. It runs after authenticate.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rec, ok := s.store.userByID(userIDFromContext(ctx))
		if !ok || rec.Role != enums.UserRoleAdmin.String() {
			writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
