package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gourab8389/excel-analytics-server/internal/apierr"
	"github.com/gourab8389/excel-analytics-server/internal/auth"
	"github.com/gourab8389/excel-analytics-server/internal/models"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
	ctxKeyMembership
)

// authenticate requires a valid Bearer access token and stashes its claims.
func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			a.respondError(w, apierr.Unauthorized("Access token required"))
			return
		}

		claims, err := a.tokens.VerifyAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			a.respondError(w, apierr.Unauthorized("Invalid or expired token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyUser, claims)))
	})
}

func currentUser(ctx context.Context) *auth.AccessClaims {
	claims, _ := ctx.Value(ctxKeyUser).(*auth.AccessClaims)
	return claims
}

// requireProjectMember resolves {projectID} and requires the caller to be a
// member, stashing the membership for role checks downstream.
func (a *API) requireProjectMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := currentUser(r.Context())
		projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
		if claims == nil || err != nil {
			a.respondError(w, apierr.Validation("Project ID and user authentication required"))
			return
		}

		ctx, cancel := withTimeout(r.Context())
		defer cancel()

		var member models.ProjectMember
		findErr := a.db.WithContext(ctx).
			First(&member, "user_id = ? AND project_id = ?", claims.UserID, projectID).Error
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				a.respondError(w, apierr.Forbidden("Access denied to this project"))
				return
			}
			a.respondError(w, findErr)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyMembership, &member)))
	})
}

func currentMembership(ctx context.Context) *models.ProjectMember {
	member, _ := ctx.Value(ctxKeyMembership).(*models.ProjectMember)
	return member
}

// requireProjectAdmin gates admin-only project actions.
func (a *API) requireProjectAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		member := currentMembership(r.Context())
		if member == nil || member.Role != models.RoleAdmin {
			a.respondError(w, apierr.Forbidden("Admin access required for this action"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
