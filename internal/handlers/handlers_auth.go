package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"github.com/gourab8389/excel-analytics-server/internal/apierr"
	"github.com/gourab8389/excel-analytics-server/internal/auth"
	"github.com/gourab8389/excel-analytics-server/internal/models"
)

type userPayload struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func toUserPayload(u *models.User) userPayload {
	return userPayload{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, apierr.Validation("invalid request body"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		a.respondError(w, apierr.Validation("a valid email is required"))
		return
	}
	if len(req.Password) < 6 {
		a.respondError(w, apierr.Validation("password must be at least 6 characters"))
		return
	}
	if len(strings.TrimSpace(req.FirstName)) < 2 || len(strings.TrimSpace(req.LastName)) < 2 {
		a.respondError(w, apierr.Validation("first and last name are required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.db.WithContext(ctx)

	var existing models.User
	err := orm.First(&existing, "email = ?", req.Email).Error
	if err == nil {
		a.respondError(w, apierr.Conflict("User already exists with this email"))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		a.respondError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		a.respondError(w, err)
		return
	}

	user := models.User{
		Email:     req.Email,
		Password:  hash,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	if err := orm.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			a.respondError(w, apierr.Conflict("User already exists with this email"))
			return
		}
		a.respondError(w, err)
		return
	}

	token, err := a.tokens.SignAccess(user.ID, user.Email)
	if err != nil {
		a.respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "User registered successfully", map[string]any{
		"user":  toUserPayload(&user),
		"token": token,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, apierr.Validation("invalid request body"))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		a.respondError(w, apierr.Validation("email and password are required"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var user models.User
	err := a.db.WithContext(ctx).First(&user, "email = ?", req.Email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.respondError(w, apierr.Unauthorized("Invalid email or password"))
			return
		}
		a.respondError(w, err)
		return
	}

	if !auth.ComparePassword(req.Password, user.Password) {
		a.respondError(w, apierr.Unauthorized("Invalid email or password"))
		return
	}

	token, err := a.tokens.SignAccess(user.ID, user.Email)
	if err != nil {
		a.respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Login successful", map[string]any{
		"user":  toUserPayload(&user),
		"token": token,
	})
}

func (a *API) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var user models.User
	if err := a.db.WithContext(ctx).First(&user, "id = ?", claims.UserID).Error; err != nil {
		a.respondError(w, notFoundOr(err, "User not found"))
		return
	}

	respondSuccess(w, http.StatusOK, "User profile fetched successfully", map[string]any{
		"user": user,
	})
}

func (a *API) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())

	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, apierr.Validation("invalid request body"))
		return
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(req.FirstName); name != "" {
		if len(name) < 2 {
			a.respondError(w, apierr.Validation("first name must be at least 2 characters"))
			return
		}
		updates["first_name"] = name
	}
	if name := strings.TrimSpace(req.LastName); name != "" {
		if len(name) < 2 {
			a.respondError(w, apierr.Validation("last name must be at least 2 characters"))
			return
		}
		updates["last_name"] = name
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.db.WithContext(ctx)

	var user models.User
	if err := orm.First(&user, "id = ?", claims.UserID).Error; err != nil {
		a.respondError(w, notFoundOr(err, "User not found"))
		return
	}

	if len(updates) > 0 {
		if err := orm.Model(&user).Updates(updates).Error; err != nil {
			a.respondError(w, err)
			return
		}
	}

	respondSuccess(w, http.StatusOK, "User profile updated successfully", map[string]any{
		"user": toUserPayload(&user),
	})
}

func (a *API) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims := currentUser(r.Context())

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.db.WithContext(ctx)

	var user models.User
	if err := orm.First(&user, "id = ?", claims.UserID).Error; err != nil {
		a.respondError(w, notFoundOr(err, "User not found"))
		return
	}

	if err := orm.Select("Memberships", "Uploads").Delete(&user).Error; err != nil {
		a.respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "User account deleted successfully", nil)
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierr.NotFound(msg)
	}
	return err
}
