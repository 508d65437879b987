// Package invite implements the project invitation lifecycle: token-based,
// time-bounded, single-use. Invitations move PENDING to ACCEPTED exactly
// once; expiry is computed on read, never persisted.
package invite

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gourab8389/excel-analytics-server/internal/apierr"
	"github.com/gourab8389/excel-analytics-server/internal/auth"
	"github.com/gourab8389/excel-analytics-server/internal/models"
)

// Notifier delivers the invitation email. Best-effort; a failed send never
// rolls back invitation creation.
type Notifier interface {
	SendInvitationEmail(ctx context.Context, toEmail, senderEmail, projectName, inviterName, token string) error
}

// Service runs the invitation state machine against the persistence layer.
type Service struct {
	db       *gorm.DB
	tokens   *auth.Tokens
	notifier Notifier
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewService wires the lifecycle dependencies. ttl bounds how long issued
// invitations stay acceptable.
func NewService(db *gorm.DB, tokens *auth.Tokens, notifier Notifier, ttl time.Duration, log zerolog.Logger) *Service {
	if ttl <= 0 {
		ttl = auth.DefaultTTL
	}
	return &Service{
		db:       db,
		tokens:   tokens,
		notifier: notifier,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

// Preview is the read-only view of a pending invitation returned by Inspect.
type Preview struct {
	Email     string         `json:"email"`
	Role      string         `json:"role"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Project   ProjectPreview `json:"project"`
}

// ProjectPreview summarizes the inviting project and its creator.
type ProjectPreview struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	Creator     CreatorPreview `json:"creator"`
}

// CreatorPreview identifies the project creator shown in the preview.
type CreatorPreview struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// AcceptResult reports the joined project and granted role.
type AcceptResult struct {
	Project *models.Project `json:"project"`
	Role    string          `json:"role"`
}

// Issue creates a PENDING invitation for email to join the project and
// triggers the notification email in the background. It conflicts when the
// target is already a member or a non-expired PENDING invitation exists for
// the same (email, project) pair.
func (s *Service) Issue(ctx context.Context, projectID, inviterID uuid.UUID, email, role string) (*models.Invitation, error) {
	if role == "" {
		role = models.RoleMember
	}

	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", projectID).Error; err != nil {
		return nil, notFoundOr(err, "Project or user not found")
	}

	var inviter models.User
	if err := s.db.WithContext(ctx).First(&inviter, "id = ?", inviterID).Error; err != nil {
		return nil, notFoundOr(err, "Project or user not found")
	}

	var invitee models.User
	err := s.db.WithContext(ctx).First(&invitee, "email = ?", email).Error
	switch {
	case err == nil:
		var member models.ProjectMember
		err := s.db.WithContext(ctx).
			First(&member, "user_id = ? AND project_id = ?", invitee.ID, projectID).Error
		if err == nil {
			return nil, apierr.Conflict("User is already a member of this project")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	now := s.now()
	var pending models.Invitation
	err = s.db.WithContext(ctx).
		First(&pending, "email = ? AND project_id = ? AND status = ? AND expires_at > ?",
			email, projectID, models.InvitationPending, now).Error
	if err == nil {
		return nil, apierr.Conflict("A pending invitation already exists for this email")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	token, err := s.tokens.SignInvitation(email, projectID)
	if err != nil {
		return nil, err
	}

	invitation := models.Invitation{
		Email:     email,
		ProjectID: projectID,
		Token:     token,
		Role:      role,
		Status:    models.InvitationPending,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.Conflict("A pending invitation already exists for this email")
		}
		return nil, err
	}

	// Fire and forget. Delivery failure must not undo invitation creation.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := s.notifier.SendInvitationEmail(sendCtx, email, inviter.Email, project.Name, inviter.FullName(), token); err != nil {
			s.log.Error().Err(err).Str("email", email).Str("project", project.Name).Msg("send invitation email")
		}
	}()

	return &invitation, nil
}

// Inspect validates the token and returns a read-only preview without
// mutating state.
func (s *Service) Inspect(ctx context.Context, token string) (*Preview, error) {
	invitation, err := s.pendingInvitation(ctx, token)
	if err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", invitation.ProjectID).Error; err != nil {
		return nil, notFoundOr(err, "Project or creator not found")
	}

	var creator models.User
	if err := s.db.WithContext(ctx).First(&creator, "id = ?", project.CreatorID).Error; err != nil {
		return nil, notFoundOr(err, "Project or creator not found")
	}

	return &Preview{
		Email:     invitation.Email,
		Role:      invitation.Role,
		ExpiresAt: invitation.ExpiresAt,
		Project: ProjectPreview{
			ID:          project.ID,
			Name:        project.Name,
			Description: project.Description,
			Type:        project.Type,
			Creator: CreatorPreview{
				FirstName: creator.FirstName,
				LastName:  creator.LastName,
				Email:     creator.Email,
			},
		},
	}, nil
}

// Accept transitions a PENDING invitation to ACCEPTED and adds the user to
// the project with the invited role. The membership insert and status flip
// commit atomically. When the user is already a member the invitation is
// still marked ACCEPTED, but the caller gets a conflict rather than success.
func (s *Service) Accept(ctx context.Context, token string, userID uuid.UUID) (*AcceptResult, error) {
	invitation, err := s.pendingInvitation(ctx, token)
	if err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", invitation.ProjectID).Error; err != nil {
		return nil, notFoundOr(err, "Project not found")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, notFoundOr(err, "User not found")
	}

	if user.Email != invitation.Email {
		return nil, apierr.Forbidden("This invitation is not for your email address")
	}

	var member models.ProjectMember
	err = s.db.WithContext(ctx).
		First(&member, "user_id = ? AND project_id = ?", user.ID, invitation.ProjectID).Error
	switch {
	case err == nil:
		// Idempotent cleanup: retire the invitation even though membership
		// already exists, then report the conflict.
		if err := s.markAccepted(ctx, s.db, invitation.ID); err != nil {
			return nil, err
		}
		return nil, apierr.Conflict("You are already a member of this project")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		membership := models.ProjectMember{
			UserID:    user.ID,
			ProjectID: invitation.ProjectID,
			Role:      invitation.Role,
		}
		if err := tx.Create(&membership).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierr.Conflict("You are already a member of this project")
			}
			return err
		}
		return s.markAccepted(ctx, tx, invitation.ID)
	})
	if err != nil {
		return nil, err
	}

	return &AcceptResult{Project: &project, Role: invitation.Role}, nil
}

// pendingInvitation verifies the token signature and payload, then loads the
// referenced invitation and checks expiry and lifecycle state.
func (s *Service) pendingInvitation(ctx context.Context, token string) (*models.Invitation, error) {
	claims, err := s.tokens.VerifyInvitation(token)
	if err != nil || claims.Email == "" || claims.ProjectID == uuid.Nil {
		return nil, apierr.InvalidToken("Invalid invitation token")
	}

	var invitation models.Invitation
	if err := s.db.WithContext(ctx).First(&invitation, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.InvalidToken("Invalid or expired invitation")
		}
		return nil, err
	}

	if invitation.Expired(s.now()) {
		return nil, apierr.InvalidToken("Invalid or expired invitation")
	}
	if invitation.Status != models.InvitationPending {
		return nil, apierr.InvalidToken("Invitation has already been processed")
	}
	return &invitation, nil
}

// markAccepted flips status only while still PENDING, so a concurrent accept
// cannot complete twice.
func (s *Service) markAccepted(ctx context.Context, tx *gorm.DB, invitationID uuid.UUID) error {
	res := tx.WithContext(ctx).Model(&models.Invitation{}).
		Where("id = ? AND status = ?", invitationID, models.InvitationPending).
		Update("status", models.InvitationAccepted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierr.InvalidToken("Invitation has already been processed")
	}
	return nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierr.NotFound(msg)
	}
	return err
}
