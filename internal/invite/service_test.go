package invite

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gourab8389/excel-analytics-server/internal/apierr"
	"github.com/gourab8389/excel-analytics-server/internal/auth"
	"github.com/gourab8389/excel-analytics-server/internal/models"
)

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []string
	calls chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{calls: make(chan struct{}, 8)}
}

func (f *fakeNotifier) SendInvitationEmail(_ context.Context, toEmail, _, _, _, _ string) error {
	f.mu.Lock()
	f.sent = append(f.sent, toEmail)
	f.mu.Unlock()
	f.calls <- struct{}{}
	return nil
}

func (f *fakeNotifier) waitForSend(t *testing.T) {
	t.Helper()
	select {
	case <-f.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for invitation email")
	}
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Invitation{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{
		Email:     email,
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "User",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedProject(t *testing.T, db *gorm.DB, creator *models.User) *models.Project {
	t.Helper()
	project := models.Project{
		Name:      "Quarterly Reports",
		Type:      models.ProjectTypeOrganization,
		CreatorID: creator.ID,
	}
	require.NoError(t, db.Create(&project).Error)
	require.NoError(t, db.Create(&models.ProjectMember{
		UserID:    creator.ID,
		ProjectID: project.ID,
		Role:      models.RoleAdmin,
	}).Error)
	return &project
}

type fixture struct {
	db       *gorm.DB
	svc      *Service
	notifier *fakeNotifier
	creator  *models.User
	project  *models.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testDB(t)
	creator := seedUser(t, db, "owner@example.com")
	project := seedProject(t, db, creator)
	notifier := newFakeNotifier()
	tokens := auth.NewTokens("test-secret", time.Hour)
	svc := NewService(db, tokens, notifier, time.Hour, zerolog.Nop())
	return &fixture{db: db, svc: svc, notifier: notifier, creator: creator, project: project}
}

func TestIssueCreatesPendingInvitation(t *testing.T) {
	f := newFixture(t)

	inv, err := f.svc.Issue(t.Context(), f.project.ID, f.creator.ID, "invitee@example.com", "")
	require.NoError(t, err)

	assert.Equal(t, "invitee@example.com", inv.Email)
	assert.Equal(t, models.RoleMember, inv.Role)
	assert.Equal(t, models.InvitationPending, inv.Status)
	assert.NotEmpty(t, inv.Token)
	assert.True(t, inv.ExpiresAt.After(time.Now()))

	f.notifier.waitForSend(t)
	assert.Equal(t, []string{"invitee@example.com"}, f.notifier.sent)
}

func TestIssueUnknownProject(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(t.Context(), uuid.New(), f.creator.ID, "invitee@example.com", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
}

func TestIssueConflictsWhenAlreadyMember(t *testing.T) {
	f := newFixture(t)
	member := seedUser(t, f.db, "member@example.com")
	require.NoError(t, f.db.Create(&models.ProjectMember{
		UserID:    member.ID,
		ProjectID: f.project.ID,
		Role:      models.RoleMember,
	}).Error)

	_, err := f.svc.Issue(t.Context(), f.project.ID, f.creator.ID, "member@example.com", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apierr.StatusOf(err))
}

func TestIssueConflictsOnPendingInvitation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(t.Context(), f.project.ID, f.creator.ID, "invitee@example.com", "")
	require.NoError(t, err)
	f.notifier.waitForSend(t)

	_, err = f.svc.Issue(t.Context(), f.project.ID, f.creator.ID, "invitee@example.com", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apierr.StatusOf(err))
}

func TestIssueAllowsReinviteAfterExpiry(t *testing.T) {
	f := newFixture(t)

	expired := models.Invitation{
		Email:     "invitee@example.com",
		ProjectID: f.project.ID,
		Token:     "stale-token",
		Role:      models.RoleMember,
		Status:    models.InvitationPending,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, f.db.Create(&expired).Error)

	inv, err := f.svc.Issue(t.Context(), f.project.ID, f.creator.ID, "invitee@example.com", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, inv.Role)
	f.notifier.waitForSend(t)
}

func TestInspectReturnsPreview(t *testing.T) {
	f := newFixture(t)

	inv, err := f.svc.Issue(t.Context(), f.project.ID, f.creator.ID, "invitee@example.com", "")
	require.NoError(t, err)
	f.notifier.waitForSend(t)

	preview, err := f.svc.Inspect(t.Context(), inv.Token)
	require.NoError(t, err)

	assert.Equal(t, "invitee@example.com", preview.Email)
	assert.Equal(t, models.RoleMember, preview.Role)
	assert.Equal(t, f.project.ID, preview.Project.ID)
	assert.Equal(t, "Quarterly Reports", preview.Project.Name)
	assert.Equal(t, "owner@example.com", preview.Project.Creator.Email)
}

func TestInspectRejectsForgedToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Inspect(t.Context(), "not-a-real-token")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
}

func TestAcceptGrantsMembershipOnce(t *testing.T) {
	f := newFixture(t)
	invitee := seedUser(t, f.db, "invitee@example.com")

	inv, err := f.svc.Issue(t.Context(), f.project.ID, f.creator.ID, "invitee@example.com", "")
	require.NoError(t, err)
	f.notifier.waitForSend(t)

	result, err := f.svc.Accept(t.Context(), inv.Token, invitee.ID)
	require.NoError(t, err)
	assert.Equal(t, f.project.ID, result.Project.ID)
	assert.Equal(t, models.RoleMember, result.Role)

	var member models.ProjectMember
	require.NoError(t, f.db.First(&member, "user_id = ? AND project_id = ?", invitee.ID, f.project.ID).Error)
	assert.Equal(t, models.RoleMember, member.Role)

	var stored models.Invitation
	require.NoError(t, f.db.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, models.InvitationAccepted, stored.Status)

	// Replays of a consumed token fail.
	_, err = f.svc.Accept(t.Context(), inv.Token, invitee.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
}

func TestAcceptRejectsEmailMismatch(t *testing.T) {
	f := newFixture(t)
	other := seedUser(t, f.db, "someone-else@example.com")

	inv, err := f.svc.Issue(t.Context(), f.project.ID, f.creator.ID, "invitee@example.com", "")
	require.NoError(t, err)
	f.notifier.waitForSend(t)

	_, err = f.svc.Accept(t.Context(), inv.Token, other.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apierr.StatusOf(err))

	// The invitation stays claimable by the right account.
	var stored models.Invitation
	require.NoError(t, f.db.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, models.InvitationPending, stored.Status)
}

func TestAcceptByExistingMemberRetiresInvitation(t *testing.T) {
	f := newFixture(t)
	invitee := seedUser(t, f.db, "invitee@example.com")

	inv, err := f.svc.Issue(t.Context(), f.project.ID, f.creator.ID, "invitee@example.com", "")
	require.NoError(t, err)
	f.notifier.waitForSend(t)

	// The user joins through another path before accepting.
	require.NoError(t, f.db.Create(&models.ProjectMember{
		UserID:    invitee.ID,
		ProjectID: f.project.ID,
		Role:      models.RoleMember,
	}).Error)

	_, err = f.svc.Accept(t.Context(), inv.Token, invitee.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apierr.StatusOf(err))

	var stored models.Invitation
	require.NoError(t, f.db.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, models.InvitationAccepted, stored.Status)
}

func TestAcceptExpiredInvitation(t *testing.T) {
	f := newFixture(t)
	invitee := seedUser(t, f.db, "invitee@example.com")

	inv, err := f.svc.Issue(t.Context(), f.project.ID, f.creator.ID, "invitee@example.com", "")
	require.NoError(t, err)
	f.notifier.waitForSend(t)

	require.NoError(t, f.db.Model(&models.Invitation{}).
		Where("id = ?", inv.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = f.svc.Accept(t.Context(), inv.Token, invitee.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
}
