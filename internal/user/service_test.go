package user

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"process-platform/auth"
	"process-platform/internal/config"
	apiError "process-platform/internal/errors"
	"process-platform/internal/notify"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	config.AppConfig.JWTSecret = "test-secret"
	config.AppConfig.JWTExpirationHours = 1
	config.AppConfig.SiteURL = "https://app.example.com"
}

// fakeRepository keeps users in memory, keyed by id
type fakeRepository struct {
	users  map[int64]*User
	nextID int64
}

func newFakeRepository(users ...*User) *fakeRepository {
	r := &fakeRepository{users: map[int64]*User{}}
	for _, u := range users {
		r.nextID++
		u.ID = r.nextID
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeRepository) List(ctx context.Context, f ListFilter) ([]SafeUser, error) {
	out := []SafeUser{}
	for _, u := range r.users {
		out = append(out, u.ToSafeUser())
	}
	return out, nil
}

func (r *fakeRepository) Create(ctx context.Context, user *User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return nil
}

func (r *fakeRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeRepository) Update(ctx context.Context, id int64, p Profile) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	u.Name, u.Email, u.Role, u.Avatar = p.Name, p.Email, p.Role, p.Avatar
	return u, nil
}

func (r *fakeRepository) UpdateRole(ctx context.Context, id int64, role string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	u.Role = role
	return u, nil
}

func (r *fakeRepository) SetInitialPassword(ctx context.Context, id int64, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if u.PasswordHash != nil {
		return ErrPasswordAlreadySet
	}
	u.PasswordHash = &hash
	return nil
}

func (r *fakeRepository) Deactivate(ctx context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	u.IsActive = false
	return u, nil
}

type recordingNotifier struct {
	sent []notify.Invitation
}

func (n *recordingNotifier) SendInvitation(ctx context.Context, inv notify.Invitation) error {
	n.sent = append(n.sent, inv)
	return nil
}

func status(t *testing.T, err error) int {
	t.Helper()
	var appErr *apiError.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Status
}

func TestCreate_NormalizesAndHashes(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil, nil)

	user, err := svc.Create(context.Background(), CreateInput{
		Profile:  Profile{Name: " Ana ", Email: "  Ana@Example.COM ", Role: "contributor"},
		Password: "s3cret-pass",
	})

	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, DefaultAvatar, user.Avatar)
	assert.True(t, user.IsActive)
	require.NotNil(t, user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte("s3cret-pass")))
}

func TestCreate_ShortPassword(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Profile:  Profile{Name: "Ana", Email: "ana@example.com", Role: "reader"},
		Password: "short",
	})

	assert.Equal(t, http.StatusBadRequest, status(t, err))
	assert.Empty(t, repo.users)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo := newFakeRepository(&User{Name: "Ana", Email: "ana@example.com", IsActive: true})
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Profile: Profile{Name: "Other", Email: "ANA@example.com", Role: "reader"},
	})

	assert.Equal(t, http.StatusConflict, status(t, err))
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	h := string(hash)
	repo := newFakeRepository(
		&User{Name: "Ana", Email: "ana@example.com", PasswordHash: &h, IsActive: true},
		&User{Name: "Gone", Email: "gone@example.com", PasswordHash: &h, IsActive: false},
		&User{Name: "Invited", Email: "invited@example.com", IsActive: true},
	)
	svc := NewService(repo, nil, nil)

	user, err := svc.Login(context.Background(), " ANA@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)

	tests := []struct{ email, password string }{
		{"ana@example.com", "wrong"},
		{"nobody@example.com", "correct-horse"},
		{"gone@example.com", "correct-horse"},
		{"invited@example.com", ""},
	}
	for _, tt := range tests {
		_, err := svc.Login(context.Background(), tt.email, tt.password)
		assert.Equal(t, http.StatusUnauthorized, status(t, err), tt.email)
	}
}

func TestDeactivate_RefusesSelf(t *testing.T) {
	repo := newFakeRepository(&User{Name: "Admin", Email: "admin@example.com", IsActive: true})
	svc := NewService(repo, nil, nil)

	_, err := svc.Deactivate(context.Background(), 1, 1)
	assert.Equal(t, http.StatusForbidden, status(t, err))
	assert.True(t, repo.users[1].IsActive)
}

func TestDeactivate_UnknownUser(t *testing.T) {
	svc := NewService(newFakeRepository(), nil, nil)

	_, err := svc.Deactivate(context.Background(), 9, 1)
	assert.Equal(t, http.StatusNotFound, status(t, err))
}

func TestInviteThenSetupPassword(t *testing.T) {
	repo := newFakeRepository()
	notifier := &recordingNotifier{}
	svc := NewService(repo, notifier, nil)

	inv, err := svc.Invite(context.Background(), InviteInput{Name: "New", Email: "New@Example.com", Role: "reader"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", inv.User.Email)
	assert.False(t, inv.User.HasPassword)
	assert.True(t, strings.HasPrefix(inv.Link, "https://app.example.com/auth/setup-password?token="))
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, inv.Link, notifier.sent[0].Link)
	assert.Equal(t, int64(1), notifier.sent[0].InvitedBy)

	token, _, err := auth.GenerateInviteToken(inv.User.ID, inv.User.Email)
	require.NoError(t, err)

	user, err := svc.SetupPassword(context.Background(), token, "a-long-password")
	require.NoError(t, err)
	assert.True(t, user.ToSafeUser().HasPassword)

	_, err = svc.Login(context.Background(), "new@example.com", "a-long-password")
	assert.NoError(t, err)

	// once a password exists the address can no longer be invited
	_, err = svc.Invite(context.Background(), InviteInput{Name: "New", Email: "new@example.com", Role: "reader"}, 1)
	assert.Equal(t, http.StatusConflict, status(t, err))
}

func TestSetupPassword_RejectsSessionToken(t *testing.T) {
	repo := newFakeRepository(&User{Name: "Ana", Email: "ana@example.com", IsActive: true})
	svc := NewService(repo, nil, nil)

	token, _, err := auth.GenerateJWT(1, "reader")
	require.NoError(t, err)

	_, err = svc.SetupPassword(context.Background(), token, "a-long-password")
	assert.Equal(t, http.StatusUnauthorized, status(t, err))
	assert.Nil(t, repo.users[1].PasswordHash)
}

func TestSetupPassword_InvitationWorksOnce(t *testing.T) {
	repo := newFakeRepository(&User{Name: "Ana", Email: "ana@example.com", Role: "reader", IsActive: true})
	svc := NewService(repo, nil, nil)

	token, _, err := auth.GenerateInviteToken(1, "ana@example.com")
	require.NoError(t, err)

	_, err = svc.SetupPassword(context.Background(), token, "owner-password")
	require.NoError(t, err)

	_, err = svc.SetupPassword(context.Background(), token, "attacker-password")
	assert.Equal(t, http.StatusConflict, status(t, err))

	_, err = svc.Login(context.Background(), "ana@example.com", "owner-password")
	assert.NoError(t, err)
	_, err = svc.Login(context.Background(), "ana@example.com", "attacker-password")
	assert.Equal(t, http.StatusUnauthorized, status(t, err))
}

func TestSetupPassword_BurnsInvitation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := newFakeRepository(&User{Name: "Ana", Email: "ana@example.com", Role: "reader", IsActive: true})
	svc := NewService(repo, nil, auth.NewRevoker(client))

	token, claims, err := auth.GenerateInviteToken(1, "ana@example.com")
	require.NoError(t, err)

	_, err = svc.SetupPassword(context.Background(), token, "owner-password")
	require.NoError(t, err)
	assert.True(t, mr.Exists("revoked:jti:"+claims.ID))

	// even if the password were cleared, the same link stays dead
	repo.users[1].PasswordHash = nil
	_, err = svc.SetupPassword(context.Background(), token, "attacker-password")
	assert.Equal(t, http.StatusUnauthorized, status(t, err))
	assert.Nil(t, repo.users[1].PasswordHash)
}

func TestAccount_ReflectsStoredState(t *testing.T) {
	repo := newFakeRepository(&User{Name: "Ana", Email: "ana@example.com", Role: "admin", IsActive: true})
	svc := NewService(repo, nil, nil)

	_, err := svc.UpdateRole(context.Background(), 1, "reader")
	require.NoError(t, err)
	_, err = svc.Deactivate(context.Background(), 1, 2)
	require.NoError(t, err)

	account, err := svc.Account(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, &auth.Account{Role: "reader", Active: false}, account)
}
