package user

import (
	"context"
	stderrors "errors"
	"net/url"
	"strings"

	"process-platform/auth"
	"process-platform/internal/config"
	"process-platform/internal/errors"
	"process-platform/internal/notify"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

// Service defines the interface for user business logic
type Service interface {
	List(ctx context.Context, f ListFilter) ([]SafeUser, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, in CreateInput) (*User, error)
	Update(ctx context.Context, id int64, p Profile) (*User, error)
	UpdateRole(ctx context.Context, id int64, role string) (*User, error)
	Deactivate(ctx context.Context, id, actorID int64) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	Invite(ctx context.Context, in InviteInput, invitedBy int64) (*Invitation, error)
	SetupPassword(ctx context.Context, token, password string) (*User, error)
	Account(ctx context.Context, id int64) (*auth.Account, error)
}

// DefaultService implements Service
type DefaultService struct {
	repository UserRepository
	notifier   notify.Notifier
	revoker    *auth.Revoker
}

// NewService creates a new user service. revoker burns used invitation tokens
// and may be nil.
func NewService(repository UserRepository, notifier notify.Notifier, revoker *auth.Revoker) Service {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &DefaultService{repository: repository, notifier: notifier, revoker: revoker}
}

// NormalizeEmail is applied to every email before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *DefaultService) List(ctx context.Context, f ListFilter) ([]SafeUser, error) {
	users, err := s.repository.List(ctx, f)
	if err != nil {
		return nil, errors.FromDB(err, "User")
	}
	return users, nil
}

func (s *DefaultService) GetUserByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, "User")
	}
	return user, nil
}

func (s *DefaultService) Create(ctx context.Context, in CreateInput) (*User, error) {
	user := &User{
		Name:     strings.TrimSpace(in.Name),
		Email:    NormalizeEmail(in.Email),
		Role:     in.Role,
		Avatar:   in.Avatar,
		IsActive: true,
	}
	if user.Avatar == "" {
		user.Avatar = DefaultAvatar
	}
	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = &hash
	}

	if err := s.repository.Create(ctx, user); err != nil {
		if errors.IsUniqueViolation(err) {
			return nil, errors.Conflict("A user with this email already exists", err).WithDetails(user.Email)
		}
		return nil, errors.FromDB(err, "User")
	}
	return user, nil
}

func (s *DefaultService) Update(ctx context.Context, id int64, p Profile) (*User, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = NormalizeEmail(p.Email)
	if p.Avatar == "" {
		p.Avatar = DefaultAvatar
	}
	user, err := s.repository.Update(ctx, id, p)
	if err != nil {
		if errors.IsUniqueViolation(err) {
			return nil, errors.Conflict("A user with this email already exists", err).WithDetails(p.Email)
		}
		return nil, errors.FromDB(err, "User")
	}
	return user, nil
}

func (s *DefaultService) UpdateRole(ctx context.Context, id int64, role string) (*User, error) {
	user, err := s.repository.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, errors.FromDB(err, "User")
	}
	return user, nil
}

// Deactivate deactivates a user. Admins cannot lock themselves out.
func (s *DefaultService) Deactivate(ctx context.Context, id, actorID int64) (*User, error) {
	if id == actorID {
		return nil, errors.Forbidden("You cannot deactivate your own account", nil)
	}
	user, err := s.repository.Deactivate(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, "User")
	}
	return user, nil
}

// Login authenticates a user. Every failure looks the same to the caller.
func (s *DefaultService) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repository.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Unauthorized("Invalid credentials", err)
		}
		return nil, errors.FromDB(err, "User")
	}

	if !user.IsActive || user.PasswordHash == nil {
		return nil, errors.Unauthorized("Invalid credentials", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.Unauthorized("Invalid credentials", err)
	}
	return user, nil
}

// Invite creates a passwordless account, or reuses one that never set a
// password, and hands a setup link to the notifier.
func (s *DefaultService) Invite(ctx context.Context, in InviteInput, invitedBy int64) (*Invitation, error) {
	email := NormalizeEmail(in.Email)

	user, err := s.repository.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.PasswordHash != nil {
			return nil, errors.Conflict("A user with this email already exists", nil).WithDetails(email)
		}
	case errors.IsNotFound(err):
		user, err = s.Create(ctx, CreateInput{Profile: Profile{Name: in.Name, Email: email, Role: in.Role}})
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.FromDB(err, "User")
	}

	token, claims, err := auth.GenerateInviteToken(user.ID, user.Email)
	if err != nil {
		return nil, errors.Internal(err)
	}
	inv := &Invitation{
		User:      user.ToSafeUser(),
		Link:      config.AppConfig.SiteURL + "/auth/setup-password?token=" + url.QueryEscape(token),
		ExpiresAt: claims.ExpiresAt.Time,
	}

	err = s.notifier.SendInvitation(ctx, notify.Invitation{
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Link:      inv.Link,
		InvitedBy: invitedBy,
		ExpiresAt: inv.ExpiresAt,
	})
	if err != nil {
		// the link is returned to the admin, who can pass it on by hand
		log.Warn().Err(err).Str("email", user.Email).Msg("invitation delivery failed")
	}
	return inv, nil
}

// SetupPassword sets the first password of an invited account. An invitation
// works once; accounts that already have a password are refused.
func (s *DefaultService) SetupPassword(ctx context.Context, token, password string) (*User, error) {
	claims, err := auth.VerifyJWT(token, auth.PurposeInvite)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired invitation", err)
	}
	used, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		log.Warn().Err(err).Msg("invitation reuse check failed")
	}
	if used {
		return nil, errors.Unauthorized("Invalid or expired invitation", nil)
	}

	user, err := s.repository.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Unauthorized("Invalid or expired invitation", err)
		}
		return nil, errors.FromDB(err, "User")
	}
	if user.Email != claims.Email || !user.IsActive {
		return nil, errors.Unauthorized("Invalid or expired invitation", nil)
	}
	if user.PasswordHash != nil && *user.PasswordHash != "" {
		return nil, errors.Conflict("Password has already been set", nil)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	if err := s.repository.SetInitialPassword(ctx, user.ID, hash); err != nil {
		if stderrors.Is(err, ErrPasswordAlreadySet) {
			return nil, errors.Conflict("Password has already been set", err)
		}
		return nil, errors.FromDB(err, "User")
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to mark invitation as used")
	}
	user.PasswordHash = &hash
	return user, nil
}

// Account reports the stored role and status behind a session token.
func (s *DefaultService) Account(ctx context.Context, id int64) (*auth.Account, error) {
	user, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &auth.Account{Role: user.Role, Active: user.IsActive}, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", errors.BadRequest("Password must be at least 8 characters", nil).WithDetails("password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Internal(err)
	}
	return string(hash), nil
}
