package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/Domenick1991/airtech/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	MsgRegistered      = "User successfully registered."
	MsgEmailTaken      = "A user with this email address exists"
	MsgNotRegistered   = "User not registered. Please signup first."
	MsgBadCredentials  = "Invalid email/password Combination."
	MsgWrongPassword   = "Incorrect password."
	MsgPasswordsDiffer = "Passwords do not match."
	MsgInvalidToken    = "Invalid Token."
	MsgTokenExpired    = "Token Expired, Login to get new token."
	MsgUserInactive    = "User inactive, contact customer care."
	MsgPasswordTooLong = "Ensure this field has no more than 72 bytes."
)

type AuthUseCase interface {
	SignUp(ctx context.Context, input SignUpInput) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	ChangePassword(ctx context.Context, user *domain.User, input ChangePasswordInput) (string, error)
	Authenticate(ctx context.Context, key string) (*domain.User, error)
	ListUsers(ctx context.Context, page domain.Page) (domain.PageResult[domain.User], error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateUser(ctx context.Context, actor *domain.User, id int64, patch ProfilePatch) (*domain.User, error)
}

type SignUpInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

type ChangePasswordInput struct {
	OldPassword        string
	NewPassword        string
	ConfirmNewPassword string
}

// ProfilePatch lists the profile fields a caller may change. Nil fields are
// left as they are. The role flags are reserved for superusers.
type ProfilePatch struct {
	Email       *string
	FirstName   *string
	LastName    *string
	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool
}

func (p ProfilePatch) touchesRoles() bool {
	return p.IsActive != nil || p.IsStaff != nil || p.IsSuperuser != nil
}

type Session struct {
	Token string
	User  *domain.User
}

type AuthService struct {
	users      repository.UserRepository
	tokens     repository.TokenRepository
	tx         repository.Transactor
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
	log        logrus.FieldLogger
}

type AuthServiceOption func(*AuthService)

func WithClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) {
		s.now = now
	}
}

func WithBcryptCost(cost int) AuthServiceOption {
	return func(s *AuthService) {
		s.bcryptCost = cost
	}
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	tx repository.Transactor,
	tokenTTL time.Duration,
	log logrus.FieldLogger,
	opts ...AuthServiceOption,
) *AuthService {
	s := &AuthService{
		users:      users,
		tokens:     tokens,
		tx:         tx,
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp registers an active regular user together with their token.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*domain.User, error) {
	return s.CreateUser(ctx, input, false, false)
}

// CreateUser registers a user with the given role flags.
func (s *AuthService) CreateUser(ctx context.Context, input SignUpInput, staff, superuser bool) (*domain.User, error) {
	email := domain.NormalizeEmail(input.Email)
	if _, err := s.users.FindActiveByEmail(ctx, email); err == nil {
		return nil, domain.Validation(map[string][]string{"email": {MsgEmailTaken}})
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hash("password", input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      staff || superuser,
		IsSuperuser:  superuser,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		token, err := s.newToken(user.ID)
		if err != nil {
			return err
		}
		return s.tokens.Create(ctx, token)
	})
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, domain.Validation(map[string][]string{"email": {MsgEmailTaken}}).Wrap(err)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "staff": user.IsStaff}).Info("user registered")
	return user, nil
}

// SignIn returns the user's token, replacing its key when it has expired.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindActiveByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Validation(MsgNotRegistered)
	}
	if err != nil {
		return nil, err
	}

	if !s.passwordMatches(user, password) || !user.IsActive {
		return nil, domain.Validation(MsgBadCredentials)
	}

	token, err := s.tokens.GetByUserID(ctx, user.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		token, err = s.newToken(user.ID)
		if err != nil {
			return nil, err
		}
		if err := s.tokens.Create(ctx, token); err != nil {
			return nil, fmt.Errorf("create token: %w", err)
		}
	case err != nil:
		return nil, err
	case token.Expired(s.now()):
		if token, err = s.rotate(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	return &Session{Token: token.Key, User: user}, nil
}

// ChangePassword sets a new password and replaces the user's token key, so
// the previous key stops authenticating.
func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, input ChangePasswordInput) (string, error) {
	if !s.passwordMatches(user, input.OldPassword) {
		return "", domain.Validation(map[string][]string{"old_password": {MsgWrongPassword}})
	}
	if input.NewPassword != input.ConfirmNewPassword {
		return "", domain.Validation(MsgPasswordsDiffer)
	}

	hash, err := s.hash("new_password", input.NewPassword)
	if err != nil {
		return "", err
	}

	var key string
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		updated := *user
		updated.PasswordHash = hash
		if err := s.users.Update(ctx, &updated); err != nil {
			return err
		}
		token, err := s.rotate(ctx, user.ID)
		if err != nil {
			return err
		}
		key = token.Key
		*user = updated
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("change password: %w", err)
	}
	return key, nil
}

func (s *AuthService) Authenticate(ctx context.Context, key string) (*domain.User, error) {
	if key == "" {
		return nil, domain.AuthenticationFailed(MsgInvalidToken)
	}

	token, err := s.tokens.GetByKey(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.AuthenticationFailed(MsgInvalidToken)
	}
	if err != nil {
		return nil, err
	}

	if token.Expired(s.now()) {
		if err := s.tokens.DeleteByKey(ctx, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.log.WithError(err).WithField("user_id", token.UserID).Warn("failed to delete expired token")
		}
		return nil, domain.AuthenticationFailed(MsgTokenExpired)
	}

	user, err := s.users.FindActiveByID(ctx, token.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.AuthenticationFailed(MsgInvalidToken)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.AuthenticationFailed(MsgUserInactive)
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context, page domain.Page) (domain.PageResult[domain.User], error) {
	return s.users.ListActive(ctx, page)
}

func (s *AuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.FindActiveByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound()
	}
	return user, err
}

// UpdateUser applies patch to the profile of user id. Users may edit their own
// profile, staff may edit anyone's.
func (s *AuthService) UpdateUser(ctx context.Context, actor *domain.User, id int64, patch ProfilePatch) (*domain.User, error) {
	if actor.ID != id && !actor.IsStaff {
		return nil, domain.PermissionDenied()
	}
	if patch.touchesRoles() && !actor.IsSuperuser {
		return nil, domain.PermissionDenied()
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		email := domain.NormalizeEmail(*patch.Email)
		if email != user.Email {
			if _, err := s.users.FindActiveByEmail(ctx, email); err == nil {
				return nil, domain.Validation(map[string][]string{"email": {MsgEmailTaken}})
			} else if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
		}
		user.Email = email
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	if patch.IsStaff != nil {
		user.IsStaff = *patch.IsStaff
	}
	if patch.IsSuperuser != nil {
		user.IsSuperuser = *patch.IsSuperuser
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Validation(map[string][]string{"email": {MsgEmailTaken}}).Wrap(err)
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return user, nil
}

func (s *AuthService) rotate(ctx context.Context, userID int64) (*domain.Token, error) {
	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Rotate(ctx, userID, key, s.expiry())
	if err != nil {
		return nil, fmt.Errorf("rotate token: %w", err)
	}
	return token, nil
}

func (s *AuthService) newToken(userID int64) (*domain.Token, error) {
	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	return &domain.Token{Key: key, UserID: userID, ExpiresAt: s.expiry()}, nil
}

func (s *AuthService) expiry() *time.Time {
	if s.tokenTTL <= 0 {
		return nil
	}
	at := s.now().Add(s.tokenTTL)
	return &at
}

// hash reports an over-long password as a validation error on field.
func (s *AuthService) hash(field, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.Validation(map[string][]string{field: {MsgPasswordTooLong}})
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) passwordMatches(user *domain.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// GenerateKey returns 40 hex characters drawn from crypto/rand.
func GenerateKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

var _ AuthUseCase = (*AuthService)(nil)
