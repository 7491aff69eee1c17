package auth

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/Domenick1991/airtech/internal/repository/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func newTestService(users *mocks.UserRepository, tokens *mocks.TokenRepository) *AuthService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewAuthService(users, tokens, mocks.Tx{}, time.Hour, log,
		WithClock(func() time.Time { return fixedNow }),
		WithBcryptCost(bcrypt.MinCost))
}

func userWithPassword(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{ID: 1, Email: "ada@example.com", FirstName: "Ada", PasswordHash: string(hash), IsActive: true}
}

func assertKind(t *testing.T, err error, kind domain.ErrorKind, detail any) {
	t.Helper()
	de, ok := domain.AsError(err)
	require.True(t, ok, "expected domain error, got %v", err)
	assert.Equal(t, kind, de.Kind)
	if detail != nil {
		assert.Equal(t, detail, de.Detail)
	}
}

func TestAuthService_SignUp_Success(t *testing.T) {
	users := &mocks.UserRepository{}
	tokens := &mocks.TokenRepository{}
	svc := newTestService(users, tokens)

	users.On("FindActiveByEmail", mock.Anything, "ada@example.com").Return(nil, domain.ErrNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "ada@example.com" && u.IsActive && !u.IsStaff && u.PasswordHash != "secret"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 1
	}).Return(nil)
	tokens.On("Create", mock.Anything, mock.MatchedBy(func(tk *domain.Token) bool {
		return tk.UserID == 1 && len(tk.Key) == 40 && tk.ExpiresAt != nil && tk.ExpiresAt.Equal(fixedNow.Add(time.Hour))
	})).Return(nil)

	user, err := svc.SignUp(context.Background(), SignUpInput{Email: " Ada@Example.com ", FirstName: "Ada", Password: "secret"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")))
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	users := &mocks.UserRepository{}
	svc := newTestService(users, &mocks.TokenRepository{})

	users.On("FindActiveByEmail", mock.Anything, "ada@example.com").Return(&domain.User{ID: 3}, nil)

	_, err := svc.SignUp(context.Background(), SignUpInput{Email: "ada@example.com", Password: "x"})

	assertKind(t, err, domain.KindValidation, map[string][]string{"email": {MsgEmailTaken}})
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_SignUp_UniqueViolation(t *testing.T) {
	users := &mocks.UserRepository{}
	svc := newTestService(users, &mocks.TokenRepository{})

	users.On("FindActiveByEmail", mock.Anything, "ada@example.com").Return(nil, domain.ErrNotFound)
	users.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicate)

	_, err := svc.SignUp(context.Background(), SignUpInput{Email: "ada@example.com", Password: "x"})

	assertKind(t, err, domain.KindValidation, nil)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestAuthService_SignUp_PasswordTooLong(t *testing.T) {
	users := &mocks.UserRepository{}
	svc := newTestService(users, &mocks.TokenRepository{})

	users.On("FindActiveByEmail", mock.Anything, "ada@example.com").Return(nil, domain.ErrNotFound)

	// 40 runes, 80 bytes.
	_, err := svc.SignUp(context.Background(), SignUpInput{Email: "ada@example.com", Password: strings.Repeat("é", 40)})

	assertKind(t, err, domain.KindValidation, map[string][]string{"password": {MsgPasswordTooLong}})
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_CreateUser_Superuser(t *testing.T) {
	users := &mocks.UserRepository{}
	tokens := &mocks.TokenRepository{}
	svc := newTestService(users, tokens)

	users.On("FindActiveByEmail", mock.Anything, "root@example.com").Return(nil, domain.ErrNotFound)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)
	tokens.On("Create", mock.Anything, mock.Anything).Return(nil)

	user, err := svc.CreateUser(context.Background(), SignUpInput{Email: "root@example.com", Password: "x"}, false, true)

	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
}

func TestAuthService_SignIn(t *testing.T) {
	user := userWithPassword(t, "secret")
	future := fixedNow.Add(time.Minute)
	past := fixedNow.Add(-time.Minute)

	tests := []struct {
		name      string
		email     string
		password  string
		setup     func(users *mocks.UserRepository, tokens *mocks.TokenRepository)
		wantToken string
		wantErr   any
	}{
		{
			name:     "not registered",
			email:    "ghost@example.com",
			password: "secret",
			setup: func(users *mocks.UserRepository, _ *mocks.TokenRepository) {
				users.On("FindActiveByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)
			},
			wantErr: MsgNotRegistered,
		},
		{
			name:     "wrong password",
			email:    "ada@example.com",
			password: "nope",
			setup: func(users *mocks.UserRepository, _ *mocks.TokenRepository) {
				users.On("FindActiveByEmail", mock.Anything, "ada@example.com").Return(user, nil)
			},
			wantErr: MsgBadCredentials,
		},
		{
			name:     "existing token",
			email:    "ADA@example.com",
			password: "secret",
			setup: func(users *mocks.UserRepository, tokens *mocks.TokenRepository) {
				users.On("FindActiveByEmail", mock.Anything, "ada@example.com").Return(user, nil)
				tokens.On("GetByUserID", mock.Anything, int64(1)).Return(&domain.Token{Key: "live", UserID: 1, ExpiresAt: &future}, nil)
			},
			wantToken: "live",
		},
		{
			name:     "expired token is rotated",
			email:    "ada@example.com",
			password: "secret",
			setup: func(users *mocks.UserRepository, tokens *mocks.TokenRepository) {
				users.On("FindActiveByEmail", mock.Anything, "ada@example.com").Return(user, nil)
				tokens.On("GetByUserID", mock.Anything, int64(1)).Return(&domain.Token{Key: "stale", UserID: 1, ExpiresAt: &past}, nil)
				tokens.On("Rotate", mock.Anything, int64(1), mock.AnythingOfType("string"), mock.Anything).
					Return(&domain.Token{Key: "fresh", UserID: 1}, nil)
			},
			wantToken: "fresh",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mocks.UserRepository{}
			tokens := &mocks.TokenRepository{}
			tt.setup(users, tokens)
			svc := newTestService(users, tokens)

			session, err := svc.SignIn(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				assertKind(t, err, domain.KindValidation, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, session.Token)
			assert.Equal(t, user, session.User)
		})
	}
}

func TestAuthService_SignIn_InactiveUser(t *testing.T) {
	user := userWithPassword(t, "secret")
	user.IsActive = false
	users := &mocks.UserRepository{}
	users.On("FindActiveByEmail", mock.Anything, "ada@example.com").Return(user, nil)

	_, err := newTestService(users, &mocks.TokenRepository{}).SignIn(context.Background(), "ada@example.com", "secret")

	assertKind(t, err, domain.KindValidation, MsgBadCredentials)
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Run("incorrect old password", func(t *testing.T) {
		svc := newTestService(&mocks.UserRepository{}, &mocks.TokenRepository{})
		_, err := svc.ChangePassword(context.Background(), userWithPassword(t, "secret"),
			ChangePasswordInput{OldPassword: "wrong", NewPassword: "a", ConfirmNewPassword: "a"})
		assertKind(t, err, domain.KindValidation, map[string][]string{"old_password": {MsgWrongPassword}})
	})

	t.Run("mismatch", func(t *testing.T) {
		svc := newTestService(&mocks.UserRepository{}, &mocks.TokenRepository{})
		_, err := svc.ChangePassword(context.Background(), userWithPassword(t, "secret"),
			ChangePasswordInput{OldPassword: "secret", NewPassword: "a", ConfirmNewPassword: "b"})
		assertKind(t, err, domain.KindValidation, MsgPasswordsDiffer)
	})

	t.Run("old key stops authenticating", func(t *testing.T) {
		users := &mocks.UserRepository{}
		tokens := &mocks.TokenRepository{}
		svc := newTestService(users, tokens)
		user := userWithPassword(t, "secret")

		var newKey string
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("n3w")) == nil
		})).Return(nil)
		tokens.On("Rotate", mock.Anything, int64(1), mock.AnythingOfType("string"), mock.Anything).
			Run(func(args mock.Arguments) { newKey = args.String(2) }).
			Return(&domain.Token{Key: "rotated", UserID: 1}, nil)

		key, err := svc.ChangePassword(context.Background(), user,
			ChangePasswordInput{OldPassword: "secret", NewPassword: "n3w", ConfirmNewPassword: "n3w"})
		require.NoError(t, err)
		assert.Equal(t, "rotated", key)
		assert.Len(t, newKey, 40)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("n3w")))

		tokens.On("GetByKey", mock.Anything, "old-key").Return(nil, domain.ErrNotFound)
		_, err = svc.Authenticate(context.Background(), "old-key")
		assertKind(t, err, domain.KindAuthentication, MsgInvalidToken)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	past := fixedNow.Add(-time.Second)

	t.Run("unknown key", func(t *testing.T) {
		tokens := &mocks.TokenRepository{}
		tokens.On("GetByKey", mock.Anything, "nope").Return(nil, domain.ErrNotFound)
		_, err := newTestService(&mocks.UserRepository{}, tokens).Authenticate(context.Background(), "nope")
		assertKind(t, err, domain.KindAuthentication, MsgInvalidToken)
	})

	t.Run("expired key is deleted", func(t *testing.T) {
		tokens := &mocks.TokenRepository{}
		tokens.On("GetByKey", mock.Anything, "old").Return(&domain.Token{Key: "old", UserID: 1, ExpiresAt: &past}, nil)
		tokens.On("DeleteByKey", mock.Anything, "old").Return(nil).Once()

		_, err := newTestService(&mocks.UserRepository{}, tokens).Authenticate(context.Background(), "old")

		assertKind(t, err, domain.KindAuthentication, MsgTokenExpired)
		tokens.AssertExpectations(t)
	})

	t.Run("inactive user", func(t *testing.T) {
		users := &mocks.UserRepository{}
		tokens := &mocks.TokenRepository{}
		tokens.On("GetByKey", mock.Anything, "k").Return(&domain.Token{Key: "k", UserID: 1}, nil)
		users.On("FindActiveByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1}, nil)

		_, err := newTestService(users, tokens).Authenticate(context.Background(), "k")
		assertKind(t, err, domain.KindAuthentication, MsgUserInactive)
	})

	t.Run("valid", func(t *testing.T) {
		users := &mocks.UserRepository{}
		tokens := &mocks.TokenRepository{}
		tokens.On("GetByKey", mock.Anything, "k").Return(&domain.Token{Key: "k", UserID: 1}, nil)
		users.On("FindActiveByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, IsActive: true}, nil)

		user, err := newTestService(users, tokens).Authenticate(context.Background(), "k")
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
	})

	t.Run("repository failure", func(t *testing.T) {
		tokens := &mocks.TokenRepository{}
		tokens.On("GetByKey", mock.Anything, "k").Return(nil, errors.New("db down"))
		_, err := newTestService(&mocks.UserRepository{}, tokens).Authenticate(context.Background(), "k")
		assert.EqualError(t, err, "db down")
	})
}

func TestAuthService_UpdateUser(t *testing.T) {
	name := "Grace"
	staff := true

	t.Run("other user without staff", func(t *testing.T) {
		svc := newTestService(&mocks.UserRepository{}, &mocks.TokenRepository{})
		_, err := svc.UpdateUser(context.Background(), &domain.User{ID: 2}, 1, ProfilePatch{FirstName: &name})
		assertKind(t, err, domain.KindPermission, nil)
	})

	t.Run("role flags need superuser", func(t *testing.T) {
		svc := newTestService(&mocks.UserRepository{}, &mocks.TokenRepository{})
		_, err := svc.UpdateUser(context.Background(), &domain.User{ID: 1, IsStaff: true}, 1, ProfilePatch{IsStaff: &staff})
		assertKind(t, err, domain.KindPermission, nil)
	})

	t.Run("missing user", func(t *testing.T) {
		users := &mocks.UserRepository{}
		users.On("FindActiveByID", mock.Anything, int64(9)).Return(nil, domain.ErrNotFound)
		_, err := newTestService(users, &mocks.TokenRepository{}).
			UpdateUser(context.Background(), &domain.User{ID: 1, IsStaff: true}, 9, ProfilePatch{FirstName: &name})
		assertKind(t, err, domain.KindNotFound, nil)
	})

	t.Run("superuser promotes", func(t *testing.T) {
		users := &mocks.UserRepository{}
		users.On("FindActiveByID", mock.Anything, int64(5)).Return(&domain.User{ID: 5, FirstName: "Ada", IsActive: true}, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.FirstName == "Grace" && u.IsStaff
		})).Return(nil)

		user, err := newTestService(users, &mocks.TokenRepository{}).
			UpdateUser(context.Background(), &domain.User{ID: 1, IsStaff: true, IsSuperuser: true}, 5, ProfilePatch{FirstName: &name, IsStaff: &staff})

		require.NoError(t, err)
		assert.True(t, user.IsStaff)
		users.AssertExpectations(t)
	})
}

func TestGenerateKey(t *testing.T) {
	a, err := GenerateKey()
	require.NoError(t, err)
	b, err := GenerateKey()
	require.NoError(t, err)

	assert.Len(t, a, 40)
	assert.NotEqual(t, a, b)
}
