package auth

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rephome/repair-booking/internal/lib/jwt"
	"github.com/rephome/repair-booking/internal/lib/password"
	"github.com/rephome/repair-booking/internal/models"
	"github.com/rephome/repair-booking/internal/storage/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newService(repo UserRepository) *Service {
	return New(repo, jwt.NewJWTMaker("test-secret", time.Hour))
}

func TestRegister_Success(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "ravi@example.com" && u.Role == models.RoleCustomer && u.PasswordHash != "secret1"
	})).Return("uid-123", nil).Once()

	token, user, err := newService(repo).Register(context.Background(), models.RegisterRequest{
		Name:     "Ravi",
		Email:    "ravi@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "uid-123", user.UID)
	assert.Equal(t, models.RoleCustomer, user.Role)
	repo.AssertExpectations(t)
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("RegisterUser", mock.Anything, mock.Anything).
		Return("", fmt.Errorf("storage.RegisterUser: %w", repository.ErrEmailExists)).Once()

	_, _, err := newService(repo).Register(context.Background(), models.RegisterRequest{
		Name:     "Ravi",
		Email:    "ravi@example.com",
		Password: "secret1",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
	repo.AssertExpectations(t)
}

func TestLogin_Success(t *testing.T) {
	hash, err := password.GetHash("secret1")
	require.NoError(t, err)

	repo := new(MockUserRepository)
	repo.On("GetUserByEmail", mock.Anything, "ravi@example.com").Return(&models.User{
		UID:          "uid-123",
		Name:         "Ravi",
		Email:        "ravi@example.com",
		PasswordHash: hash,
		Role:         models.RoleCustomer,
	}, nil).Once()

	token, user, err := newService(repo).Login(context.Background(), models.LoginRequest{
		Email:    "ravi@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "uid-123", user.UID)
	repo.AssertExpectations(t)
}

func TestLogin_WrongPasswordAndUnknownEmailLookTheSame(t *testing.T) {
	hash, err := password.GetHash("secret1")
	require.NoError(t, err)

	repo := new(MockUserRepository)
	repo.On("GetUserByEmail", mock.Anything, "ravi@example.com").Return(&models.User{
		UID:          "uid-123",
		Email:        "ravi@example.com",
		PasswordHash: hash,
	}, nil).Once()
	repo.On("GetUserByEmail", mock.Anything, "ghost@example.com").
		Return(nil, fmt.Errorf("storage.GetUserByEmail: %w", sql.ErrNoRows)).Once()

	service := newService(repo)

	_, _, errWrongPassword := service.Login(context.Background(), models.LoginRequest{
		Email:    "ravi@example.com",
		Password: "wrong-password",
	})
	_, _, errUnknownEmail := service.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@example.com",
		Password: "secret1",
	})

	assert.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownEmail, ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
	repo.AssertExpectations(t)
}
