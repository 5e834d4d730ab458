// Package auth содержит бизнес-логику регистрации и авторизации пользователей.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rephome/repair-booking/internal/lib/jwt"
	"github.com/rephome/repair-booking/internal/lib/password"
	"github.com/rephome/repair-booking/internal/models"
	"github.com/rephome/repair-booking/internal/storage/repository"
)

// ErrEmailTaken почта уже занята другим пользователем.
var ErrEmailTaken = errors.New("email already in use")

// ErrInvalidCredentials единый ответ на неверный пароль и несуществующую почту,
// чтобы не раскрывать, какая из причин сработала.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по почте или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service отвечает за регистрацию, авторизацию и выпуск JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает пользователя с ролью customer и сразу выдает токен.
// Повторная регистрация на ту же почту возвращает ErrEmailTaken.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (string, *models.User, error) {
	const op = "auth.Register"
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         models.RoleCustomer,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return "", nil, ErrEmailTaken
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	user.UID = uid

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Name, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, &user, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	const op = "auth.Login"
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.UID, user.Name, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}
