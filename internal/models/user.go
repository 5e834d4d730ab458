// Package models содержит доменные структуры сервиса: пользователей,
// заявки на ремонт и мастерские, а также DTO для JSON-запросов.
package models

import "time"

// Роли пользователей.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    `json:"id"`    // Уникальный идентификатор пользователя
	Name         string    `json:"name"`  // Имя пользователя
	Email        string    `json:"email"` // Электронная почта (уникальная, без учета регистра)
	PasswordHash string    `json:"-"`     // Хэш пароля, наружу не отдается
	Role         string    `json:"role"`  // customer или admin
	CreatedAt    time.Time `json:"-"`
}

// RegisterRequest входные данные регистрации.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest входные данные авторизации.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}
