// Package models содержит доменные структуры сервиса записи:
// пользователей, файлы, записи на прием, уведомления и фоновые задачи.
// Структуры используются в бизнес-логике, хранилище и HTTP-слое.
package models

import "time"

// User представляет зарегистрированного пользователя: клиента или провайдера услуг.
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Provider     bool      `json:"provider"`
	AvatarID     *int      `json:"-"`
	Avatar       *File     `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest тело запроса на регистрацию.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Provider bool   `json:"provider"`
}

// LoginRequest тело запроса на вход.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session ответ на успешный вход.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
