// Package members — service.go содержит бизнес-логику управления учениками.
// Сервис координирует регистрацию, чтение профиля и админские флаги.
package members

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Store — хранилище учеников. Реализации: Repository (PostgreSQL)
// и memory.Store (in-memory драйвер).
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	UserByID(ctx context.Context, userID int64) (*User, error)
	TopUsers(ctx context.Context, limit int) ([]*User, error)
	ClassUsers(ctx context.Context, grade int, letter string) ([]*User, error)
	SetBanned(ctx context.Context, userID int64, banned bool) error
	SetAdmin(ctx context.Context, userID int64, admin bool) error
}

// Service управляет учениками.
type Service struct {
	store Store
}

// NewService создаёт новый сервис учеников.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register сохраняет собранного в диалоге ученика.
func (s *Service) Register(ctx context.Context, u *User) error {
	if err := s.store.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("ошибка регистрации: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id": u.UserID,
		"class":   u.ClassName(),
	}).Info("Новый ученик зарегистрирован")

	return nil
}

// Get возвращает ученика по его Telegram user ID.
func (s *Service) Get(ctx context.Context, userID int64) (*User, error) {
	return s.store.UserByID(ctx, userID)
}

// Top возвращает лучших учеников.
func (s *Service) Top(ctx context.Context, limit int) ([]*User, error) {
	return s.store.TopUsers(ctx, limit)
}

// Classmates возвращает учеников того же класса.
func (s *Service) Classmates(ctx context.Context, u *User) ([]*User, error) {
	return s.store.ClassUsers(ctx, u.Grade, u.Letter)
}

// SetBanned банит или разбанивает ученика.
func (s *Service) SetBanned(ctx context.Context, userID int64, banned bool) error {
	return s.store.SetBanned(ctx, userID, banned)
}

// SetAdmin выдаёт или снимает права администратора.
func (s *Service) SetAdmin(ctx context.Context, userID int64, admin bool) error {
	return s.store.SetAdmin(ctx, userID, admin)
}
