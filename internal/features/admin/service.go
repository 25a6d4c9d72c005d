// Package admin — service.go содержит админ-действия и вход по паролю.
package admin

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/members"
)

// SessionStore хранит сессии и попытки входа.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	ActiveSession(ctx context.Context, userID int64, now time.Time) (*Session, error)
	DeactivateSessions(ctx context.Context, userID int64) error
	TouchSession(ctx context.Context, userID int64, now time.Time) error
	LogAttempt(ctx context.Context, userID int64, success bool, at time.Time) error
	FailedAttemptsSince(ctx context.Context, userID int64, since time.Time) (int, error)
}

// Members — операции над учениками, нужные админке.
type Members interface {
	Get(ctx context.Context, userID int64) (*members.User, error)
	SetBanned(ctx context.Context, userID int64, banned bool) error
	SetAdmin(ctx context.Context, userID int64, admin bool) error
}

// Service управляет админ-действиями.
type Service struct {
	store        SessionStore
	members      Members
	passwordHash string
	sessionTTL   time.Duration
	superAdminID int64
	clock        common.Clock
}

// NewService создаёт сервис админки. Пустой passwordHash отключает вход по паролю.
func NewService(store SessionStore, m Members, passwordHash string, sessionTTL time.Duration, superAdminID int64, clock common.Clock) *Service {
	return &Service{
		store:        store,
		members:      m,
		passwordHash: passwordHash,
		sessionTTL:   sessionTTL,
		superAdminID: superAdminID,
		clock:        clock,
	}
}

// PasswordRequired сообщает, нужен ли /login перед админ-командами.
func (s *Service) PasswordRequired() bool {
	return s.passwordHash != ""
}

// VerifyPassword проверяет пароль и открывает сессию.
// Защита от brute-force: 3 неудачные попытки = блокировка на 1 час.
func (s *Service) VerifyPassword(ctx context.Context, userID int64, password string) error {
	if !s.PasswordRequired() {
		return nil
	}

	now := s.clock()
	attempts, err := s.store.FailedAttemptsSince(ctx, userID, now.Add(-attemptWindow))
	if err != nil {
		return err
	}
	if attempts >= maxFailedAttempts {
		return common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.passwordHash)

	if err := s.store.LogAttempt(ctx, userID, match, now); err != nil {
		log.WithError(err).Error("Ошибка записи попытки входа")
	}

	if !match {
		log.WithField("user_id", userID).Warn("Неверный пароль админки")
		return common.ErrWrongPassword
	}

	token, err := generateSecureToken()
	if err != nil {
		return err
	}
	session := &Session{
		UserID:          userID,
		SessionToken:    token,
		AuthenticatedAt: now,
		ExpiresAt:       now.Add(s.sessionTTL),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return err
	}

	log.WithField("user_id", userID).Info("Вход в админку")
	return nil
}

// RequireSession проверяет, что у админа есть активная сессия.
// Без настроенного пароля сессия не нужна.
func (s *Service) RequireSession(ctx context.Context, userID int64) error {
	if !s.PasswordRequired() {
		return nil
	}

	now := s.clock()
	if _, err := s.store.ActiveSession(ctx, userID, now); err != nil {
		return err
	}
	if err := s.store.TouchSession(ctx, userID, now); err != nil {
		log.WithError(err).Warn("Не удалось обновить активность сессии")
	}
	return nil
}

// Logout закрывает сессии пользователя.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.store.DeactivateSessions(ctx, userID)
}

// Ban блокирует ученика. Администратора и суперадмина заблокировать нельзя.
func (s *Service) Ban(ctx context.Context, actorID, targetID int64) (*members.User, error) {
	target, err := s.members.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin || targetID == s.superAdminID {
		return nil, common.ErrCannotBanAdmin
	}

	if err := s.members.SetBanned(ctx, targetID, true); err != nil {
		return nil, err
	}
	target.IsBanned = true

	log.WithFields(log.Fields{
		"admin_id":  actorID,
		"target_id": targetID,
	}).Warn("Пользователь заблокирован")

	return target, nil
}

// Unban снимает блокировку.
func (s *Service) Unban(ctx context.Context, actorID, targetID int64) (*members.User, error) {
	target, err := s.members.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.members.SetBanned(ctx, targetID, false); err != nil {
		return nil, err
	}
	target.IsBanned = false

	log.WithFields(log.Fields{
		"admin_id":  actorID,
		"target_id": targetID,
	}).Info("Пользователь разблокирован")

	return target, nil
}

// Promote выдаёт (admin=true) или снимает права администратора.
// Вызывать только после проверки, что actorID — суперадмин.
func (s *Service) Promote(ctx context.Context, actorID, targetID int64, admin bool) (*members.User, error) {
	if actorID != s.superAdminID {
		return nil, common.ErrUnauthorized
	}

	target, err := s.members.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.members.SetAdmin(ctx, targetID, admin); err != nil {
		return nil, err
	}
	target.IsAdmin = admin

	log.WithFields(log.Fields{
		"admin_id":  actorID,
		"target_id": targetID,
		"is_admin":  admin,
	}).Warn("Права администратора изменены")

	return target, nil
}
