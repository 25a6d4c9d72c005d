// Package moderation проверяет права пользователя перед действием.
package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/members"
)

// Capability — требование к пользователю.
type Capability int

const (
	// Registered — есть профиль.
	Registered Capability = iota
	// NotBanned — профиль есть и не заблокирован. Нужен для всего, что
	// создаёт контент или голосует. Чтение бан не ограничивает.
	NotBanned
	// Admin — администратор или суперадмин.
	Admin
	// SuperAdmin — единственный суперадмин из конфига.
	SuperAdmin
)

// UserSource отдаёт профиль пользователя.
type UserSource interface {
	Get(ctx context.Context, userID int64) (*members.User, error)
}

// Gate проверяет права.
type Gate struct {
	users        UserSource
	superAdminID int64
}

// NewGate создаёт проверку прав.
func NewGate(users UserSource, superAdminID int64) *Gate {
	return &Gate{users: users, superAdminID: superAdminID}
}

// IsSuperAdmin сообщает, что actorID — суперадмин.
func (g *Gate) IsSuperAdmin(actorID int64) bool {
	return actorID == g.superAdminID
}

// Authorize проверяет все требования по очереди и возвращает профиль.
// Профиль может быть nil, если суперадмин не зарегистрирован, а
// Registered/NotBanned не требовались.
//
// Ошибки: common.ErrNotRegistered, common.ErrBanned, common.ErrUnauthorized.
func (g *Gate) Authorize(ctx context.Context, actorID int64, caps ...Capability) (*members.User, error) {
	user, err := g.users.Get(ctx, actorID)
	if err != nil {
		if !errors.Is(err, common.ErrUserNotFound) {
			return nil, err
		}
		user = nil
	}

	for _, c := range caps {
		switch c {
		case Registered:
			if user == nil {
				return nil, common.ErrNotRegistered
			}
		case NotBanned:
			if user == nil {
				return nil, common.ErrNotRegistered
			}
			if user.IsBanned {
				return nil, common.ErrBanned
			}
		case Admin:
			if g.IsSuperAdmin(actorID) {
				continue
			}
			if user == nil || !user.IsAdmin {
				return nil, common.ErrUnauthorized
			}
		case SuperAdmin:
			if !g.IsSuperAdmin(actorID) {
				return nil, common.ErrUnauthorized
			}
		default:
			return nil, fmt.Errorf("неизвестное требование %d", c)
		}
	}

	return user, nil
}
