// Package votes — service.go: приём голоса и пересчёт итога.
package votes

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/homework"
)

// Store — хранилище голосов. InsertVote записывает голос и меняет
// репутацию автора на v.Value атомарно; false — пара уже голосовала,
// и тогда не меняется ничего.
type Store interface {
	InsertVote(ctx context.Context, v Vote, authorID int64) (bool, error)
	Tally(ctx context.Context, solutionID int64) (Tally, error)
}

// SolutionSource отдаёт решение, чтобы узнать его автора.
// Решение задания с прошедшим сроком считается ненайденным.
type SolutionSource interface {
	Solution(ctx context.Context, id int64) (*homework.Solution, error)
}

// Resolver принимает или отклоняет голоса.
type Resolver struct {
	store     Store
	solutions SolutionSource
}

// NewResolver создаёт сервис голосования.
func NewResolver(store Store, solutions SolutionSource) *Resolver {
	return &Resolver{store: store, solutions: solutions}
}

// CastVote записывает голос voterID за решение и меняет репутацию автора
// на value. Возвращает свежий итог.
//
// Ошибки: common.ErrSelfVote, common.ErrDuplicateVote, common.ErrInvalidVote,
// common.ErrSolutionNotFound, common.ErrHomeworkNotFound. При любой из них
// ничего не меняется.
func (r *Resolver) CastVote(ctx context.Context, voterID, solutionID int64, value int) (Tally, error) {
	if value != Up && value != Down {
		return Tally{}, fmt.Errorf("value=%d: %w", value, common.ErrInvalidVote)
	}

	sol, err := r.solutions.Solution(ctx, solutionID)
	if err != nil {
		return Tally{}, err
	}
	if sol.AuthorID == voterID {
		return Tally{}, common.ErrSelfVote
	}

	inserted, err := r.store.InsertVote(ctx, Vote{UserID: voterID, SolutionID: solutionID, Value: value}, sol.AuthorID)
	if err != nil {
		return Tally{}, err
	}
	if !inserted {
		return Tally{}, fmt.Errorf("user_id=%d solution_id=%d: %w", voterID, solutionID, common.ErrDuplicateVote)
	}

	log.WithFields(log.Fields{
		"voter_id":    voterID,
		"solution_id": solutionID,
		"author_id":   sol.AuthorID,
		"value":       value,
	}).Info("Голос принят")

	return r.store.Tally(ctx, solutionID)
}

// Counts возвращает итог голосования без изменений.
func (r *Resolver) Counts(ctx context.Context, solutionID int64) (Tally, error) {
	return r.store.Tally(ctx, solutionID)
}
