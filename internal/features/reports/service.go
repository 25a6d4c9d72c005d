// Package reports — service.go создаёт жалобы и определяет их адресата.
package reports

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/homework"
)

// Длина причины жалобы.
const maxReasonLength = 500

// Store — хранилище жалоб.
type Store interface {
	CreateReport(ctx context.Context, rep *Report) error
}

// ContentSource отдаёт задания и решения, чтобы узнать автора.
type ContentSource interface {
	Homework(ctx context.Context, id int64) (*homework.Homework, error)
	Solution(ctx context.Context, id int64) (*homework.Solution, error)
}

// Service принимает жалобы.
type Service struct {
	store   Store
	content ContentSource
}

// NewService создаёт сервис жалоб.
func NewService(store Store, content ContentSource) *Service {
	return &Service{store: store, content: content}
}

// Author возвращает автора задания или решения.
// Нужен до ввода причины, чтобы сразу сообщить о NotFound.
func (s *Service) Author(ctx context.Context, typ Type, contentID int64) (int64, error) {
	switch typ {
	case TypeHomework:
		hw, err := s.content.Homework(ctx, contentID)
		if err != nil {
			return 0, err
		}
		return hw.AuthorID, nil
	case TypeSolution:
		sol, err := s.content.Solution(ctx, contentID)
		if err != nil {
			return 0, err
		}
		return sol.AuthorID, nil
	default:
		return 0, fmt.Errorf("неизвестный тип жалобы %q", typ)
	}
}

// File сохраняет жалобу reporterID на контент.
func (s *Service) File(ctx context.Context, reporterID int64, typ Type, contentID int64, reason string) (*Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, common.ErrEmptyText
	}

	targetID, err := s.Author(ctx, typ, contentID)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		ReporterID: reporterID,
		TargetID:   targetID,
		Type:       typ,
		ContentID:  contentID,
		Reason:     common.Truncate(reason, maxReasonLength),
	}
	if err := s.store.CreateReport(ctx, rep); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"report_id":   rep.ID,
		"reporter_id": reporterID,
		"target_id":   targetID,
		"type":        typ,
		"content_id":  contentID,
	}).Warn("Новая жалоба")

	return rep, nil
}
