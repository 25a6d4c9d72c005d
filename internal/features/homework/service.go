// Package homework — service.go содержит бизнес-логику заданий и решений.
package homework

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/members"
)

// Store — хранилище заданий. Реализации: Repository и memory.Store.
type Store interface {
	SeedSubjects(ctx context.Context, names []string) error
	Subjects(ctx context.Context) ([]*Subject, error)
	SubjectByName(ctx context.Context, name string) (*Subject, error)

	CreateHomework(ctx context.Context, hw *Homework) error
	HomeworkByID(ctx context.Context, id int64) (*Homework, error)
	HomeworkByClass(ctx context.Context, grade int, letter string, today time.Time) ([]*Homework, error)

	// CreateSolution сохраняет решение с фото и начисляет автору bonus
	// атомарно. Возвращает новую репутацию автора.
	CreateSolution(ctx context.Context, sol *Solution, bonus int) (int, error)
	SolutionByID(ctx context.Context, id int64) (*Solution, error)
	SolutionsByHomework(ctx context.Context, homeworkID int64) ([]*Solution, error)
	CountSolutions(ctx context.Context, homeworkID int64) (int, error)

	PurgeExpired(ctx context.Context, today time.Time) (PurgeStats, error)
}

// Service управляет заданиями и решениями.
type Service struct {
	store         Store
	clock         common.Clock
	solutionBonus int
}

// NewService создаёт сервис заданий. solutionBonus — сколько баллов
// получает автор за каждое опубликованное решение.
func NewService(store Store, clock common.Clock, solutionBonus int) *Service {
	return &Service{
		store:         store,
		clock:         clock,
		solutionBonus: solutionBonus,
	}
}

// Seed заполняет каталог предметов.
func (s *Service) Seed(ctx context.Context) error {
	return s.store.SeedSubjects(ctx, SubjectCatalog)
}

// Subjects возвращает каталог предметов.
func (s *Service) Subjects(ctx context.Context) ([]*Subject, error) {
	return s.store.Subjects(ctx)
}

// AddHomework сохраняет задание от имени автора.
// В hw должны быть заполнены SubjectName, Text, TargetDate, IsAnonymous
// и опционально PhotoID. Класс и автор берутся из профиля.
func (s *Service) AddHomework(ctx context.Context, author *members.User, hw *Homework) error {
	subject, err := s.store.SubjectByName(ctx, hw.SubjectName)
	if err != nil {
		return err
	}

	hw.SubjectID = subject.ID
	hw.SubjectName = subject.Name
	hw.AuthorID = author.UserID
	hw.Grade = author.Grade
	hw.Letter = author.Letter

	if err := s.store.CreateHomework(ctx, hw); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"homework_id": hw.ID,
		"author_id":   hw.AuthorID,
		"class":       members.FormatClass(hw.Grade, hw.Letter),
		"subject":     hw.SubjectName,
		"target_date": hw.TargetDate.Format(common.DateLayout),
	}).Info("Задание добавлено")

	return nil
}

// AddSolution сохраняет решение и начисляет автору бонус.
// Возвращает новую репутацию автора.
func (s *Service) AddSolution(ctx context.Context, sol *Solution) (int, error) {
	if sol.Text == "" && len(sol.Photos) == 0 {
		return 0, common.ErrEmptySolution
	}

	// Срок задания мог пройти, пока автор писал решение
	if _, err := s.Homework(ctx, sol.HomeworkID); err != nil {
		return 0, err
	}

	reputation, err := s.store.CreateSolution(ctx, sol, s.solutionBonus)
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"solution_id": sol.ID,
		"homework_id": sol.HomeworkID,
		"author_id":   sol.AuthorID,
		"photos":      len(sol.Photos),
	}).Info("Решение добавлено")

	return reputation, nil
}

// ClassHomework возвращает актуальные задания класса ученика.
func (s *Service) ClassHomework(ctx context.Context, u *members.User) ([]*Homework, error) {
	return s.store.HomeworkByClass(ctx, u.Grade, u.Letter, s.clock.Today())
}

// Homework возвращает задание по ID. Задание с прошедшим сроком,
// которое ещё не удалила очистка, считается ненайденным.
func (s *Service) Homework(ctx context.Context, id int64) (*Homework, error) {
	hw, err := s.store.HomeworkByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if hw.Expired(s.clock.Today()) {
		return nil, fmt.Errorf("homework_id=%d: %w", id, common.ErrHomeworkNotFound)
	}
	return hw, nil
}

// Solution возвращает решение по ID. Решение задания с прошедшим сроком
// недоступно так же, как само задание.
func (s *Service) Solution(ctx context.Context, id int64) (*Solution, error) {
	sol, err := s.store.SolutionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.Homework(ctx, sol.HomeworkID); err != nil {
		return nil, err
	}
	return sol, nil
}

// Solutions возвращает решения задания.
func (s *Service) Solutions(ctx context.Context, homeworkID int64) ([]*Solution, error) {
	if _, err := s.Homework(ctx, homeworkID); err != nil {
		return nil, err
	}
	return s.store.SolutionsByHomework(ctx, homeworkID)
}

// CountSolutions возвращает число решений задания.
func (s *Service) CountSolutions(ctx context.Context, homeworkID int64) (int, error) {
	return s.store.CountSolutions(ctx, homeworkID)
}

// Purge удаляет задания с прошедшим сроком.
func (s *Service) Purge(ctx context.Context) (PurgeStats, error) {
	today := s.clock.Today()
	stats, err := s.store.PurgeExpired(ctx, today)
	if err != nil {
		return stats, fmt.Errorf("ошибка очистки заданий: %w", err)
	}

	log.WithFields(log.Fields{
		"today":     today.Format(common.DateLayout),
		"homework":  stats.Homework,
		"solutions": stats.Solutions,
		"media":     stats.Media,
	}).Info("Очистка устаревших заданий завершена")

	return stats, nil
}
