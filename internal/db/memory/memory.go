// Package memory — хранилище в памяти процесса (STORAGE_DRIVER=memory).
// Реализует те же интерфейсы Store, что и PostgreSQL-репозитории.
// Все операции идут под одним мьютексом, поэтому инкремент репутации и
// вставка голоса так же атомарны, как UPDATE и ON CONFLICT в БД.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/admin"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/homework"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/members"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/reports"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/votes"
)

type voteKey struct {
	userID     int64
	solutionID int64
}

// Store хранит все данные в map-ах.
type Store struct {
	mu sync.Mutex

	users     map[int64]members.User
	subjects  []homework.Subject
	homework  map[int64]homework.Homework
	solutions map[int64]homework.Solution
	media     map[int64][]homework.Media // solution_id → фото по position
	votes     map[voteKey]int
	reports   []reports.Report
	sessions  []admin.Session
	attempts  []admin.LoginAttempt

	nextID int64
	now    func() time.Time
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{
		users:     make(map[int64]members.User),
		homework:  make(map[int64]homework.Homework),
		solutions: make(map[int64]homework.Solution),
		media:     make(map[int64][]homework.Media),
		votes:     make(map[voteKey]int),
		now:       time.Now,
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// --- members.Store ---

func (s *Store) CreateUser(_ context.Context, u *members.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.UserID]; ok {
		return fmt.Errorf("user_id=%d: %w", u.UserID, common.ErrAlreadyRegistered)
	}
	stored := *u
	stored.Reputation = 0
	stored.IsBanned = false
	stored.CreatedAt = s.now()
	s.users[u.UserID] = stored
	return nil
}

func (s *Store) UserByID(_ context.Context, userID int64) (*members.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user_id=%d: %w", userID, common.ErrUserNotFound)
	}
	return &u, nil
}

func (s *Store) TopUsers(_ context.Context, limit int) ([]*members.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.sortedUsers(func(members.User) bool { return true })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ClassUsers(_ context.Context, grade int, letter string) ([]*members.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedUsers(func(u members.User) bool {
		return u.Grade == grade && u.Letter == letter
	}), nil
}

// sortedUsers: по репутации по убыванию, затем по ID.
func (s *Store) sortedUsers(keep func(members.User) bool) []*members.User {
	var out []*members.User
	for _, u := range s.users {
		if keep(u) {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Reputation != out[j].Reputation {
			return out[i].Reputation > out[j].Reputation
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func (s *Store) SetBanned(_ context.Context, userID int64, banned bool) error {
	return s.updateUser(userID, func(u *members.User) { u.IsBanned = banned })
}

func (s *Store) SetAdmin(_ context.Context, userID int64, isAdmin bool) error {
	return s.updateUser(userID, func(u *members.User) { u.IsAdmin = isAdmin })
}

func (s *Store) updateUser(userID int64, fn func(*members.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user_id=%d: %w", userID, common.ErrUserNotFound)
	}
	fn(&u)
	s.users[userID] = u
	return nil
}

// AdjustReputation меняет репутацию напрямую, минуя голоса.
// Нужен для подготовки данных в тестах.
func (s *Store) AdjustReputation(_ context.Context, userID int64, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjust(userID, delta)
}

// adjust меняет репутацию. Вызывать под s.mu.
func (s *Store) adjust(userID int64, delta int) (int, error) {
	u, ok := s.users[userID]
	if !ok {
		return 0, fmt.Errorf("user_id=%d: %w", userID, common.ErrUserNotFound)
	}
	u.Reputation += delta
	s.users[userID] = u
	return u.Reputation, nil
}

// --- homework.Store ---

func (s *Store) SeedSubjects(_ context.Context, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range names {
		if s.subjectByName(name) != nil {
			continue
		}
		s.subjects = append(s.subjects, homework.Subject{ID: s.id(), Name: name})
	}
	return nil
}

func (s *Store) Subjects(_ context.Context) ([]*homework.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*homework.Subject, 0, len(s.subjects))
	for _, sub := range s.subjects {
		sub := sub
		out = append(out, &sub)
	}
	return out, nil
}

func (s *Store) SubjectByName(_ context.Context, name string) (*homework.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := s.subjectByName(name)
	if sub == nil {
		return nil, fmt.Errorf("%q: %w", name, common.ErrSubjectNotFound)
	}
	found := *sub
	return &found, nil
}

func (s *Store) subjectByName(name string) *homework.Subject {
	for i := range s.subjects {
		if s.subjects[i].Name == name {
			return &s.subjects[i]
		}
	}
	return nil
}

func (s *Store) subjectName(id int64) string {
	for _, sub := range s.subjects {
		if sub.ID == id {
			return sub.Name
		}
	}
	return ""
}

func (s *Store) CreateHomework(_ context.Context, hw *homework.Homework) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hw.ID = s.id()
	hw.CreatedAt = s.now()
	hw.SubjectName = s.subjectName(hw.SubjectID)
	s.homework[hw.ID] = *hw
	return nil
}

func (s *Store) HomeworkByID(_ context.Context, id int64) (*homework.Homework, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hw, ok := s.homework[id]
	if !ok {
		return nil, fmt.Errorf("homework_id=%d: %w", id, common.ErrHomeworkNotFound)
	}
	return &hw, nil
}

func (s *Store) HomeworkByClass(_ context.Context, grade int, letter string, today time.Time) ([]*homework.Homework, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*homework.Homework
	for _, hw := range s.homework {
		if hw.Grade != grade || hw.Letter != letter || hw.Expired(today) {
			continue
		}
		hw := hw
		out = append(out, &hw)
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].TargetDate.Format(common.DateLayout), out[j].TargetDate.Format(common.DateLayout)
		if di != dj {
			return di < dj
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) CreateSolution(_ context.Context, sol *homework.Solution, bonus int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.homework[sol.HomeworkID]; !ok {
		return 0, fmt.Errorf("homework_id=%d: %w", sol.HomeworkID, common.ErrHomeworkNotFound)
	}
	// Проверяем автора до записи, чтобы не оставить решение без бонуса
	rep, err := s.adjust(sol.AuthorID, bonus)
	if err != nil {
		return 0, err
	}

	sol.ID = s.id()
	sol.CreatedAt = s.now()

	stored := *sol
	stored.Photos = nil
	s.solutions[sol.ID] = stored

	media := make([]homework.Media, 0, len(sol.Photos))
	for i, fileID := range sol.Photos {
		media = append(media, homework.Media{ID: s.id(), SolutionID: sol.ID, FileID: fileID, Position: i})
	}
	s.media[sol.ID] = media
	return rep, nil
}

func (s *Store) SolutionByID(_ context.Context, id int64) (*homework.Solution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sol, ok := s.solutions[id]
	if !ok {
		return nil, fmt.Errorf("solution_id=%d: %w", id, common.ErrSolutionNotFound)
	}
	sol.Photos = s.photos(id)
	return &sol, nil
}

func (s *Store) SolutionsByHomework(_ context.Context, homeworkID int64) ([]*homework.Solution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*homework.Solution
	for _, sol := range s.solutions {
		if sol.HomeworkID != homeworkID {
			continue
		}
		sol := sol
		sol.Photos = s.photos(sol.ID)
		out = append(out, &sol)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CountSolutions(_ context.Context, homeworkID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, sol := range s.solutions {
		if sol.HomeworkID == homeworkID {
			count++
		}
	}
	return count, nil
}

func (s *Store) photos(solutionID int64) []string {
	media := s.media[solutionID]
	if len(media) == 0 {
		return nil
	}
	out := make([]string, len(media))
	for i, m := range media {
		out[i] = m.FileID
	}
	return out
}

// MediaCount возвращает число сохранённых фото всех решений.
func (s *Store) MediaCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, media := range s.media {
		n += len(media)
	}
	return n
}

func (s *Store) PurgeExpired(_ context.Context, today time.Time) (homework.PurgeStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats homework.PurgeStats
	for id, hw := range s.homework {
		if !hw.Expired(today) {
			continue
		}
		for solID, sol := range s.solutions {
			if sol.HomeworkID != id {
				continue
			}
			stats.Media += int64(len(s.media[solID]))
			delete(s.media, solID)
			for key := range s.votes {
				if key.solutionID == solID {
					delete(s.votes, key)
				}
			}
			delete(s.solutions, solID)
			stats.Solutions++
		}
		delete(s.homework, id)
		stats.Homework++
	}
	return stats, nil
}

// --- votes.Store ---

func (s *Store) InsertVote(_ context.Context, v votes.Vote, authorID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := voteKey{userID: v.UserID, solutionID: v.SolutionID}
	if _, ok := s.votes[key]; ok {
		return false, nil
	}
	if _, err := s.adjust(authorID, v.Value); err != nil {
		return false, err
	}
	s.votes[key] = v.Value
	return true, nil
}

func (s *Store) Tally(_ context.Context, solutionID int64) (votes.Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t votes.Tally
	for key, value := range s.votes {
		if key.solutionID != solutionID {
			continue
		}
		switch value {
		case votes.Up:
			t.Ups++
		case votes.Down:
			t.Downs++
		}
	}
	return t, nil
}

// --- reports.Store ---

func (s *Store) CreateReport(_ context.Context, rep *reports.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep.ID = s.id()
	rep.Status = reports.StatusOpen
	rep.CreatedAt = s.now()
	s.reports = append(s.reports, *rep)
	return nil
}

// Reports возвращает копию всех жалоб.
func (s *Store) Reports() []reports.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]reports.Report(nil), s.reports...)
}

// --- admin.SessionStore ---

func (s *Store) CreateSession(_ context.Context, session *admin.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.ID = s.id()
	session.LastActivity = session.AuthenticatedAt
	session.IsActive = true
	s.sessions = append(s.sessions, *session)
	return nil
}

func (s *Store) ActiveSession(_ context.Context, userID int64, now time.Time) (*admin.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.sessions) - 1; i >= 0; i-- {
		sess := s.sessions[i]
		if sess.UserID == userID && sess.IsActive && sess.ExpiresAt.After(now) {
			return &sess, nil
		}
	}
	return nil, common.ErrNoSession
}

func (s *Store) DeactivateSessions(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sessions {
		if s.sessions[i].UserID == userID {
			s.sessions[i].IsActive = false
		}
	}
	return nil
}

func (s *Store) TouchSession(_ context.Context, userID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sessions {
		if s.sessions[i].UserID == userID && s.sessions[i].IsActive {
			s.sessions[i].LastActivity = now
		}
	}
	return nil
}

func (s *Store) LogAttempt(_ context.Context, userID int64, success bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts = append(s.attempts, admin.LoginAttempt{
		ID: s.id(), UserID: userID, AttemptTime: at, Success: success,
	})
	return nil
}

func (s *Store) FailedAttemptsSince(_ context.Context, userID int64, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, a := range s.attempts {
		if a.UserID == userID && !a.Success && !a.AttemptTime.Before(since) {
			count++
		}
	}
	return count, nil
}
