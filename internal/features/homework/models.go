// Package homework управляет домашними заданиями и решениями к ним.
// models.go описывает записи таблиц subjects, homework, solutions и media.
package homework

import (
	"time"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
)

// Subject — предмет из фиксированного каталога.
type Subject struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Homework — домашнее задание класса.
// Класс (Grade, Letter) копируется из профиля автора при создании
// и дальше не меняется.
type Homework struct {
	ID          int64     `db:"id"`
	SubjectID   int64     `db:"subject_id"`
	SubjectName string    `db:"subject_name"` // из JOIN, не колонка
	Grade       int       `db:"grade"`
	Letter      string    `db:"letter"`
	Text        string    `db:"text"`
	PhotoID     string    `db:"photo_id"` // file_id фото или пусто
	AuthorID    int64     `db:"author_id"`
	TargetDate  time.Time `db:"target_date"` // только дата
	IsAnonymous bool      `db:"is_anonymous"`
	CreatedAt   time.Time `db:"created_at"`
}

// Expired сообщает, что срок задания уже прошёл.
// Сравниваются только даты: из БД дата приходит в UTC, а today в поясе школы.
func (h *Homework) Expired(today time.Time) bool {
	return h.TargetDate.Format(common.DateLayout) < today.Format(common.DateLayout)
}

// Solution — решение задания. Фото хранятся отдельными записями media
// в порядке отправки.
type Solution struct {
	ID          int64     `db:"id"`
	HomeworkID  int64     `db:"homework_id"`
	AuthorID    int64     `db:"author_id"`
	Text        string    `db:"text"`
	IsAnonymous bool      `db:"is_anonymous"`
	CreatedAt   time.Time `db:"created_at"`
	Photos      []string  // file_id фото из media, по position
}

// Media — одно фото решения.
type Media struct {
	ID         int64  `db:"id"`
	SolutionID int64  `db:"solution_id"`
	FileID     string `db:"file_id"`
	Position   int    `db:"position"`
}

// PurgeStats — итог одного прохода очистки.
type PurgeStats struct {
	Homework  int64
	Solutions int64
	Media     int64
}
