// Package reports хранит жалобы на задания и решения.
// models.go описывает записи таблицы reports.
package reports

import "time"

// Type — на что жалуются.
type Type string

const (
	TypeHomework Type = "homework"
	TypeSolution Type = "solution"
)

// StatusOpen — статус новой жалобы. Разбирают жалобы вне бота.
const StatusOpen = "open"

// Report — жалоба ученика.
type Report struct {
	ID         int64     `db:"id"`
	ReporterID int64     `db:"reporter_id"`
	TargetID   int64     `db:"target_id"` // автор задания/решения
	Type       Type      `db:"type"`
	ContentID  int64     `db:"content_id"` // ID задания или решения
	Reason     string    `db:"reason"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
}
