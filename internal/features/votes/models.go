// Package votes принимает голоса за решения и считает их итог.
// models.go описывает записи таблицы votes.
package votes

// Значения голоса.
const (
	Up   = 1
	Down = -1
)

// Vote — голос пользователя за решение. Пара (UserID, SolutionID) уникальна.
type Vote struct {
	UserID     int64 `db:"user_id"`
	SolutionID int64 `db:"solution_id"`
	Value      int   `db:"vote_value"`
}

// Tally — итог голосования за решение.
type Tally struct {
	Ups   int
	Downs int
}
