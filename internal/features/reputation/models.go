// Package reputation ведёт репутацию учеников и вычисляет ранг.
// models.go описывает ранги.
package reputation

// Rank — производный от репутации ранг. В БД не хранится.
type Rank int

const (
	RankNovice Rank = iota
	RankHelper
	RankExpert
	RankLegend
)

// Пороги рангов (включительно).
const (
	helperThreshold = 50
	expertThreshold = 150
	legendThreshold = 300
)

// RankOf вычисляет ранг по текущей репутации.
// Отрицательная репутация — тоже «Новичок».
func RankOf(reputation int) Rank {
	switch {
	case reputation >= legendThreshold:
		return RankLegend
	case reputation >= expertThreshold:
		return RankExpert
	case reputation >= helperThreshold:
		return RankHelper
	default:
		return RankNovice
	}
}

// Title возвращает название ранга для профиля.
func (r Rank) Title() string {
	switch r {
	case RankLegend:
		return "🏆 Легенда"
	case RankExpert:
		return "🎓 Эксперт"
	case RankHelper:
		return "🤝 Помощник"
	default:
		return "🌱 Новичок"
	}
}
