// Package homework — catalog.go: каталог предметов, который засевается при старте.
package homework

// SubjectCatalog — все предметы школы в порядке показа на клавиатуре.
var SubjectCatalog = []string{
	"Алгебра",
	"Геометрия",
	"Вероятность и статистика",
	"Информатика",
	"Программирование",
	"Физика",
	"Русский язык",
	"Литература",
	"История",
	"Обществознание",
	"Английский язык",
	"Химия",
	"Биология",
	"География",
	"Физкультура",
	"ОБЗиР",
	"Искусство",
}
