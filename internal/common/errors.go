// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Текст ошибки сразу пригоден для показа пользователю: обработчики
// отправляют его через UserMessage.
package common

import "errors"

// Ошибки доступа (Moderation Gate)
var (
	// ErrNotRegistered — действие требует регистрации
	ErrNotRegistered = errors.New("ты ещё не зарегистрирован. Для регистрации напиши /start")
	// ErrBanned — пользователь заблокирован и может только читать
	ErrBanned = errors.New("ты заблокирован и можешь только просматривать задания")
	// ErrUnauthorized — команда доступна только администраторам
	ErrUnauthorized = errors.New("у тебя нет прав для этого действия")
	// ErrCannotBanAdmin — администратора нельзя заблокировать
	ErrCannotBanAdmin = errors.New("нельзя заблокировать администратора")
	// ErrAlreadyRegistered — повторная регистрация
	ErrAlreadyRegistered = errors.New("ты уже зарегистрирован")
)

// Ошибки «не найдено»
var (
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrSubjectNotFound — предмета нет в каталоге
	ErrSubjectNotFound = errors.New("такого предмета нет в списке")
	// ErrHomeworkNotFound — задание удалено или не существовало
	ErrHomeworkNotFound = errors.New("задание не найдено (возможно, срок уже прошёл)")
	// ErrSolutionNotFound — решение не найдено
	ErrSolutionNotFound = errors.New("решение не найдено")
)

// Ошибки голосования
var (
	// ErrSelfVote — голос за собственное решение
	ErrSelfVote = errors.New("нельзя голосовать за своё решение")
	// ErrDuplicateVote — повторный голос за то же решение
	ErrDuplicateVote = errors.New("ты уже голосовал за это решение")
	// ErrInvalidVote — значение голоса не +1 и не -1
	ErrInvalidVote = errors.New("некорректный голос")
)

// Ошибки валидации шагов диалога. Шаг повторяется, данные сохраняются.
var (
	ErrInvalidGrade    = errors.New("не понял класс. Напиши номер класса (например, 9) или класс целиком (например, 9А)")
	ErrInvalidLetter   = errors.New("напиши букву класса одним символом")
	ErrInvalidDate     = errors.New("неверный формат даты. Напиши дату как ДД.ММ, например 18.01")
	ErrDateInPast      = errors.New("эта дата уже прошла. Выбери сегодняшний или будущий день")
	ErrNameTooShort    = errors.New("напиши имя и фамилию через пробел")
	ErrNotNumeric      = errors.New("ID должен состоять только из цифр")
	ErrInvalidStatus   = errors.New("отправь 1 (сделать админом) или 0 (снять права)")
	ErrEmptySolution   = errors.New("добавь хотя бы текст или одно фото")
	ErrEmptyText       = errors.New("нужен текст, а не пустое сообщение")
	ErrUnexpectedInput = errors.New("выбери вариант на клавиатуре")
	ErrPhotoExpected   = errors.New("отправь фото или нажми «Пропустить фото»")
)

// Ошибки админки
var (
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrNoSession — нет активной админ-сессии
	ErrNoSession = errors.New("сначала войди в админ-панель: /login")
)

// userFacing — ошибки, текст которых можно показывать пользователю как есть.
var userFacing = []error{
	ErrNotRegistered, ErrBanned, ErrUnauthorized, ErrCannotBanAdmin, ErrAlreadyRegistered,
	ErrUserNotFound, ErrSubjectNotFound, ErrHomeworkNotFound, ErrSolutionNotFound,
	ErrSelfVote, ErrDuplicateVote, ErrInvalidVote,
	ErrInvalidGrade, ErrInvalidLetter, ErrInvalidDate, ErrDateInPast, ErrNameTooShort, ErrNotNumeric,
	ErrInvalidStatus, ErrEmptySolution, ErrEmptyText, ErrUnexpectedInput, ErrPhotoExpected,
	ErrWrongPassword, ErrTooManyAttempts, ErrNoSession,
}

// GenericFailure — текст для всех остальных ошибок (БД недоступна и т.п.).
const GenericFailure = "❌ Что-то пошло не так, попробуй позже"

// UserMessage возвращает текст для пользователя.
// Обёрнутые ошибки раскрываются до известной ошибки, внутренние детали
// (SQL, сеть) наружу не попадают.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, known := range userFacing {
		if errors.Is(err, known) {
			return "❌ " + capitalize(known.Error())
		}
	}
	return GenericFailure
}

// IsUserFacing сообщает, что ошибка ожидаемая и логировать её как сбой не нужно.
func IsUserFacing(err error) bool {
	for _, known := range userFacing {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(append([]rune{toUpperRune(r[0])}, r[1:]...))
}
