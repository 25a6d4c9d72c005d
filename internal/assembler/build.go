// Package assembler — build.go собирает записи из полей диалога.
package assembler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alisher2011ali-netizen/School-Hub/internal/common"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/homework"
	"github.com/alisher2011ali-netizen/School-Hub/internal/features/members"
)

// Ключи полей диалога.
const (
	FieldGrade      = "grade"
	FieldLetter     = "letter"
	FieldFirstName  = "first_name"
	FieldLastName   = "last_name"
	FieldSubject    = "subject"
	FieldText       = "text"
	FieldPhoto      = "photo_id"
	FieldDate       = "target_date"
	FieldAnonymous  = "anonymous"
	FieldHomeworkID = "homework_id"
	FieldTargetID   = "target_id"
	FieldStatus     = "status"
	FieldReportType = "report_type"
	FieldContentID  = "content_id"
	FieldReason     = "reason"
	FieldPassword   = "password"
)

// Флаги в полях хранятся строками.
const (
	True  = "1"
	False = "0"
)

// FormatBool кодирует флаг для поля.
func FormatBool(b bool) string {
	if b {
		return True
	}
	return False
}

// User собирает профиль из полей регистрации.
func User(userID int64, fields map[string]string) (*members.User, error) {
	grade, err := strconv.Atoi(fields[FieldGrade])
	if err != nil || grade < minGrade || grade > maxGrade {
		return nil, common.ErrInvalidGrade
	}
	letter := fields[FieldLetter]
	if letter == "" {
		return nil, common.ErrInvalidLetter
	}
	if fields[FieldFirstName] == "" || fields[FieldLastName] == "" {
		return nil, common.ErrNameTooShort
	}

	return &members.User{
		UserID:    userID,
		FirstName: fields[FieldFirstName],
		LastName:  fields[FieldLastName],
		Grade:     grade,
		Letter:    letter,
	}, nil
}

// Homework собирает задание. Предмет остаётся именем: ID и класс
// проставляет homework.Service.
func Homework(fields map[string]string) (*homework.Homework, error) {
	if fields[FieldText] == "" {
		return nil, common.ErrEmptyText
	}
	date, err := time.Parse(common.DateLayout, fields[FieldDate])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidDate, err)
	}

	return &homework.Homework{
		SubjectName: fields[FieldSubject],
		Text:        fields[FieldText],
		PhotoID:     fields[FieldPhoto],
		TargetDate:  date,
		IsAnonymous: fields[FieldAnonymous] == True,
	}, nil
}

// Solution собирает решение. Фото сохраняются в порядке отправки.
func Solution(authorID int64, fields map[string]string, photos []string) (*homework.Solution, error) {
	homeworkID, err := ID(fields[FieldHomeworkID])
	if err != nil {
		return nil, err
	}
	if fields[FieldText] == "" && len(photos) == 0 {
		return nil, common.ErrEmptySolution
	}

	return &homework.Solution{
		HomeworkID:  homeworkID,
		AuthorID:    authorID,
		Text:        fields[FieldText],
		IsAnonymous: fields[FieldAnonymous] == True,
		Photos:      append([]string(nil), photos...),
	}, nil
}

// digitsPattern — только цифры, без знака и пробелов внутри.
var digitsPattern = regexp.MustCompile(`^\d+$`)

// ID разбирает положительный числовой ID.
func ID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if !digitsPattern.MatchString(s) {
		return 0, common.ErrNotNumeric
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrNotNumeric
	}
	return id, nil
}
