// Package i18n provides the localized strings of the reminder UI.
// English keys are registered in a golang.org/x/text message catalog with
// Russian translations; unknown locales fall back to English.
package i18n

import (
	"fmt"

	"github.com/giygas/medreminder/medicine"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// UI strings that are not validation messages
const (
	MsgDosagePlaceholder = "Not specified"
	MsgAdded             = "Medicine added!"
	MsgDeleted           = "Medicine \"%s\" deleted!"
	MsgDeleteCancelled   = "Deletion cancelled"
	MsgConfirmDelete     = "Delete medicine \"%s\"?"
	MsgEmptyTitle        = "No medicines added yet"
	MsgEmptyHint         = "Use the button above to add one"
	MsgCourseComplete    = "Course complete"
	MsgDaysRemaining     = "%d days remaining"
	MsgCourseDays        = "Course: %d days"
	MsgStart             = "Start: %s"
	MsgUpcoming          = "In %d minutes: %s at %s"
	MsgDue               = "Time to take: %s"
	MsgAddMedicine       = "Add medicine"
	MsgName              = "Name"
	MsgDosage            = "Dosage"
	MsgStartDate         = "Start date"
	MsgDuration          = "Duration (days)"
	MsgDoseTimes         = "Dose times"
	MsgSave              = "Save"
	MsgCancel            = "Cancel"
	MsgDelete            = "Delete"
	MsgTitle             = "Medicine reminder"
)

var supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(supported)

var russian = map[string]string{
	medicine.MsgTimeRequired:    "Заполните хотя бы одно время приёма",
	medicine.MsgNameRequired:    "Введите название лекарства",
	medicine.MsgStartRequired:   "Выберите дату начала курса",
	medicine.MsgDurationInvalid: "Введите корректную продолжительность курса (минимум 1 день)",
	medicine.MsgTimeFormat:      "Время приёма должно быть в формате ЧЧ:ММ",
	medicine.MsgTooManyTimes:    "Можно указать не более 4 времён приёма",
	medicine.MsgStartDateFormat: "Дата начала должна быть в формате ГГГГ-ММ-ДД",

	MsgDosagePlaceholder: "Не указана",
	MsgAdded:             "Лекарство добавлено!",
	MsgDeleted:           "Лекарство \"%s\" удалено!",
	MsgDeleteCancelled:   "Удаление отменено",
	MsgConfirmDelete:     "Удалить лекарство \"%s\"?",
	MsgEmptyTitle:        "Нет добавленных лекарств",
	MsgEmptyHint:         "Нажмите кнопку выше, чтобы добавить",
	MsgCourseComplete:    "Курс завершён",
	MsgDaysRemaining:     "Осталось %d дн.",
	MsgCourseDays:        "Курс: %d дней",
	MsgStart:             "Начало: %s",
	MsgUpcoming:          "Через %d минут приём: %s в %s",
	MsgDue:               "Время принять: %s",
	MsgAddMedicine:       "Добавить лекарство",
	MsgName:              "Название",
	MsgDosage:            "Дозировка",
	MsgStartDate:         "Дата начала",
	MsgDuration:          "Продолжительность (дней)",
	MsgDoseTimes:         "Время приёма",
	MsgSave:              "Сохранить",
	MsgCancel:            "Отмена",
	MsgDelete:            "Удалить",
	MsgTitle:             "Напоминание о лекарствах",
}

func init() {
	for key, text := range russian {
		if err := message.SetString(language.Russian, key, text); err != nil {
			panic(fmt.Sprintf("i18n: register %q: %v", key, err))
		}
	}

	mustSet(language.English, MsgDaysRemaining, plural.Selectf(1, "%d",
		plural.One, "1 day remaining",
		plural.Other, "%d days remaining"))
	mustSet(language.English, MsgCourseDays, plural.Selectf(1, "%d",
		plural.One, "Course: 1 day",
		plural.Other, "Course: %d days"))
}

func mustSet(tag language.Tag, key string, msg catalog.Message) {
	if err := message.Set(tag, key, msg); err != nil {
		panic(fmt.Sprintf("i18n: register %q: %v", key, err))
	}
}

// Translator renders catalog keys in one locale
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a translator for the closest supported match of locale
func New(locale string) (*Translator, error) {
	requested, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	_, index, _ := matcher.Match(requested)
	tag := supported[index]

	return &Translator{tag: tag, printer: message.NewPrinter(tag)}, nil
}

// T formats a catalog key with args in the translator's locale
func (t *Translator) T(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}

// Lang returns the BCP 47 tag of the translator, for the html lang attribute
func (t *Translator) Lang() string {
	return t.tag.String()
}

// Supported lists the locales with a bundled catalog
func Supported() []string {
	out := make([]string, len(supported))
	for i, tag := range supported {
		out[i] = tag.String()
	}
	return out
}
