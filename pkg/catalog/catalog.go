// Package catalog holds the fixed intake questionnaire and its translations.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultLanguage is the fallback for any text missing in the requested language.
const DefaultLanguage = "en"

var (
	// ErrQuestionNotFound is returned for an index outside [1, Total()].
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUnsupportedLanguage is returned for a language code outside the catalog.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// Language is a selectable intake language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Question is one intake prompt and the intake field its answer feeds.
type Question struct {
	Number       int
	Field        string
	Description  string
	Translations map[string]string
}

var languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "es", Name: "Español"},
	{Code: "pt-BR", Name: "Português (Brasil)"},
	{Code: "it", Name: "Italiano"},
}

// Languages returns the supported languages in display order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// Supported reports whether code is a catalog language.
func Supported(code string) bool {
	for _, l := range languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// ResolveLanguage maps a patient selection to a language code.
// Codes match case-insensitively; the display name and its position in
// the list ("1".."4") are accepted as well.
func ResolveLanguage(input string) (string, error) {
	in := strings.TrimSpace(input)
	for i, l := range languages {
		if strings.EqualFold(in, l.Code) || strings.EqualFold(in, l.Name) || in == fmt.Sprint(i+1) {
			return l.Code, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, input)
}

// LanguageName returns the English name of the language, used in model prompts.
func LanguageName(code string) string {
	switch code {
	case "es":
		return "Spanish"
	case "pt-BR":
		return "Portuguese (Brazil)"
	case "it":
		return "Italian"
	default:
		return "English"
	}
}

// Total returns the number of intake questions.
func Total() int { return len(questions) }

// get returns the question with the given 1-based number.
func get(index int) (Question, error) {
	if index < 1 || index > len(questions) {
		return Question{}, fmt.Errorf("%w: %d", ErrQuestionNotFound, index)
	}
	return questions[index-1], nil
}

// QuestionText returns question index in the given language.
func QuestionText(index int, lang string) (string, error) {
	q, err := get(index)
	if err != nil {
		return "", err
	}
	text, ok := q.Translations[lang]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return text, nil
}

// FirstQuestionText returns the opening question in the given language.
func FirstQuestionText(lang string) (string, error) {
	return QuestionText(1, lang)
}

// TextOrDefault returns question index in lang, falling back to the default
// language. It returns an empty string only for an out-of-range index.
func TextOrDefault(index int, lang string) string {
	text, err := QuestionText(index, lang)
	if errors.Is(err, ErrUnsupportedLanguage) {
		text, _ = QuestionText(index, DefaultLanguage)
	}
	return text
}

// Field returns the intake field fed by question index.
func Field(index int) (string, error) {
	q, err := get(index)
	if err != nil {
		return "", err
	}
	return q.Field, nil
}

// Welcome returns the greeting shown when a session starts.
func Welcome(lang string) string {
	return lookup(welcome, lang)
}

// LanguagePrompt returns the language selection prompt.
func LanguagePrompt(lang string) string {
	return lookup(languagePrompt, lang)
}

func lookup(m map[string]string, lang string) string {
	if v, ok := m[lang]; ok {
		return v
	}
	return m[DefaultLanguage]
}
