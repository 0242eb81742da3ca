package catalog_test

import (
	"testing"

	"github.com/aretw0/triage/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_EveryQuestionTranslated(t *testing.T) {
	require.Equal(t, 14, catalog.Total())

	for i := 1; i <= catalog.Total(); i++ {
		for _, l := range catalog.Languages() {
			text, err := catalog.QuestionText(i, l.Code)
			require.NoError(t, err, "question %d in %s", i, l.Code)
			assert.NotEmpty(t, text)
		}
		field, err := catalog.Field(i)
		require.NoError(t, err)
		assert.NotEmpty(t, field)
	}
}

func TestQuestionText_Errors(t *testing.T) {
	_, err := catalog.QuestionText(0, "en")
	assert.ErrorIs(t, err, catalog.ErrQuestionNotFound)

	_, err = catalog.QuestionText(catalog.Total()+1, "en")
	assert.ErrorIs(t, err, catalog.ErrQuestionNotFound)

	_, err = catalog.QuestionText(1, "de")
	assert.ErrorIs(t, err, catalog.ErrUnsupportedLanguage)
}

func TestTextOrDefault_FallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "What brings you in today?", catalog.TextOrDefault(6, "de"))
	assert.Equal(t, "¿Qué le trae hoy?", catalog.TextOrDefault(6, "es"))
	assert.Empty(t, catalog.TextOrDefault(99, "en"))
}

func TestFirstQuestionText(t *testing.T) {
	text, err := catalog.FirstQuestionText("it")
	require.NoError(t, err)
	assert.Equal(t, "Qual è il suo nome completo?", text)
}

func TestResolveLanguage(t *testing.T) {
	tests := map[string]string{
		"en":       "en",
		"PT-br":    "pt-BR",
		" es ":     "es",
		"Italiano": "it",
		"2":        "es",
	}
	for in, want := range tests {
		got, err := catalog.ResolveLanguage(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := catalog.ResolveLanguage("klingon")
	assert.ErrorIs(t, err, catalog.ErrUnsupportedLanguage)
}

func TestWelcomeAndPrompt(t *testing.T) {
	assert.Contains(t, catalog.Welcome("xx"), "Welcome to Triage AI")
	assert.Equal(t, "Por favor, selecione seu idioma preferido:", catalog.LanguagePrompt("pt-BR"))
}
