package pipeline

import (
	"errors"
	"testing"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{"bare", `{"color":"RED"}`, map[string]any{"color": "RED"}},
		{"fenced", "```json\n{\"color\": \"BLUE\"}\n```", map[string]any{"color": "BLUE"}},
		{"prose around", "Sure! Here it is: {\"a\": 1} Hope this helps {\"b\": 2}", map[string]any{"a": float64(1)}},
		{"braces in strings", `{"note": "use {curly} braces \"quoted}\"", "n": {"x": true}}`, map[string]any{
			"note": `use {curly} braces "quoted}"`,
			"n":    map[string]any{"x": true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_Failures(t *testing.T) {
	_, err := ExtractJSON("I cannot help with that.")
	assert.ErrorIs(t, err, errNoJSONObject)

	_, err = ExtractJSON(`{"color": "RED"`)
	assert.ErrorIs(t, err, errUnbalancedJSON)

	_, err = ExtractJSON(`{"color": RED}`)
	assert.Error(t, err)
}

func TestDecodeStage_Classification(t *testing.T) {
	var c domain.Classification
	err := decodeStage(domain.StageClassifying, `{"color": " yellow ", "reasoning": "fever", "risk_factors": null}`, classificationSchema, &c)
	require.NoError(t, err)
	assert.Equal(t, domain.Severity("yellow"), c.Level, "trimmed, normalized later")
	assert.Equal(t, "fever", c.Reasoning)
	assert.Nil(t, c.RiskFactors)
}

func TestDecodeStage_RejectsUnknownLevel(t *testing.T) {
	raw := `{"color": "ORANGE", "reasoning": "?"}`
	var c domain.Classification
	err := decodeStage(domain.StageClassifying, raw, classificationSchema, &c)

	var se *domain.StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, domain.FailureParse, se.Kind)
	assert.Equal(t, domain.StageClassifying, se.Stage)
	assert.Equal(t, raw, se.Raw)
}

func TestDecodeStage_IntakePainScale(t *testing.T) {
	base := `"patient_name": "A", "date_of_birth": "2000-01-01", "chief_complaint": "cough", "onset": "today"`

	var in domain.StructuredIntake
	require.NoError(t, decodeStage(domain.StageExtracting, `{`+base+`, "pain_scale": "4"}`, extractionSchema, &in))
	require.NotNil(t, in.PainScale)
	assert.Equal(t, 4, *in.PainScale)

	var none domain.StructuredIntake
	require.NoError(t, decodeStage(domain.StageExtracting, `{`+base+`, "pain_scale": null}`, extractionSchema, &none))
	assert.Nil(t, none.PainScale)

	var bad domain.StructuredIntake
	err := decodeStage(domain.StageExtracting, `{`+base+`, "pain_scale": 11}`, extractionSchema, &bad)
	assert.ErrorIs(t, err, domain.ErrStageParse)

	var missing domain.StructuredIntake
	err = decodeStage(domain.StageExtracting, `{"patient_name": "A"}`, extractionSchema, &missing)
	assert.ErrorIs(t, err, domain.ErrStageParse)
}
