package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhm-kanzlei/posteingang/constants"
)

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestNormalizeAndSanitizeJSON_RenamesGermanSynonyms(t *testing.T) {
	raw := []byte(`{"aktenzeichen":"151/25 M","mandant":"Schulz","gegner":"HUK","absendertyp":"Versicherung"}`)

	out, dropped, err := NormalizeAndSanitizeJSON(raw, nil)
	require.NoError(t, err)

	m := decode(t, out)
	assert.Equal(t, "151/25 M", m["internal_case_number"])
	assert.Equal(t, "Schulz", m["client"])
	assert.Equal(t, "HUK", m["opponent"])
	assert.Equal(t, "Versicherung", m["sender_type"])
	assert.NotEmpty(t, dropped)
}

func TestNormalizeAndSanitizeJSON_ReformatsGermanDate(t *testing.T) {
	raw := []byte(`{"deadline_date":"12.09.2026"}`)

	out, _, err := NormalizeAndSanitizeJSON(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-12", decode(t, out)["deadline_date"])

	raw = []byte(`{"deadline_date":"1.9.2026"}`)
	out, _, err = NormalizeAndSanitizeJSON(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", decode(t, out)["deadline_date"])
}

func TestNormalizeAndSanitizeJSON_DropsNoise(t *testing.T) {
	raw := []byte(`{"client":null,"opponent":"  ","deadline_date":"demnächst","reasoning":"because","keywords":"Mahnung, Klage"}`)

	out, dropped, err := NormalizeAndSanitizeJSON(raw, nil)
	require.NoError(t, err)

	m := decode(t, out)
	assert.NotContains(t, m, "client")
	assert.NotContains(t, m, "opponent")
	assert.NotContains(t, m, "deadline_date")
	assert.NotContains(t, m, "reasoning")
	assert.Equal(t, []any{"Mahnung", "Klage"}, m["keywords"])
	assert.NotEmpty(t, dropped)
}

func TestSanitizeOptionalFields(t *testing.T) {
	raw := []byte(`{"internal_case_number":"nicht erkennbar","sender_type":"Amtsgericht","deadline_date":"12.09.2026","confidence":"0.8"}`)

	out, dropped, err := SanitizeOptionalFields(raw)
	require.NoError(t, err)

	m := decode(t, out)
	assert.NotContains(t, m, "internal_case_number")
	assert.Equal(t, "Gericht", m["sender_type"])
	assert.Equal(t, "2026-09-12", m["deadline_date"])
	assert.Equal(t, 0.8, m["confidence"])
	assert.Contains(t, dropped, "internal_case_number")
}

func TestSchemaRoundTrip(t *testing.T) {
	schema := BuildDocumentJSONSchema(constants.SenderTypesAsStrings())

	valid := []byte(`{"internal_case_number":"151/25 M","sender_type":"Gericht","deadline_date":"2026-09-12","keywords":["Mahnung"]}`)
	assert.NoError(t, ValidateJSONAgainstSchema(schema, valid))

	// Empty extraction is valid: every field is optional.
	assert.NoError(t, ValidateJSONAgainstSchema(schema, []byte(`{}`)))

	badDate := []byte(`{"deadline_date":"12.09.2026"}`)
	assert.Error(t, ValidateJSONAgainstSchema(schema, badDate))

	badType := []byte(`{"sender_type":"Postbote"}`)
	assert.Error(t, ValidateJSONAgainstSchema(schema, badType))

	unknownKey := []byte(`{"reasoning":"..."}`)
	assert.Error(t, ValidateJSONAgainstSchema(schema, unknownKey))
}

func TestFallbackExtractor(t *testing.T) {
	f := NewFallbackExtractor(nil)

	text := "Amtsgericht Flensburg\nIn der Sache Schulz ./. HUK\n" +
		"wir setzen Ihnen eine Frist zur Stellungnahme bis zum 12.09.2026."
	fields, _, err := f.ExtractFields(t.Context(), ExtractRequest{
		DocumentText:   text,
		CaseNumberHint: "151/25",
	})
	require.NoError(t, err)

	assert.Equal(t, "Gericht", fields.SenderType)
	assert.Equal(t, "2026-09-12", fields.DeadlineDate)
	assert.Contains(t, fields.DeadlineDescription, "Frist")
	assert.Equal(t, "151/25", fields.InternalCaseNumber)
}

func TestFallbackExtractor_NothingFound(t *testing.T) {
	f := NewFallbackExtractor(nil)

	fields, _, err := f.ExtractFields(t.Context(), ExtractRequest{DocumentText: "Werbung"})
	require.NoError(t, err)
	assert.Empty(t, fields.SenderType)
	assert.Empty(t, fields.DeadlineDate)
}
