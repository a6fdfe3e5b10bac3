// internal/planparse/codec.go
package planparse

import (
	"fmt"

	"nutriplan/internal/models"
)

// Protocol selects the wire shape of the embedded plan document.
type Protocol string

const (
	// ProtocolJSON is the canonical revision: the plan is the first
	// balanced JSON object embedded in the message.
	ProtocolJSON Protocol = "json"
	// ProtocolTag is the legacy revision: the plan is a set of
	// tag-delimited blocks.
	ProtocolTag Protocol = "tag"
)

// Codec extracts the structured plan document and the optional comments
// side-channel from a raw assistant message. Both operations are pure and
// independent: comments can be extracted even when the plan is absent or
// invalid.
type Codec interface {
	Extract(raw string) Extraction
	ExtractComments(raw string) (string, bool)
}

// ForProtocol returns the codec for a declared protocol revision.
// Selection is explicit at the call site; codecs never sniff.
func ForProtocol(p Protocol) (Codec, error) {
	switch p {
	case ProtocolJSON, "":
		return jsonCodec{}, nil
	case ProtocolTag:
		return tagCodec{}, nil
	}
	return nil, fmt.Errorf("unknown plan protocol %q", p)
}

// Status is the outcome of an extraction attempt.
type Status int

const (
	// StatusFound means a plan document was located and parsed.
	StatusFound Status = iota
	// StatusNotFound means the message carries no plan document at all.
	StatusNotFound
	// StatusSyntaxError means a document was located but could not be
	// parsed (unbalanced delimiters, invalid literal).
	StatusSyntaxError
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusSyntaxError:
		return "syntax_error"
	}
	return "unknown"
}

// Extraction is the tagged result of Codec.Extract. Doc is non-nil only
// for StatusFound; Err is set only for StatusSyntaxError. Raw always
// holds the original message.
type Extraction struct {
	Status Status
	Doc    *Document
	Raw    string
	Err    string
}

// FallbackDocument builds the legacy single-meal stand-in for a message
// with no parseable structure: empty name, preparation set to the whole
// raw message, all-zero summaries. Callers that need to seed an editable
// form from an unparseable reply use this; IsFallback recognizes it.
func (e Extraction) FallbackDocument() models.MealPlanDocument {
	return models.MealPlanDocument{
		Meals: []models.Meal{{Preparation: e.Raw}},
	}
}

// IsFallback reports whether doc is the stand-in produced for raw by
// FallbackDocument rather than real parsed data.
func IsFallback(doc models.MealPlanDocument, raw string) bool {
	if len(doc.Meals) != 1 {
		return false
	}
	m := doc.Meals[0]
	return m.Name == "" && m.Preparation == raw && m.Summary == (models.MealSummary{})
}

// Document is the wire-level plan as extracted, before validation and
// normalization. Pointer fields preserve the distinction between an
// absent field and a zero value, which the validator needs.
type Document struct {
	DailySummary *DailySummary `json:"daily_summary"`
	Meals        []Meal        `json:"meals"`
}

type DailySummary struct {
	Kcal     *float64 `json:"kcal"`
	Proteins *float64 `json:"proteins"`
	Fats     *float64 `json:"fats"`
	Carbs    *float64 `json:"carbs"`
}

type Meal struct {
	Name        *string      `json:"name"`
	Ingredients *string      `json:"ingredients"`
	Preparation *string      `json:"preparation"`
	Summary     *MealSummary `json:"summary"`
}

// MealSummary carries the external field names; Normalize maps them to
// the internal short names.
type MealSummary struct {
	Kcal    *float64 `json:"kcal"`
	Protein *float64 `json:"protein"`
	Fat     *float64 `json:"fat"`
	Carb    *float64 `json:"carb"`
}
