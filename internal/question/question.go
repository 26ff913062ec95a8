package question

import "encoding/json"

// Difficulty levels after normalization.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// OptionKeys lists the four option labels in canonical order.
var OptionKeys = []string{"A", "B", "C", "D"}

// Options maps option labels (A-D) to option text. Generation services
// sometimes return options as a plain array instead of a labeled object,
// so decoding accepts both forms; an array of exactly four entries is
// labeled A-D in order, anything else decodes to an invalid map that the
// validator rejects.
type Options map[string]string

func (o *Options) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err == nil {
		*o = m
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) == 4 {
			*o = Options{"A": list[0], "B": list[1], "C": list[2], "D": list[3]}
		} else {
			*o = Options{}
		}
		return nil
	}
	// Wrong shape entirely. Leave nil so validation drops the item instead
	// of failing the whole response parse.
	*o = nil
	return nil
}

// HasAllKeys reports whether exactly the keys A-D are present.
func (o Options) HasAllKeys() bool {
	if len(o) != 4 {
		return false
	}
	for _, k := range OptionKeys {
		if _, ok := o[k]; !ok {
			return false
		}
	}
	return true
}

// Values returns option texts in A-D order.
func (o Options) Values() []string {
	vals := make([]string, 0, len(OptionKeys))
	for _, k := range OptionKeys {
		vals = append(vals, o[k])
	}
	return vals
}

// Breakdown holds the per-criterion quality sub-scores.
type Breakdown struct {
	Clarity     float64 `json:"clarity"`
	Options     float64 `json:"balanced_options"`
	Answer      float64 `json:"valid_answer"`
	Explanation float64 `json:"explanation_quality"`
	Metadata    float64 `json:"metadata_quality"`
}

// Item is one multiple-choice question record. Raw items come straight
// from the generation service and are untrusted until validated;
// QualityScore and ScoreBreakdown are attached by the scorer afterward.
type Item struct {
	ID          string  `json:"id,omitempty"`
	Question    string  `json:"question"`
	Options     Options `json:"options"`
	Answer      string  `json:"answer"`
	Category    string  `json:"category"`
	Difficulty  string  `json:"difficulty"`
	Explanation string  `json:"explanation"`

	QualityScore   *float64   `json:"quality_score,omitempty"`
	ScoreBreakdown *Breakdown `json:"score_breakdown,omitempty"`
}
