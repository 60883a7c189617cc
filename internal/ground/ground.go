// Package ground is the traceability choke point: every emitted line must
// reference facts that exist, and rendering is a fixed template lookup. No
// free-form text is synthesized here.
package ground

import (
	"fmt"
	"time"

	"github.com/mbastide/calendis/internal/truth"
)

// #region fact

// Fact is one atomic, independently verifiable claim tied to source fields.
type Fact struct {
	ID           string
	Date         time.Time
	Dimension    truth.Dimension
	Label        string
	SourceFields []string
}

// FactID builds the deterministic id for a (dimension, date) fact so that the
// same inputs always ground the same lines.
func FactID(dim truth.Dimension, date time.Time, suffix string) string {
	id := fmt.Sprintf("%s:%s", dim, date.Format("2006-01-02"))
	if suffix != "" {
		id += ":" + suffix
	}
	return id
}

// #endregion fact

// #region line-item

// LineKind classifies a line's role in the answer.
type LineKind string

const (
	LineHeadline    LineKind = "headline"
	LineFact        LineKind = "fact"
	LineImplication LineKind = "implication"
	LineCaveat      LineKind = "caveat"
)

// LineItem is a templated reference to one or more facts. FactIDs must be
// non-empty; AssertGrounded enforces it.
type LineItem struct {
	Kind       LineKind
	TemplateID string
	FactIDs    []string
	Params     map[string]string
}

// RenderLine is the rendered, user-facing form of a LineItem.
type RenderLine struct {
	Kind    LineKind `json:"kind"`
	Text    string   `json:"text"`
	FactIDs []string `json:"fact_ids"`
}

// #endregion line-item

// #region contract

// ContractViolation reports an ungrounded line item. It is a defect, not a
// runtime condition: the caller hard-fails the response.
type ContractViolation struct {
	Detail string
}

func (e *ContractViolation) Error() string {
	return "grounding contract violation: " + e.Detail
}

// AssertGrounded verifies that every line item carries at least one fact id
// and that every referenced id resolves in the fact bag.
func AssertGrounded(facts map[string]Fact, items []LineItem) error {
	for i, item := range items {
		if len(item.FactIDs) == 0 {
			return &ContractViolation{Detail: fmt.Sprintf("line %d (%s/%s) has no fact ids", i, item.Kind, item.TemplateID)}
		}
		for _, id := range item.FactIDs {
			if _, ok := facts[id]; !ok {
				return &ContractViolation{Detail: fmt.Sprintf("line %d (%s/%s) references unknown fact %q", i, item.Kind, item.TemplateID, id)}
			}
		}
	}
	return nil
}

// #endregion contract

// #region render

// Render checks grounding, then formats each line through the fixed template
// registry. Unknown template ids are contract violations too.
func Render(facts map[string]Fact, items []LineItem) ([]RenderLine, error) {
	if err := AssertGrounded(facts, items); err != nil {
		return nil, err
	}
	out := make([]RenderLine, 0, len(items))
	for i, item := range items {
		tmpl, ok := templates[item.TemplateID]
		if !ok {
			return nil, &ContractViolation{Detail: fmt.Sprintf("line %d references unknown template %q", i, item.TemplateID)}
		}
		labels := make([]string, 0, len(item.FactIDs))
		for _, id := range item.FactIDs {
			labels = append(labels, facts[id].Label)
		}
		out = append(out, RenderLine{
			Kind:    item.Kind,
			Text:    tmpl(item.Params, labels),
			FactIDs: item.FactIDs,
		})
	}
	return out, nil
}

// #endregion render
