package item

import (
	"fmt"
	"slices"

	"github.com/morphkit/morph/pkg/augment"
)

// Label wraps a class label. The payload is the label value; Classes is
// the preserved vocabulary it is drawn from. Geometric transforms leave
// labels untouched, but labels still ride through pipelines so a sample
// stays one tuple end to end.
type Label struct {
	// Value is the wrapped payload.
	Value string

	// Classes is the label vocabulary, preserved across WithData.
	Classes []string
}

// NewLabel wraps value, drawn from classes.
func NewLabel(value string, classes []string) Label {
	return Label{Value: value, Classes: classes}
}

// Data returns the wrapped label value.
func (l Label) Data() any { return l.Value }

// WithData returns a new Label with the value replaced and the vocabulary
// carried over. data must be a string contained in the vocabulary (an
// empty vocabulary accepts anything).
func (l Label) WithData(data any) (augment.Item, error) {
	v, ok := data.(string)
	if !ok {
		return nil, fmt.Errorf("%w: label wants string, got %T", ErrPayloadType, data)
	}
	if len(l.Classes) > 0 && !slices.Contains(l.Classes, v) {
		return nil, fmt.Errorf("label %q not in vocabulary %v", v, l.Classes)
	}
	return Label{Value: v, Classes: l.Classes}, nil
}

// String implements fmt.Stringer.
func (l Label) String() string {
	return fmt.Sprintf("Label(%s)", l.Value)
}

var _ augment.Item = Label{}
