package resolve

import (
	"encoding/json"
	"fmt"

	"nextstop/internal/assistant"
)

// SlotType names the logical slot a list option refers to.
type SlotType string

const (
	SlotFrom SlotType = "from"
	SlotTo   SlotType = "to"
)

// OptionKey identifies a stop offered in a disambiguation list. It is
// serialized to a JSON string and round-tripped verbatim through the
// platform's option mechanism.
type OptionKey struct {
	ID   int64    `json:"id"`
	Type SlotType `json:"type"`
}

// EncodeOptionKey serializes an option key for use as a list item key.
func EncodeOptionKey(k OptionKey) string {
	raw, err := json.Marshal(k)
	if err != nil {
		// Two scalar fields cannot fail to marshal.
		panic(err)
	}
	return string(raw)
}

// ParseOptionKey decodes a list item key received back from the platform.
func ParseOptionKey(s string) (OptionKey, error) {
	var k OptionKey
	if err := json.Unmarshal([]byte(s), &k); err != nil {
		return OptionKey{}, fmt.Errorf("parse option key %q: %w", s, err)
	}
	return k, nil
}

// SelectedOptionKey returns the option the user picked from a list, if any.
// A malformed key is a platform-integration error.
func SelectedOptionKey(app assistant.App) (OptionKey, bool, error) {
	raw := app.SelectedOption()
	if raw == "" {
		return OptionKey{}, false, nil
	}
	k, err := ParseOptionKey(raw)
	if err != nil {
		return OptionKey{}, false, err
	}
	return k, true, nil
}
