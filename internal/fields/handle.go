// Package fields maps a record's sub-structure onto an ordered list of
// editable field handles and writes handle values back into the document.
package fields

import (
	"fmt"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mesh-intelligence/typesmith/pkg/types"
)

// KeyName is the key of the identity handle.
const KeyName = "@name"

// flagKeyPrefix prefixes the key of every boolean flag handle.
const flagKeyPrefix = "flags@"

// Handle is the live editing proxy for one value of a record. Text, choice
// and repeatable handles hold a string; boolean handles hold a bool.
type Handle struct {
	Key  string // Stable within the record: element id, flag key or KeyName.
	Kind string // One of the types.Kind constants.
	Tag  string // Element tag; empty for the identity handle.
	Flag string // Flag attribute name, for boolean handles.

	value any
	raw   string // Flag text as loaded, for boolean handles.
}

// Value returns the current value.
func (h *Handle) Value() any { return h.value }

// SetValue replaces the current value. The value is coerced to the handle's
// kind; see Coerce.
func (h *Handle) SetValue(v any) {
	if c, err := Coerce(h.Kind, v); err == nil {
		h.value = c
	}
}

// Text returns the value rendered as text. Booleans render as "1" or "0".
func (h *Handle) Text() string {
	switch v := h.value.(type) {
	case bool:
		return encodeFlag(v)
	case string:
		return v
	}
	return ""
}

// flagText is the text WriteBack stores for a boolean handle. A flag loaded
// with text other than "0" or "1" reads as false and keeps its text until it
// is set to true.
func (h *Handle) flagText() string {
	if h.value == false && h.raw != types.FlagTrue && h.raw != types.FlagFalse {
		return h.raw
	}
	return h.Text()
}

// IsIdentity reports whether h edits the record name.
func (h *Handle) IsIdentity() bool { return h.Key == KeyName }

// Coerce converts v to the representation used by kind. Booleans accept
// bool, "1"/"0" and anything strconv.ParseBool accepts; other kinds accept
// strings only.
func Coerce(kind string, v any) (any, error) {
	switch kind {
	case types.KindBoolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			if b == types.FlagTrue || b == types.FlagFalse {
				return b == types.FlagTrue, nil
			}
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return nil, fmt.Errorf("boolean field: %w", types.ErrUnknownOption)
			}
			return parsed, nil
		}
	case types.KindText, types.KindChoice, types.KindRepeatable:
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%s field does not accept %T", kind, v)
}

var title = cases.Title(language.English)

// Label returns the display label of h.
func Label(h *Handle) string {
	switch {
	case h.IsIdentity():
		return "Name"
	case h.Kind == types.KindBoolean:
		return h.Flag
	}
	return title.String(h.Tag)
}

func encodeFlag(b bool) string {
	if b {
		return types.FlagTrue
	}
	return types.FlagFalse
}

func flagKey(name string) string { return flagKeyPrefix + name }
