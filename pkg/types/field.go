package types

// Field kinds. Every editable value of a record is exactly one of these.
const (
	KindText       = "text"
	KindChoice     = "choice"
	KindBoolean    = "boolean"
	KindRepeatable = "repeatable"
)

var validKinds = map[string]bool{
	KindText:       true,
	KindChoice:     true,
	KindBoolean:    true,
	KindRepeatable: true,
}

// IsValidKind reports whether k is one of the field kind constants.
func IsValidKind(k string) bool {
	return validKinds[k]
}

// Element and attribute names of the item document.
const (
	TagRoot     = "types"
	TagRecord   = "type"
	TagFlags    = "flags"
	TagCategory = "category"
	TagUsage    = "usage"
	TagValue    = "value"
	TagTag      = "tag"

	AttrName = "name"
	AttrFile = "file"
)

// Boolean flag encoding on the flags element.
const (
	FlagTrue  = "1"
	FlagFalse = "0"
)

// RepeatableTags lists the repeatable-choice tags in layout order.
var RepeatableTags = []string{TagUsage, TagValue, TagTag}

// IsRepeatable reports whether tag names a repeatable-choice sub-element.
func IsRepeatable(tag string) bool {
	switch tag {
	case TagUsage, TagValue, TagTag:
		return true
	}
	return false
}

// IsStructural reports whether tag has a dedicated field kind, as opposed to
// being rendered as a generic text field.
func IsStructural(tag string) bool {
	return tag == TagFlags || tag == TagCategory || IsRepeatable(tag)
}
