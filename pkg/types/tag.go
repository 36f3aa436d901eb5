package types

// Tag records which of the supported kinds a stored entry holds. It is
// persisted in the data_type column next to the encoded value and selects
// the decode path.
type Tag string

// Supported type tags.
const (
	TagBool    Tag = "bool"
	TagInt     Tag = "int"
	TagFloat   Tag = "float"
	TagDecimal Tag = "decimal"
	TagString  Tag = "string"
	TagJSON    Tag = "json"
)

// legacyTagString is the tag older databases used for text values.
const legacyTagString = "str"

// validTags is the set of recognized type tags.
var validTags = map[Tag]bool{
	TagBool:    true,
	TagInt:     true,
	TagFloat:   true,
	TagDecimal: true,
	TagString:  true,
	TagJSON:    true,
}

// AllTags lists the supported tags in classification priority order.
var AllTags = []Tag{TagBool, TagInt, TagString, TagFloat, TagDecimal, TagJSON}

// Valid reports whether t is one of the supported tags.
func (t Tag) Valid() bool {
	return validTags[t]
}

func (t Tag) String() string {
	return string(t)
}

// ParseTag converts a stored data_type into a Tag. The legacy "str" tag is
// accepted as TagString. Returns ErrUnknownTag for anything else.
func ParseTag(s string) (Tag, error) {
	if s == legacyTagString {
		return TagString, nil
	}
	t := Tag(s)
	if !t.Valid() {
		return "", ErrUnknownTag
	}
	return t, nil
}
