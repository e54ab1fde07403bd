package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// Field names a syncable attribute shared by library assets and local copies.
type Field string

const (
	FieldName          Field = "name"
	FieldDescription   Field = "description"
	FieldImagePrompt   Field = "image_prompt"
	FieldImageURL      Field = "image_url"
	FieldVisualStyleID Field = "visual_style_id"
)

// SyncableFields is the fixed processing order of the sync engine.
var SyncableFields = []Field{
	FieldName,
	FieldDescription,
	FieldImagePrompt,
	FieldImageURL,
	FieldVisualStyleID,
}

func IsSyncableField(f Field) bool {
	for _, s := range SyncableFields {
		if s == f {
			return true
		}
	}
	return false
}

// FieldSet is the set of fields a local copy has customized. It persists as
// a sorted jsonb array; the ordering is storage convenience only.
type FieldSet map[Field]struct{}

func NewFieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

func (s FieldSet) Len() int { return len(s) }

// Union returns a new set; neither receiver nor argument is mutated.
func (s FieldSet) Union(other FieldSet) FieldSet {
	out := make(FieldSet, len(s)+len(other))
	for f := range s {
		out[f] = struct{}{}
	}
	for f := range other {
		out[f] = struct{}{}
	}
	return out
}

// Without returns a new set with the given fields removed.
func (s FieldSet) Without(other FieldSet) FieldSet {
	out := make(FieldSet, len(s))
	for f := range s {
		if !other.Has(f) {
			out[f] = struct{}{}
		}
	}
	return out
}

func (s FieldSet) Clone() FieldSet {
	return s.Union(nil)
}

func (s FieldSet) Sorted() []Field {
	out := make([]Field, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s FieldSet) Equal(other FieldSet) bool {
	if len(s) != len(other) {
		return false
	}
	for f := range s {
		if !other.Has(f) {
			return false
		}
	}
	return true
}

func (s FieldSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *FieldSet) UnmarshalJSON(data []byte) error {
	var fields []Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = NewFieldSet(fields...)
	return nil
}

func (s FieldSet) Value() (driver.Value, error) {
	raw, err := json.Marshal(s.Sorted())
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (s *FieldSet) Scan(src interface{}) error {
	if src == nil {
		*s = FieldSet{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("fieldset scan: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*s = FieldSet{}
		return nil
	}
	return s.UnmarshalJSON(raw)
}

func (FieldSet) GormDataType() string { return "jsonb" }
