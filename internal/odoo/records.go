package odoo

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Odoo encodes absent fields as JSON false rather than null: a missing
// many2one is false, an empty char field is false. The readers below
// tolerate that, returning zero values instead of misreading booleans.

// Str returns a string field, or "" when the field is absent or not a string.
func Str(rec gjson.Result, field string) string {
	v := rec.Get(field)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

// Int returns an integer field, or 0 when absent.
func Int(rec gjson.Result, field string) int64 {
	v := rec.Get(field)
	if v.Type != gjson.Number {
		return 0
	}
	return v.Int()
}

// Float returns a numeric field, or 0 when absent.
func Float(rec gjson.Result, field string) float64 {
	v := rec.Get(field)
	if v.Type != gjson.Number {
		return 0
	}
	return v.Float()
}

// Bool returns a boolean field.
func Bool(rec gjson.Result, field string) bool {
	return rec.Get(field).Bool()
}

// Ref is a many2one reference as Odoo serializes it: an [id, display_name]
// pair, or false when unset. It marshals back to the same pair so translated
// responses keep the original wire shape.
type Ref struct {
	ID   int64
	Name string
}

// IsZero reports whether the reference is unset.
func (r Ref) IsZero() bool { return r.ID == 0 }

// MarshalJSON encodes the reference as [id, name], or null when unset.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal([]any{r.ID, r.Name})
}

// UnmarshalJSON decodes the [id, name] pair produced by MarshalJSON;
// null (and Odoo's false) decode to the zero Ref.
func (r *Ref) UnmarshalJSON(data []byte) error {
	v := gjson.ParseBytes(data)
	if !v.IsArray() {
		*r = Ref{}
		return nil
	}
	pair := v.Array()
	*r = Ref{}
	if len(pair) > 0 {
		r.ID = pair[0].Int()
	}
	if len(pair) > 1 {
		r.Name = pair[1].String()
	}
	return nil
}

// Many2One reads a many2one field into a Ref; false yields the zero Ref.
func Many2One(rec gjson.Result, field string) Ref {
	v := rec.Get(field)
	if !v.IsArray() {
		return Ref{}
	}
	pair := v.Array()
	if len(pair) == 0 {
		return Ref{}
	}
	ref := Ref{ID: pair[0].Int()}
	if len(pair) > 1 {
		ref.Name = pair[1].String()
	}
	return ref
}

// IDs reads a one2many/many2many id list. The result is never nil so empty
// lists serialize as [].
func IDs(rec gjson.Result, field string) []int64 {
	out := make([]int64, 0)
	v := rec.Get(field)
	if !v.IsArray() {
		return out
	}
	for _, id := range v.Array() {
		out = append(out, id.Int())
	}
	return out
}
