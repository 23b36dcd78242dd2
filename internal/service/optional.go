package service

import (
	"bytes"
	"encoding/json"
)

// Opt wraps a PATCH body field so absent, null and present values stay
// distinguishable after decoding. Absent fields leave the stored value
// untouched; explicit nulls clear it.
type Opt[T any] struct {
	Set   bool // field appeared in the request body
	Null  bool // field was an explicit JSON null
	Value T
}

var jsonNull = []byte("null")

func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, jsonNull) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Present reports whether the field carried a non-null value.
func (o Opt[T]) Present() bool {
	return o.Set && !o.Null
}
