package domain

import "encoding/json"

// Optional is a patch field that distinguishes "absent from the request"
// from "present with a value". With a pointer type parameter it additionally
// distinguishes explicit JSON null (Set=true, Value=nil) from absence
// (Set=false), which partial updates need for nullable columns.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns an Optional that is present with the given value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// UnmarshalJSON marks the field as present. A JSON null leaves Value at its
// zero value (nil for pointer types).
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}
