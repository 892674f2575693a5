package repository

import "encoding/json"

// Nullable is a patch value for a nullable column. The zero value leaves the
// column alone; Set with a nil Value writes NULL.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func Some[T any](v T) Nullable[T] { return Nullable[T]{Set: true, Value: &v} }

func Null[T any]() Nullable[T] { return Nullable[T]{Set: true} }

// UnmarshalJSON marks the field present. A JSON null clears the column.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) column() any {
	if n.Value == nil {
		return nil
	}
	return *n.Value
}
