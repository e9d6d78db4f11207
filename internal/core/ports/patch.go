package ports

// Patch is an optional update field that tells "absent" from "null". Set is
// only true when the caller supplied the field; Value is nil for null.
type Patch[T any] struct {
	Set   bool
	Value *T
}

func Some[T any](v T) Patch[T] {
	return Patch[T]{Set: true, Value: &v}
}

func Null[T any]() Patch[T] {
	return Patch[T]{Set: true}
}
