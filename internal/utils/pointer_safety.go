package utils

// Value dereferences an optional JSON field, yielding the zero value for null.
func Value[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}
