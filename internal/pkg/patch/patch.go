package patch

// Coalesce returns the value pointed to by ptr if it's not nil, otherwise returns fallback
func Coalesce[T any](ptr *T, fallback T) T {
	if ptr != nil {
		return *ptr
	}
	return fallback
}

// CoalescePtr keeps an optional field unchanged unless the patch sets it.
// clear wins over value and resets the field to nil.
func CoalescePtr[T any](value *T, clear bool, current *T) *T {
	if clear {
		return nil
	}
	if value != nil {
		v := *value
		return &v
	}
	return current
}
