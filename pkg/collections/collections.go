// Package collections has generic slice helpers.
package collections

// Apply maps each item through fn.
func Apply[T, V any](items []T, fn func(T) V) []V {
	result := make([]V, len(items))
	for i, item := range items {
		result[i] = fn(item)
	}

	return result
}

// Find returns the first item matching pred.
func Find[T any](items []T, pred func(T) bool) (T, bool) {
	for _, item := range items {
		if pred(item) {
			return item, true
		}
	}

	var zero T

	return zero, false
}
