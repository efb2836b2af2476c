// Package util holds small generic helpers shared by tests and fixtures.
package util

// Ptr returns a pointer to the given value.
// Dataset lines and client messages use pointers for optional fields.
func Ptr[T any](v T) *T {
	return &v
}
