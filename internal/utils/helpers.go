package utils

// SliceToSet converts a slice of any comparable type to a set represented by a map[T]struct{}.
func SliceToSet[T comparable](slice []T) map[T]struct{} {
	set := make(map[T]struct{}, len(slice))
	for _, item := range slice {
		set[item] = struct{}{}
	}
	return set
}

// MergeOptional keeps current when it is set and falls back to candidate otherwise.
// Every "fill only if unset" rule on optional fields goes through here.
func MergeOptional[T any](current, candidate *T) *T {
	if current != nil {
		return current
	}
	return candidate
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}
