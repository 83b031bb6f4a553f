package testing

// IDs collects the id of every item in order, e.g. the ids of a listing response
func IDs[T any](items []T, id func(T) int64) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}

	return out
}
