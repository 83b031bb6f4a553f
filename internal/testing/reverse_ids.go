package testing

// ReverseIDs returns a reversed copy of ids, the expected listing order of ids inserted one by one
func ReverseIDs(ids []int64) []int64 {
	reversed := make([]int64, len(ids))
	for i, id := range ids {
		reversed[len(ids)-1-i] = id
	}

	return reversed
}
