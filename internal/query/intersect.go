package query

// intersect merges two sorted, deduplicated document ID lists with the
// two-pointer technique, keeping only IDs present in both. Either input
// being empty yields empty.
func intersect(a, b []string) []string {
	out := make([]string, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}
