package crc32table

// Compare lexicographically compares a and b by byte value, using
// length as the tie-break when one is a prefix of the other
// (len(a) < len(b) implies a is less). Returns -1, 0, or 1.
func Compare(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
