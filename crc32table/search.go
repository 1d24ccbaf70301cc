package crc32table

// Search returns the index of needle's first occurrence in haystack,
// or -1 if it does not occur. An empty needle always returns -1. A
// vectorized implementation must return identical results for every
// input.
func Search(haystack, needle []byte) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i <= len(haystack)-len(needle); i++ {
		if matchesAt(haystack, needle, i) {
			return i
		}
	}
	return -1
}

func matchesAt(haystack, needle []byte, at int) bool {
	for j := range needle {
		if haystack[at+j] != needle[j] {
			return false
		}
	}
	return true
}
