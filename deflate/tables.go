package deflate

// lengthBase and lengthExtra are RFC 1951 §3.2.5's length code table,
// indexed by symbol-257 for length symbols 257..285.
var lengthBase = [29]int{
	3, 4, 5, 6, 7, 8, 9, 10,
	11, 13, 15, 17,
	19, 23, 27, 31,
	35, 43, 51, 59,
	67, 83, 99, 115,
	131, 163, 195, 227,
	258,
}

var lengthExtra = [29]uint{
	0, 0, 0, 0, 0, 0, 0, 0,
	1, 1, 1, 1,
	2, 2, 2, 2,
	3, 3, 3, 3,
	4, 4, 4, 4,
	5, 5, 5, 5,
	0,
}

// distBase and distExtra are RFC 1951 §3.2.5's distance code table,
// indexed by distance symbol 0..29.
var distBase = [30]int{
	1, 2, 3, 4,
	5, 7,
	9, 13,
	17, 25,
	33, 49,
	65, 97,
	129, 193,
	257, 385,
	513, 769,
	1025, 1537,
	2049, 3073,
	4097, 6145,
	8193, 12289,
	16385, 24577,
}

var distExtra = [30]uint{
	0, 0, 0, 0,
	1, 1,
	2, 2,
	3, 3,
	4, 4,
	5, 5,
	6, 6,
	7, 7,
	8, 8,
	9, 9,
	10, 10,
	11, 11,
	12, 12,
	13, 13,
}

// codeLengthOrder is the order in which RFC 1951 §3.2.7 packs the
// HCLEN code-length code lengths for a dynamic block header.
var codeLengthOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// fixedLiteralLengths is the RFC 1951 §3.2.6 fixed literal/length
// code-length vector: 0-143 -> 8, 144-255 -> 9, 256-279 -> 7, 280-287 -> 8.
func fixedLiteralLengths() []int {
	lengths := make([]int, 288)
	for i := 0; i < 144; i++ {
		lengths[i] = 8
	}
	for i := 144; i < 256; i++ {
		lengths[i] = 9
	}
	for i := 256; i < 280; i++ {
		lengths[i] = 7
	}
	for i := 280; i < 288; i++ {
		lengths[i] = 8
	}
	return lengths
}

// fixedDistanceLengths is RFC 1951 §3.2.6's fixed distance code-length
// vector: all 30 codes get 5 bits.
func fixedDistanceLengths() []int {
	lengths := make([]int, 30)
	for i := range lengths {
		lengths[i] = 5
	}
	return lengths
}
