// Package crc32table implements the reflected CRC-32 used by ZIP and
// GZIP, plus the byte-search and lexicographic-compare primitives the
// ZIP reader needs — all specified so a SIMD-accelerated
// implementation could replace them without changing behavior.
package crc32table

import "sync"

const polynomial = 0xEDB88320

var tableOnce = sync.OnceValue(buildTable)

func buildTable() [256]uint32 {
	var t [256]uint32
	for i := range t {
		c := uint32(i)
		for j := 0; j < 8; j++ {
			if c&1 != 0 {
				c = polynomial ^ (c >> 1)
			} else {
				c >>= 1
			}
		}
		t[i] = c
	}
	return t
}

// Table returns the 256-entry reflected CRC-32 table, computed once
// on first use and cached thereafter.
func Table() [256]uint32 { return tableOnce() }

// Init returns the unfinalized state a fresh checksum starts from.
func Init() uint32 { return 0xFFFFFFFF }

// Update folds data into an unfinalized running state (one returned
// by Init or a previous Update) and returns the new unfinalized
// state, so data can be checksummed in pieces. Passing a finalized value here, or finalizing an intermediate
// value, produces the wrong checksum — the two states are not
// interchangeable.
func Update(state uint32, data []byte) uint32 {
	table := tableOnce()
	for _, b := range data {
		state = table[byte(state)^b] ^ (state >> 8)
	}
	return state
}

// Finalize converts an unfinalized running state into the value a
// GZIP or ZIP CRC-32 field stores.
func Finalize(state uint32) uint32 { return state ^ 0xFFFFFFFF }

// Checksum computes the finalized CRC-32 of data in one call.
func Checksum(data []byte) uint32 {
	return Finalize(Update(Init(), data))
}
