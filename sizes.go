// sizes.go: Enumerable legal size ranges.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptex

import "fmt"

// KeySizes is an inclusive range of legal sizes in bits. Skip is the step
// between legal values; a Skip of 0 describes the single value Min.
type KeySizes struct {
	Min  int `json:"min" yaml:"min"`
	Max  int `json:"max" yaml:"max"`
	Skip int `json:"skip" yaml:"skip"`
}

// Contains reports whether bits is one of the sizes in the range.
func (k KeySizes) Contains(bits int) bool {
	if bits < k.Min || bits > k.Max {
		return false
	}
	if k.Skip == 0 {
		return bits == k.Min
	}
	return (bits-k.Min)%k.Skip == 0
}

// Values lists every size in the range in ascending order.
func (k KeySizes) Values() []int {
	if k.Skip == 0 {
		return []int{k.Min}
	}
	var out []int
	for v := k.Min; v <= k.Max; v += k.Skip {
		out = append(out, v)
	}
	return out
}

func (k KeySizes) String() string {
	if k.Skip == 0 || k.Min == k.Max {
		return fmt.Sprintf("%d", k.Min)
	}
	return fmt.Sprintf("%d-%d/%d", k.Min, k.Max, k.Skip)
}

// LegalSizes enumerates the union of the ranges.
func LegalSizes(ranges []KeySizes) []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range ranges {
		for _, v := range r.Values() {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// IsLegalSize reports whether bits falls in any of the ranges.
func IsLegalSize(bits int, ranges []KeySizes) bool {
	for _, r := range ranges {
		if r.Contains(bits) {
			return true
		}
	}
	return false
}
