// Package bloom tracks which page contents a harvest has already collected.
package bloom

import (
	"strconv"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/cespare/xxhash/v2"
)

// Filter is a Bloom filter over page content fingerprints.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected pages
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Fingerprint returns the xxhash digest of text in hex.
func Fingerprint(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 16)
}

// SeenBefore reports whether text was recorded earlier and records it.
// False positives are possible; false negatives are not.
func (f *Filter) SeenBefore(text string) bool {
	return f.f.TestAndAddString(Fingerprint(text))
}

// Test reports whether text might have been recorded, without recording it.
func (f *Filter) Test(text string) bool {
	return f.f.TestString(Fingerprint(text))
}
