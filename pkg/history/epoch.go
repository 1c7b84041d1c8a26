package history

import "github.com/matzehuels/genealogy/pkg/errors"

// EpochIndex is a read-only view of records bucketed by epoch.
// Every record appears in exactly one bucket, in the order it was given.
type EpochIndex struct {
	buckets [][]BirthRecord
	total   int
}

// NewEpochIndex buckets records by epoch. The epoch count is one more than
// the largest epoch present, or zero for no records.
func NewEpochIndex(records []BirthRecord) *EpochIndex {
	if len(records) == 0 {
		return &EpochIndex{}
	}
	var maxEpoch uint64
	for _, r := range records {
		maxEpoch = max(maxEpoch, r.Epoch)
	}
	buckets := make([][]BirthRecord, maxEpoch+1)
	for _, r := range records {
		buckets[r.Epoch] = append(buckets[r.Epoch], r)
	}
	return &EpochIndex{buckets: buckets, total: len(records)}
}

// Count returns the number of epochs: max(epoch)+1, or 0 when empty.
func (x *EpochIndex) Count() int { return len(x.buckets) }

// Len returns the total number of records across all epochs.
func (x *EpochIndex) Len() int { return x.total }

// Records returns the bucket for epoch e, or nil if e is out of range.
// The returned slice should be treated as read-only.
func (x *EpochIndex) Records(e int) []BirthRecord {
	if e < 0 || e >= len(x.buckets) {
		return nil
	}
	return x.buckets[e]
}

// Sizes returns the number of records in each epoch.
func (x *EpochIndex) Sizes() []int {
	sizes := make([]int, len(x.buckets))
	for e, b := range x.buckets {
		sizes[e] = len(b)
	}
	return sizes
}

// RequireEpochs returns EMPTY_HISTORY when the index holds no epoch. Callers
// that can work with an empty history need not call it.
func (x *EpochIndex) RequireEpochs() error {
	if x.Count() == 0 {
		return errors.New(errors.ErrCodeEmptyHistory, "history contains no birth records")
	}
	return nil
}
