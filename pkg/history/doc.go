// Package history holds the immutable birth records of an evolutionary run.
//
// # Overview
//
// Every entity ever born is described by one [BirthRecord]: its globally
// unique child id, the epoch (generation) it was born in, and up to two parent
// ids. Absent parents (first generation, asexual births) are marked with the
// [NoParent] sentinel.
//
// Records are collected in a [Store], which rejects duplicate child ids and
// exposes an [EpochIndex] bucketing the records by epoch:
//
//	s := history.NewStore()
//	s.Add(history.BirthRecord{ChildID: 0, Epoch: 0, Parents: history.Orphan})
//	s.Add(history.BirthRecord{ChildID: 1, Epoch: 1, Parents: [2]uint64{0, history.NoParent}})
//	idx := s.Index()
//	idx.Count() // 2
//
// # Input Formats
//
// Histories are read from three interchangeable formats:
//
//   - text: one "child epoch parent0 parent1" tuple per line ([ReadText])
//   - json: {"births": [{"child": 1, "epoch": 1, "parents": [0, null]}]} ([ReadJSON])
//   - yaml: the same shape as JSON ([ReadYAML])
//
// [Import] opens a file and picks the reader from its extension. The
// [mongostore] subpackage loads records from a MongoDB collection.
//
// Loaders only check that child ids are unique. Parent ids are not checked
// for referential integrity; the layout engine handles missing ancestors.
package history
