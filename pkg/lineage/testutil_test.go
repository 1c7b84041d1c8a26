package lineage

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/genealogy/pkg/history"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func nearPt(a, b Point) bool { return near(a.X, b.X) && near(a.Y, b.Y) }

func root(id, epoch uint64) history.BirthRecord {
	return history.BirthRecord{ChildID: id, Epoch: epoch, Parents: history.Orphan}
}

func child(id, epoch, p0, p1 uint64) history.BirthRecord {
	return history.BirthRecord{ChildID: id, Epoch: epoch, Parents: [2]uint64{p0, p1}}
}

func mustStore(t *testing.T, recs ...history.BirthRecord) *history.Store {
	t.Helper()
	s, err := history.FromRecords(recs)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return s
}

func mustBuild(t *testing.T, s *history.Store, c Canvas) *Layout {
	t.Helper()
	l, err := Build(context.Background(), s.Index(), c)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return l
}

// randomHistory generates a run of epochs, each drawing parents from the
// previous epoch; some parents deliberately point at ids that do not exist.
func randomHistory(seed uint64, epochs, perEpoch int) []history.BirthRecord {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	var recs []history.BirthRecord
	var prev []uint64
	next := uint64(0)
	for e := 0; e < epochs; e++ {
		n := 1 + rng.IntN(perEpoch)
		var cur []uint64
		for i := 0; i < n; i++ {
			id := next
			next++
			r := root(id, uint64(e))
			if len(prev) > 0 {
				r.Parents[0] = prev[rng.IntN(len(prev))]
				switch rng.IntN(4) {
				case 0:
					r.Parents[0] = 1_000_000 + id // dangling
				case 1:
					r.Parents[1] = history.NoParent
				default:
					r.Parents[1] = prev[rng.IntN(len(prev))]
				}
			}
			recs = append(recs, r)
			cur = append(cur, id)
		}
		prev = cur
	}
	rng.Shuffle(len(recs), func(i, j int) { recs[i], recs[j] = recs[j], recs[i] })
	return recs
}
