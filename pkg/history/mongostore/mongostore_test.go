package mongostore

import (
	"testing"

	"github.com/matzehuels/genealogy/pkg/errors"
	"github.com/matzehuels/genealogy/pkg/history"
)

func ptr(v int64) *int64 { return &v }

func TestBirthDocRecord(t *testing.T) {
	tests := []struct {
		name    string
		doc     birthDoc
		want    [2]uint64
		wantErr bool
	}{
		{"root", birthDoc{Child: 1}, history.Orphan, false},
		{"one parent", birthDoc{Child: 2, Epoch: 1, Parents: []*int64{ptr(1), nil}}, [2]uint64{1, history.NoParent}, false},
		{"negative parent", birthDoc{Child: 3, Epoch: 1, Parents: []*int64{ptr(-1), ptr(1)}}, [2]uint64{history.NoParent, 1}, false},
		{"negative child", birthDoc{Child: -3}, history.Orphan, true},
		{"three parents", birthDoc{Child: 4, Parents: []*int64{ptr(1), ptr(2), ptr(3)}}, history.Orphan, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tt.doc.record()
			if (err != nil) != tt.wantErr {
				t.Fatalf("record() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidHistory) {
					t.Errorf("error code = %v, want INVALID_HISTORY", errors.GetCode(err))
				}
				return
			}
			if r.Parents != tt.want {
				t.Errorf("Parents = %v, want %v", r.Parents, tt.want)
			}
		})
	}
}

func TestDocRoundTrip(t *testing.T) {
	recs := []history.BirthRecord{
		{ChildID: 0, Epoch: 0, Parents: history.Orphan},
		{ChildID: 7, Epoch: 2, Parents: [2]uint64{3, history.NoParent}},
		{ChildID: 8, Epoch: 2, Parents: [2]uint64{3, 4}},
	}
	for _, r := range recs {
		got, err := docFromRecord(r).record()
		if err != nil {
			t.Fatalf("record(): %v", err)
		}
		if got != r {
			t.Errorf("round trip = %+v, want %+v", got, r)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"complete", Config{URI: "mongodb://localhost:27017", Database: "ga", Collection: "births"}, false},
		{"no uri", Config{Database: "ga", Collection: "births"}, true},
		{"no collection", Config{URI: "mongodb://localhost", Database: "ga"}, true},
		{"bad database", Config{URI: "mongodb://localhost", Database: "a/b", Collection: "births"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
