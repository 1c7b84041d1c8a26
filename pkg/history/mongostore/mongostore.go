// Package mongostore loads and saves birth records in a MongoDB collection.
//
// Each document describes one birth:
//
//	{"child": 12, "epoch": 3, "parents": [4, null]}
//
// Null, missing or negative parents map to [history.NoParent].
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/genealogy/pkg/errors"
	"github.com/matzehuels/genealogy/pkg/history"
)

// DefaultTimeout bounds connecting and reading when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Config selects the collection holding a history.
type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Validate checks that all fields needed to reach the collection are set.
func (c Config) Validate() error {
	if c.URI == "" {
		return errors.New(errors.ErrCodeInvalidInput, "mongo URI is required")
	}
	if err := errors.ValidateName("database", c.Database); err != nil {
		return err
	}
	return errors.ValidateName("collection", c.Collection)
}

type birthDoc struct {
	Child   int64    `bson:"child"`
	Epoch   int64    `bson:"epoch"`
	Parents []*int64 `bson:"parents,omitempty"`
}

func (d birthDoc) record() (history.BirthRecord, error) {
	if d.Child < 0 || d.Epoch < 0 {
		return history.BirthRecord{}, errors.New(errors.ErrCodeInvalidHistory, "negative child id or epoch (child=%d epoch=%d)", d.Child, d.Epoch)
	}
	if len(d.Parents) > 2 {
		return history.BirthRecord{}, errors.New(errors.ErrCodeInvalidHistory, "child %d: at most two parents allowed", d.Child)
	}
	r := history.BirthRecord{ChildID: uint64(d.Child), Epoch: uint64(d.Epoch), Parents: history.Orphan}
	for i, p := range d.Parents {
		if p != nil && *p >= 0 {
			r.Parents[i] = uint64(*p)
		}
	}
	return r, nil
}

func docFromRecord(r history.BirthRecord) birthDoc {
	d := birthDoc{Child: int64(r.ChildID), Epoch: int64(r.Epoch)}
	if !r.IsRoot() {
		d.Parents = make([]*int64, 2)
		for i, p := range r.Parents {
			if p != history.NoParent {
				v := int64(p)
				d.Parents[i] = &v
			}
		}
	}
	return d
}

// Load connects to MongoDB, reads the configured collection and disconnects.
func Load(ctx context.Context, cfg Config) (*history.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var s *history.Store
	err := withCollection(ctx, cfg, func(coll *mongo.Collection) error {
		var err error
		s, err = LoadCollection(ctx, coll)
		return err
	})
	return s, err
}

// Save connects to MongoDB, appends every record of s to the configured
// collection and disconnects. Existing documents are left alone.
func Save(ctx context.Context, cfg Config, s *history.Store) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return withCollection(ctx, cfg, func(coll *mongo.Collection) error {
		return SaveCollection(ctx, coll, s)
	})
}

func withCollection(ctx context.Context, cfg Config, fn func(*mongo.Collection) error) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	return fn(client.Database(cfg.Database).Collection(cfg.Collection))
}

// LoadCollection reads every birth document of coll into a store.
func LoadCollection(ctx context.Context, coll *mongo.Collection) (*history.Store, error) {
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "child", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find births: %w", err)
	}
	defer cur.Close(ctx)

	s := history.NewStore()
	for cur.Next(ctx) {
		var d birthDoc
		if err := cur.Decode(&d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidHistory, err, "decode birth document")
		}
		r, err := d.record()
		if err != nil {
			return nil, err
		}
		if err := s.Add(r); err != nil {
			return nil, err
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate births: %w", err)
	}
	return s, nil
}

// SaveCollection writes all records of s into coll.
func SaveCollection(ctx context.Context, coll *mongo.Collection, s *history.Store) error {
	if s.Len() == 0 {
		return nil
	}
	docs := make([]any, 0, s.Len())
	for _, r := range s.Sorted() {
		docs = append(docs, docFromRecord(r))
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert births: %w", err)
	}
	return nil
}
