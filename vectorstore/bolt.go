package vectorstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketRecords = []byte("records")
	bucketOrder   = []byte("order")
)

// BoltStore keeps every collection as a top-level bucket in a single bbolt file.
// Each collection bucket holds a "records" bucket (id -> record) and an "order"
// bucket (insertion sequence -> id) so Get returns records in insertion order.
type BoltStore struct {
	db *bbolt.DB
}

type boltRecord struct {
	Seq       uint64            `json:"seq"`
	Document  string            `json:"document"`
	Embedding []float32         `json:"embedding,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) CreateCollection(ctx context.Context, name string) (Collection, error) {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucket([]byte(name))
		if errors.Is(err, bbolt.ErrBucketExists) {
			return fmt.Errorf("%w: %s", ErrCollectionExists, name)
		}
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", name, err)
		}
		return initCollectionBucket(b)
	})
	if err != nil {
		return nil, err
	}
	return &boltCollection{db: s.db, name: name}, nil
}

func (s *BoltStore) GetOrCreateCollection(ctx context.Context, name string) (Collection, error) {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", name, err)
		}
		return initCollectionBucket(b)
	})
	if err != nil {
		return nil, err
	}
	return &boltCollection{db: s.db, name: name}, nil
}

func (s *BoltStore) GetCollection(ctx context.Context, name string) (Collection, error) {
	err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(name)) == nil {
			return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &boltCollection{db: s.db, name: name}, nil
}

func (s *BoltStore) DeleteCollection(ctx context.Context, name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		err := tx.DeleteBucket([]byte(name))
		if errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
		}
		return err
	})
}

func (s *BoltStore) ListCollections(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	return names, err
}

func initCollectionBucket(b *bbolt.Bucket) error {
	if _, err := b.CreateBucketIfNotExists(bucketRecords); err != nil {
		return err
	}
	_, err := b.CreateBucketIfNotExists(bucketOrder)
	return err
}

type boltCollection struct {
	db   *bbolt.DB
	name string
}

func (c *boltCollection) Name() string { return c.name }

// buckets resolves the two inner buckets, failing if the collection was
// deleted after this handle was obtained.
func (c *boltCollection) buckets(tx *bbolt.Tx) (records, order *bbolt.Bucket, err error) {
	root := tx.Bucket([]byte(c.name))
	if root == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, c.name)
	}
	return root.Bucket(bucketRecords), root.Bucket(bucketOrder), nil
}

func (c *boltCollection) Add(ctx context.Context, records ...Record) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		recs, order, err := c.buckets(tx)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if rec.ID == "" {
				return fmt.Errorf("record id must not be empty")
			}
			if recs.Get([]byte(rec.ID)) != nil {
				return fmt.Errorf("record %s already exists in %s", rec.ID, c.name)
			}
			seq, err := order.NextSequence()
			if err != nil {
				return err
			}
			data, err := json.Marshal(boltRecord{
				Seq:       seq,
				Document:  rec.Document,
				Embedding: rec.Embedding,
				Metadata:  rec.Metadata,
			})
			if err != nil {
				return err
			}
			if err := recs.Put([]byte(rec.ID), data); err != nil {
				return err
			}
			if err := order.Put(seqKey(seq), []byte(rec.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *boltCollection) Get(ctx context.Context, ids ...string) ([]Record, error) {
	var out []Record
	err := c.db.View(func(tx *bbolt.Tx) error {
		recs, order, err := c.buckets(tx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return order.ForEach(func(_, id []byte) error {
				rec, err := decodeBoltRecord(string(id), recs.Get(id))
				if err != nil {
					return err
				}
				out = append(out, rec)
				return nil
			})
		}
		for _, id := range ids {
			data := recs.Get([]byte(id))
			if data == nil {
				continue
			}
			rec, err := decodeBoltRecord(id, data)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Record{}
	}
	return out, nil
}

func (c *boltCollection) Query(ctx context.Context, embedding []float32, k int) ([]Record, error) {
	all, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	return rankRecords(all, embedding, k), nil
}

func (c *boltCollection) Delete(ctx context.Context, ids ...string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		recs, order, err := c.buckets(tx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			data := recs.Get([]byte(id))
			if data == nil {
				continue
			}
			var stored boltRecord
			if err := json.Unmarshal(data, &stored); err != nil {
				return err
			}
			if err := order.Delete(seqKey(stored.Seq)); err != nil {
				return err
			}
			if err := recs.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *boltCollection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.View(func(tx *bbolt.Tx) error {
		recs, _, err := c.buckets(tx)
		if err != nil {
			return err
		}
		n = recs.Stats().KeyN
		return nil
	})
	return n, err
}

func decodeBoltRecord(id string, data []byte) (Record, error) {
	if data == nil {
		return Record{}, fmt.Errorf("record %s missing from records bucket", id)
	}
	var stored boltRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return Record{}, fmt.Errorf("failed to decode record %s: %w", id, err)
	}
	return Record{
		ID:        id,
		Document:  stored.Document,
		Embedding: stored.Embedding,
		Metadata:  stored.Metadata,
	}, nil
}

func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
