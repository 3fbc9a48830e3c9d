package storage

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

// envelope wraps a stored body with its insertion sequence.
type envelope struct {
	Seq  uint64          `json:"seq"`
	Data json.RawMessage `json:"data"`
}

// BoltBackend stores one bucket per kind in a single bbolt file.
type BoltBackend struct {
	db *bolt.DB
}

func OpenBolt(path string) (*BoltBackend, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) List(ctx context.Context, kind string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var envs []envelope
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(kind))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			var env envelope
			if err := json.Unmarshal(v, &env); err != nil {
				return err
			}
			envs = append(envs, env)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(envs, func(i, j int) bool { return envs[i].Seq < envs[j].Seq })

	out := make([][]byte, 0, len(envs))
	for _, env := range envs {
		out = append(out, env.Data)
	}
	return out, nil
}

func (b *BoltBackend) Get(ctx context.Context, kind, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var body []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(kind))
		if bucket == nil {
			return ErrNotFound
		}
		v := bucket.Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		var env envelope
		if err := json.Unmarshal(v, &env); err != nil {
			return err
		}
		body = env.Data
		return nil
	})
	return body, err
}

func (b *BoltBackend) Insert(ctx context.Context, kind, id string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(kind))
		if err != nil {
			return err
		}
		if bucket.Get([]byte(id)) != nil {
			return ErrDuplicate
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		v, err := json.Marshal(envelope{Seq: seq, Data: body})
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), v)
	})
}

func (b *BoltBackend) Update(ctx context.Context, kind, id string, fn func([]byte) ([]byte, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(kind))
		if bucket == nil {
			return ErrNotFound
		}
		v := bucket.Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}

		var env envelope
		if err := json.Unmarshal(v, &env); err != nil {
			return err
		}

		body, err := fn(env.Data)
		if err != nil {
			return err
		}
		env.Data = body

		next, err := json.Marshal(env)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), next)
	})
}

func (b *BoltBackend) Delete(ctx context.Context, kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(kind))
		if bucket == nil || bucket.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

func (b *BoltBackend) Truncate(ctx context.Context, kind string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(kind))
		if err == bolt.ErrBucketNotFound {
			return nil
		}
		return err
	})
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}
