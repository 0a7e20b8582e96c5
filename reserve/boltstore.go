package reserve

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var bucketReservations = []byte("reservations")

// record is the gob-encoded value stored per outpoint.
type record struct {
	Until time.Time
}

// BoltStore persists reservations in a bbolt database so they survive a
// restart of the wallet process.
type BoltStore struct {
	db *bbolt.DB
}

var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("reserve: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("reserve: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketReservations)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("reserve: create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Reserve implements Store. The check and the writes share one bbolt
// read-write transaction.
func (s *BoltStore) Reserve(outpoints []string, now, until time.Time) error {
	for _, op := range outpoints {
		if err := validOutpoint(op); err != nil {
			return err
		}
	}
	data, err := encodeGob(record{Until: until})
	if err != nil {
		return fmt.Errorf("reserve: encode record: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketReservations)
		for _, op := range outpoints {
			raw := b.Get([]byte(op))
			if raw == nil {
				continue
			}
			var r record
			if err := decodeGob(raw, &r); err != nil {
				return fmt.Errorf("reserve: decode %s: %w", op, err)
			}
			if r.Until.After(now) {
				return fmt.Errorf("%w: %s", ErrReserved, op)
			}
		}
		for _, op := range outpoints {
			if err := b.Put([]byte(op), data); err != nil {
				return fmt.Errorf("reserve: put %s: %w", op, err)
			}
		}
		return nil
	})
}

// Release implements Store.
func (s *BoltStore) Release(outpoints []string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketReservations)
		for _, op := range outpoints {
			if err := b.Delete([]byte(op)); err != nil {
				return fmt.Errorf("reserve: delete %s: %w", op, err)
			}
		}
		return nil
	})
}

// Active implements Store.
func (s *BoltStore) Active(now time.Time) (map[string]time.Time, error) {
	out := make(map[string]time.Time)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketReservations).ForEach(func(k, v []byte) error {
			var r record
			if err := decodeGob(v, &r); err != nil {
				return fmt.Errorf("reserve: decode %s: %w", k, err)
			}
			if r.Until.After(now) {
				out[string(k)] = r.Until
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Prune implements Store.
func (s *BoltStore) Prune(now time.Time) (int, error) {
	n := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketReservations)
		var expired [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var r record
			if err := decodeGob(v, &r); err != nil {
				return fmt.Errorf("reserve: decode %s: %w", k, err)
			}
			if !r.Until.After(now) {
				expired = append(expired, bytes.Clone(k))
			}
			return nil
		})
		if err != nil {
			return err
		}
		// bbolt forbids mutating a bucket while iterating it.
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return fmt.Errorf("reserve: prune %s: %w", k, err)
			}
		}
		n = len(expired)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
