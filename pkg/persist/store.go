package persist

// store.go backs save/load with github.com/dgraph-io/badger/v4: full
// world snapshots (the magic-tagged byte stream from stream.go) are
// stored as Badger values keyed "world/save/<seq>", with the most
// recent sequence recorded under "world/save/head" (SPEC_FULL.md §1).
// Badger's WAL gives crash-safe durability without inventing a bespoke
// file format beyond the framing spec.md §6 already mandates.

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const headKey = "world/save/head"

func seqKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("world/save/%020d", seq))
}

// Store is a Badger-backed sequence of full world snapshots.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) a Badger database at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("persist: open %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Save writes body (a fully-framed magic-tagged snapshot, see Encode)
// under the next sequence number and advances the head pointer.
func (s *Store) Save(body []byte) (seq uint64, err error) {
	err = s.db.Update(func(txn *badger.Txn) error {
		seq, err = nextSeq(txn)
		if err != nil {
			return err
		}
		if err := txn.Set(seqKey(seq), body); err != nil {
			return err
		}
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], seq)
		return txn.Set([]byte(headKey), buf[:])
	})
	if err != nil {
		return 0, err
	}
	return seq, nil
}

func nextSeq(txn *badger.Txn) (uint64, error) {
	item, err := txn.Get([]byte(headKey))
	if err == badger.ErrKeyNotFound {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	var cur uint64
	err = item.Value(func(v []byte) error {
		cur = binary.LittleEndian.Uint64(v)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return cur + 1, nil
}

// Load reads the snapshot body stored at seq.
func (s *Store) Load(seq uint64) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(seqKey(seq))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			out = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("persist: load seq %d: %w", seq, err)
	}
	return out, nil
}

// Head returns the most recently saved sequence number and its body.
// Head returns (0, nil, nil) if nothing has ever been saved.
func (s *Store) Head() (seq uint64, body []byte, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(headKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(v []byte) error {
			seq = binary.LittleEndian.Uint64(v)
			return nil
		}); err != nil {
			return err
		}

		hitem, err := txn.Get(seqKey(seq))
		if err != nil {
			return err
		}
		return hitem.Value(func(v []byte) error {
			body = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return 0, nil, fmt.Errorf("persist: load head: %w", err)
	}
	return seq, body, nil
}
