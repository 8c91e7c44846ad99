package persistence

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/ports"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/types"
	"github.com/sirupsen/logrus"
)

type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
	// Logger receives badger's internal logs; nil disables them.
	Logger *logrus.Entry
}

func OpenBadger(cfg BadgerConfig) (*badger.DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger: path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(cfg.Logger)
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return db, nil
}

// HierarchyBadgerStore keeps one "emp" key per employee holding its
// supervisor name and one "sub" key per reporting line. Sub keys carry a
// sequence number so subordinates iterate in insertion order.
type HierarchyBadgerStore struct {
	db *badger.DB
}

func NewHierarchyBadgerStore(db *badger.DB) ports.HierarchyStore {
	return &HierarchyBadgerStore{db: db}
}

var badgerSeqKey = []byte("meta\x00seq")

func badgerEmployeeKey(name string) []byte {
	return []byte("emp\x00" + name)
}

// badgerSubordinatePrefix length-prefixes the supervisor so no name is a key
// prefix of another, whatever bytes it contains.
func badgerSubordinatePrefix(supervisor string) []byte {
	key := binary.AppendUvarint([]byte("sub\x00"), uint64(len(supervisor)))
	return append(key, supervisor...)
}

func badgerSubordinateKey(supervisor string, seq uint64) []byte {
	key := badgerSubordinatePrefix(supervisor)
	return binary.BigEndian.AppendUint64(key, seq)
}

func (s *HierarchyBadgerStore) Save(ctx context.Context, root *types.Employee) error {
	if err := ctx.Err(); err != nil {
		return types.NewStoreError("save", err)
	}
	rows := flattenRows(root)
	if len(rows) == 0 {
		return nil
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		seq, err := readSeq(txn)
		if err != nil {
			return err
		}

		for _, r := range rows {
			_, err := txn.Get(badgerEmployeeKey(r.name))
			switch {
			case err == nil:
				return fmt.Errorf("%w: %s", ErrDuplicateEmployee, r.name)
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}

			if err := txn.Set(badgerEmployeeKey(r.name), []byte(r.supervisor)); err != nil {
				return err
			}
			if r.supervisor == "" {
				continue
			}
			seq++
			if err := txn.Set(badgerSubordinateKey(r.supervisor, seq), []byte(r.name)); err != nil {
				return err
			}
		}
		return txn.Set(badgerSeqKey, binary.BigEndian.AppendUint64(nil, seq))
	})
	if err != nil {
		return types.NewStoreError("save", err)
	}
	return nil
}

func readSeq(txn *badger.Txn) (uint64, error) {
	item, err := txn.Get(badgerSeqKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	if len(v) != 8 {
		return 0, errors.New("badger: corrupt sequence value")
	}
	return binary.BigEndian.Uint64(v), nil
}

// Snapshot runs fn inside a single badger read transaction.
func (s *HierarchyBadgerStore) Snapshot(ctx context.Context, fn func(ports.FlatReader) error) error {
	if err := ctx.Err(); err != nil {
		return types.NewStoreError("snapshot", err)
	}
	txn := s.db.NewTransaction(false)
	defer txn.Discard()

	return fn(badgerFlatReader{txn: txn})
}

type badgerFlatReader struct {
	txn *badger.Txn
}

func (r badgerFlatReader) Exists(_ context.Context, name string) (bool, error) {
	_, err := r.txn.Get(badgerEmployeeKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, types.NewStoreError("exists", err)
	}
	return true, nil
}

func (r badgerFlatReader) ParentOf(_ context.Context, name string) (string, bool, error) {
	item, err := r.txn.Get(badgerEmployeeKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, types.NewStoreError("parent_of", err)
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return "", false, types.NewStoreError("parent_of", err)
	}
	if len(v) == 0 {
		return "", false, nil
	}
	return string(v), true, nil
}

func (r badgerFlatReader) ChildrenOf(ctx context.Context, name string) ([]string, error) {
	prefix := badgerSubordinatePrefix(name)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	it := r.txn.NewIterator(opts)
	defer it.Close()

	var out []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, types.NewStoreError("children_of", err)
		}
		v, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, types.NewStoreError("children_of", err)
		}
		out = append(out, string(v))
	}
	return out, nil
}
