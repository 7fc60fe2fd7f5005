package ledger

import (
	dbm "github.com/cometbft/cometbft-db"

	"github.com/eatozee/xrpld-hooks/errors"
	"github.com/eatozee/xrpld-hooks/keylet"
)

// Store persists serialized ledger entries and the transaction master in a
// key-value database. Entry keys are the 34-byte keylet prefixed with a
// namespace byte so transactions and entries share one database.
type Store struct {
	db dbm.DB
}

const (
	nsEntry = byte('e')
	nsTxn   = byte('t')
)

// NewMemStore returns a Store backed by an in-memory database.
func NewMemStore() *Store {
	return &Store{db: dbm.NewMemDB()}
}

// NewStore wraps an existing database.
func NewStore(db dbm.DB) *Store {
	return &Store{db: db}
}

// OpenStore opens (creating if needed) a GoLevelDB-backed store at dir.
func OpenStore(name, dir string) (*Store, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, errors.Store("open leveldb", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func entryKey(kl keylet.Keylet) []byte {
	return append([]byte{nsEntry}, kl.Bytes()...)
}

// GetEntry loads the serialized entry at kl.
func (s *Store) GetEntry(kl keylet.Keylet) ([]byte, bool, error) {
	v, err := s.db.Get(entryKey(kl))
	if err != nil {
		return nil, false, errors.Store("get entry", err)
	}
	if v == nil {
		return nil, false, nil
	}
	return v, true, nil
}

// SetEntry stores the serialized entry at kl.
func (s *Store) SetEntry(kl keylet.Keylet, blob []byte) error {
	if err := s.db.Set(entryKey(kl), blob); err != nil {
		return errors.Store("set entry", err)
	}
	return nil
}

// DeleteEntry removes the entry at kl.
func (s *Store) DeleteEntry(kl keylet.Keylet) error {
	if err := s.db.Delete(entryKey(kl)); err != nil {
		return errors.Store("delete entry", err)
	}
	return nil
}

// GetTxn loads a serialized transaction by id.
func (s *Store) GetTxn(id TxnID) ([]byte, bool, error) {
	v, err := s.db.Get(append([]byte{nsTxn}, id[:]...))
	if err != nil {
		return nil, false, errors.Store("get txn", err)
	}
	if v == nil {
		return nil, false, nil
	}
	return v, true, nil
}

// PutTxn records a serialized transaction in the transaction master.
func (s *Store) PutTxn(id TxnID, blob []byte) error {
	if err := s.db.Set(append([]byte{nsTxn}, id[:]...), blob); err != nil {
		return errors.Store("put txn", err)
	}
	return nil
}
