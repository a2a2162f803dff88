package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"pawnpool/crypto"
	"pawnpool/storage"
)

const (
	poolKey                = "lending/pool"
	depositCountKeyFormat  = "lending/deposits/%x/count"
	depositEntryKeyFormat  = "lending/deposits/%x/%020d"
	loanCountKeyFormat     = "lending/loans/%x/count"
	loanEntryKeyFormat     = "lending/loans/%x/%020d"
	collateralKeyFormat    = "lending/collateral/%x/%s"
	assetOwnerKeyFormat    = "assets/owner/%s/%d"
	assetHoldingsKeyFormat = "assets/holdings/%x/%s"
	assetCustodyKeyFormat  = "assets/custody/%s/%d"
	accountKeyFormat       = "accounts/%x"
)

// Manager persists the ledger's records into a key-value Database using RLP
// encoding. It implements the state interfaces of the lending engine and
// collateral vault as well as the node-local escrow and bank collaborators.
// The surrounding execution model serializes writers; the Manager adds no
// locking of its own.
type Manager struct {
	db storage.Database
}

func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func (m *Manager) getRLP(key string, out interface{}) (bool, error) {
	raw, err := m.db.Get([]byte(key))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := rlp.DecodeBytes(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (m *Manager) putRLP(key string, value interface{}) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return m.db.Put([]byte(key), raw)
}

func (m *Manager) getCounter(key string) (uint64, error) {
	var count uint64
	if _, err := m.getRLP(key, &count); err != nil {
		return 0, err
	}
	return count, nil
}

func decodeAddress(raw []byte) crypto.Address {
	return crypto.NewAddress(crypto.PawnPrefix, raw)
}
