package state

import (
	"errors"
	"fmt"

	"pawnpool/crypto"
)

var (
	// ErrAssetExists rejects registering an id twice within a class.
	ErrAssetExists = errors.New("state: asset already registered")
	// ErrAssetUnknown is returned for custody moves on unregistered assets.
	ErrAssetUnknown = errors.New("state: asset not registered")
	// ErrAssetInCustody rejects locking an asset that is already escrowed.
	ErrAssetInCustody = errors.New("state: asset already in custody")
	// ErrAssetNotInCustody rejects releasing an asset that is not escrowed.
	ErrAssetNotInCustody = errors.New("state: asset not in custody")
	// ErrNotAssetOwner rejects locking an asset away from a non-owner.
	ErrNotAssetOwner = errors.New("state: lock requested by non-owner")
)

// escrowAddr is the owner of record for assets while they sit in custody.
var escrowAddr = crypto.ModuleAddress("escrow")

type assetOwnerRecord struct {
	Owner []byte
}

type custodyRecord struct {
	// Beneficiary is the account the asset was escrowed on behalf of, i.e.
	// the pledger. Release may hand the asset to someone else entirely.
	Beneficiary []byte
}

// RegisterAsset records a new uniquely identified asset under its owner and
// credits the owner's holdings for the class. Used at genesis seeding.
func (m *Manager) RegisterAsset(owner crypto.Address, assetClass string, assetID uint64) error {
	ownerKey := fmt.Sprintf(assetOwnerKeyFormat, assetClass, assetID)
	exists := new(assetOwnerRecord)
	found, err := m.getRLP(ownerKey, exists)
	if err != nil {
		return err
	}
	if found {
		return ErrAssetExists
	}
	if err := m.putRLP(ownerKey, &assetOwnerRecord{Owner: owner.Bytes()}); err != nil {
		return err
	}
	return m.adjustHoldings(owner, assetClass, 1)
}

// OwnerOf returns the current owner of record for the asset.
func (m *Manager) OwnerOf(assetClass string, assetID uint64) (crypto.Address, bool) {
	record := new(assetOwnerRecord)
	found, err := m.getRLP(fmt.Sprintf(assetOwnerKeyFormat, assetClass, assetID), record)
	if err != nil || !found {
		return crypto.Address{}, false
	}
	return decodeAddress(record.Owner), true
}

// Holdings counts the assets of the class the owner controls outside escrow.
func (m *Manager) Holdings(owner crypto.Address, assetClass string) uint64 {
	count, err := m.getCounter(fmt.Sprintf(assetHoldingsKeyFormat, owner.Bytes(), assetClass))
	if err != nil {
		return 0
	}
	return count
}

// Custodian reports on whose behalf the asset is currently escrowed.
func (m *Manager) Custodian(assetClass string, assetID uint64) (crypto.Address, bool) {
	record := new(custodyRecord)
	found, err := m.getRLP(fmt.Sprintf(assetCustodyKeyFormat, assetClass, assetID), record)
	if err != nil || !found {
		return crypto.Address{}, false
	}
	return decodeAddress(record.Beneficiary), true
}

// Lock transfers the asset from its owner into escrow. Ownership of record
// moves to the escrow account and the owner's holdings are debited, exactly
// once, together with the custody record write.
func (m *Manager) Lock(owner crypto.Address, assetClass string, assetID uint64) error {
	record, found := m.OwnerOf(assetClass, assetID)
	if !found {
		return ErrAssetUnknown
	}
	if !record.Equal(owner) {
		return ErrNotAssetOwner
	}
	if _, held := m.Custodian(assetClass, assetID); held {
		return ErrAssetInCustody
	}
	custodyKey := fmt.Sprintf(assetCustodyKeyFormat, assetClass, assetID)
	if err := m.putRLP(custodyKey, &custodyRecord{Beneficiary: owner.Bytes()}); err != nil {
		return err
	}
	ownerKey := fmt.Sprintf(assetOwnerKeyFormat, assetClass, assetID)
	if err := m.putRLP(ownerKey, &assetOwnerRecord{Owner: escrowAddr.Bytes()}); err != nil {
		return err
	}
	return m.adjustHoldings(owner, assetClass, -1)
}

// Release hands the escrowed asset to the recipient: ownership of record
// moves, the recipient's holdings are credited, and the custody record is
// cleared.
func (m *Manager) Release(recipient crypto.Address, assetClass string, assetID uint64) error {
	if _, held := m.Custodian(assetClass, assetID); !held {
		return ErrAssetNotInCustody
	}
	ownerKey := fmt.Sprintf(assetOwnerKeyFormat, assetClass, assetID)
	if err := m.putRLP(ownerKey, &assetOwnerRecord{Owner: recipient.Bytes()}); err != nil {
		return err
	}
	if err := m.db.Delete([]byte(fmt.Sprintf(assetCustodyKeyFormat, assetClass, assetID))); err != nil {
		return err
	}
	return m.adjustHoldings(recipient, assetClass, 1)
}

func (m *Manager) adjustHoldings(owner crypto.Address, assetClass string, delta int64) error {
	key := fmt.Sprintf(assetHoldingsKeyFormat, owner.Bytes(), assetClass)
	count, err := m.getCounter(key)
	if err != nil {
		return err
	}
	if delta < 0 && count == 0 {
		return fmt.Errorf("state: holdings underflow for %s/%s", owner, assetClass)
	}
	next := uint64(int64(count) + delta)
	return m.putRLP(key, next)
}
