package lending

import "pawnpool/crypto"

// Custody is the external escrow collaborator. Lock pulls an asset from its
// owner into escrow; Release hands an escrowed asset to the recipient, which
// is the original owner on repayment and the liquidator on seizure. Failures
// are surfaced, never retried.
type Custody interface {
	Lock(owner crypto.Address, assetClass string, assetID uint64) error
	Release(recipient crypto.Address, assetClass string, assetID uint64) error
	// Custodian reports on whose behalf the asset is currently escrowed.
	Custodian(assetClass string, assetID uint64) (crypto.Address, bool)
	// OwnerOf returns the external owner of record for the asset.
	OwnerOf(assetClass string, assetID uint64) (crypto.Address, bool)
	// Holdings counts the assets of a class the owner currently controls
	// outside escrow.
	Holdings(owner crypto.Address, assetClass string) uint64
}

type vaultState interface {
	CollateralCount(owner crypto.Address, assetClass string) (uint64, error)
	PutCollateralCount(owner crypto.Address, assetClass string, count uint64) error
}

// CollateralVault tracks how many units of each asset class an owner has
// pledged, delegating the actual custody moves to the escrow collaborator.
// The tracked count and the custody transfer always change together: the
// count is only touched after escrow reports success.
type CollateralVault struct {
	state   vaultState
	custody Custody
}

func NewCollateralVault(custody Custody) *CollateralVault {
	return &CollateralVault{custody: custody}
}

// SetState wires the vault to the external persistence layer.
func (v *CollateralVault) SetState(state vaultState) { v.state = state }

// Pledge escrows the asset and increments the owner's pledged count for the
// class. The capacity check guards against double-pledging a logical slot:
// the tracked count may never exceed what the owner externally holds at
// pledge time.
func (v *CollateralVault) Pledge(owner crypto.Address, assetClass string, assetID uint64) error {
	if v == nil || v.state == nil {
		return errNilState
	}
	if v.custody == nil {
		return errNilCustody
	}
	record, ok := v.custody.OwnerOf(assetClass, assetID)
	if !ok || !record.Equal(owner) {
		return ErrNotOwner
	}
	holdings := v.custody.Holdings(owner, assetClass)
	if holdings == 0 {
		return ErrNoHoldings
	}
	count, err := v.state.CollateralCount(owner, assetClass)
	if err != nil {
		return err
	}
	if count > holdings {
		return ErrCapacityExceeded
	}
	if err := v.custody.Lock(owner, assetClass, assetID); err != nil {
		return ErrCustodyTransferFailed
	}
	return v.state.PutCollateralCount(owner, assetClass, count+1)
}

// Release returns the asset to its owner and decrements the pledged count.
// Only the owner may trigger the release.
func (v *CollateralVault) Release(caller, owner crypto.Address, assetClass string, assetID uint64) error {
	if !caller.Equal(owner) {
		return ErrNotAuthorized
	}
	return v.releaseTo(owner, owner, assetClass, assetID)
}

// Seize hands the escrowed asset to a third party, decrementing the pledged
// count under the original owner's key. Liquidation uses this path because
// the recipient is not the pledger, so the owner gate does not apply.
func (v *CollateralVault) Seize(recipient, owner crypto.Address, assetClass string, assetID uint64) error {
	return v.releaseTo(recipient, owner, assetClass, assetID)
}

func (v *CollateralVault) releaseTo(recipient, owner crypto.Address, assetClass string, assetID uint64) error {
	if v == nil || v.state == nil {
		return errNilState
	}
	if v.custody == nil {
		return errNilCustody
	}
	if _, held := v.custody.Custodian(assetClass, assetID); !held {
		return ErrNotInCustody
	}
	count, err := v.state.CollateralCount(owner, assetClass)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNothingPledged
	}
	if err := v.custody.Release(recipient, assetClass, assetID); err != nil {
		return ErrCustodyTransferFailed
	}
	return v.state.PutCollateralCount(owner, assetClass, count-1)
}
