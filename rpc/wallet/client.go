// Package wallet contains RPC wrappers for the eSIM wallet class contracts.
package wallet

import (
	"crypto/elliptic"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Invoker is used by the contract readers to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// ContractReader provides an interface to call read-only methods of the
// device wallet class contract.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract
// hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// HasAccount invokes `hasAccount` method of contract.
func (c *ContractReader) HasAccount(deviceWallet util.Uint160) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "hasAccount", deviceWallet))
}

// OwnerKeyOf invokes `ownerKeyOf` method of contract.
func (c *ContractReader) OwnerKeyOf(deviceWallet util.Uint160) (*keys.PublicKey, error) {
	b, err := unwrap.Bytes(c.invoker.Call(c.hash, "ownerKeyOf", deviceWallet))
	if err != nil {
		return nil, err
	}

	k, err := keys.NewPublicKeyFromBytes(b, elliptic.P256())
	if err != nil {
		return nil, fmt.Errorf("invalid owner key: %w", err)
	}

	return k, nil
}

// DeviceIDOf invokes `deviceIDOf` method of contract.
func (c *ContractReader) DeviceIDOf(deviceWallet util.Uint160) (string, error) {
	return unwrap.UTF8String(c.invoker.Call(c.hash, "deviceIDOf", deviceWallet))
}

// BalanceOf invokes `balanceOf` method of contract.
func (c *ContractReader) BalanceOf(deviceWallet util.Uint160) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "balanceOf", deviceWallet))
}

// IsAssociated invokes `isAssociated` method of contract.
func (c *ContractReader) IsAssociated(deviceWallet, subWallet util.Uint160) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "isAssociated", deviceWallet, subWallet))
}

// HasValueAccess invokes `hasValueAccess` method of contract.
func (c *ContractReader) HasValueAccess(deviceWallet, subWallet util.Uint160) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "hasValueAccess", deviceWallet, subWallet))
}

// VaultBalance invokes `vaultBalance` method of contract.
func (c *ContractReader) VaultBalance() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "vaultBalance"))
}

// PurchaseRecord is a single entry of a sub-wallet purchase history.
type PurchaseRecord struct {
	ID    string
	Price *big.Int
}

// SubWalletReader provides an interface to call read-only methods of the
// sub-wallet class contract.
type SubWalletReader struct {
	invoker Invoker
	hash    util.Uint160
}

// NewSubWalletReader creates an instance of SubWalletReader using provided
// contract hash and the given Invoker.
func NewSubWalletReader(invoker Invoker, hash util.Uint160) *SubWalletReader {
	return &SubWalletReader{invoker, hash}
}

// HasAccount invokes `hasAccount` method of contract.
func (c *SubWalletReader) HasAccount(subWallet util.Uint160) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "hasAccount", subWallet))
}

// OwnerOf invokes `ownerOf` method of contract.
func (c *SubWalletReader) OwnerOf(subWallet util.Uint160) (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "ownerOf", subWallet))
}

// ExternalIdentifier invokes `externalIdentifier` method of contract.
func (c *SubWalletReader) ExternalIdentifier(subWallet util.Uint160) (string, error) {
	return unwrap.UTF8String(c.invoker.Call(c.hash, "externalIdentifier", subWallet))
}

// BalanceOf invokes `balanceOf` method of contract.
func (c *SubWalletReader) BalanceOf(subWallet util.Uint160) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "balanceOf", subWallet))
}

// IsTransferApproved invokes `isTransferApproved` method of contract.
func (c *SubWalletReader) IsTransferApproved(subWallet, from, to util.Uint160) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "isTransferApproved", subWallet, from, to))
}

// HistoryOf invokes `historyOf` method of contract and converts the result
// into a list of purchase records, oldest first.
func (c *SubWalletReader) HistoryOf(subWallet util.Uint160) ([]PurchaseRecord, error) {
	items, err := unwrap.Array(c.invoker.Call(c.hash, "historyOf", subWallet))
	if err != nil {
		return nil, err
	}

	records := make([]PurchaseRecord, 0, len(items))
	for i := range items {
		rec, err := purchaseRecordFromStackItem(items[i])
		if err != nil {
			return nil, fmt.Errorf("invalid history record #%d: %w", i, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func purchaseRecordFromStackItem(itm stackitem.Item) (PurchaseRecord, error) {
	fields, ok := itm.Value().([]stackitem.Item)
	if !ok || len(fields) != 2 {
		return PurchaseRecord{}, fmt.Errorf("unexpected stack item (%s)", itm.Type())
	}

	id, err := fields[0].TryBytes()
	if err != nil {
		return PurchaseRecord{}, fmt.Errorf("invalid item identifier: %w", err)
	}

	price, err := fields[1].TryInteger()
	if err != nil {
		return PurchaseRecord{}, fmt.Errorf("invalid price: %w", err)
	}

	return PurchaseRecord{ID: string(id), Price: price}, nil
}
