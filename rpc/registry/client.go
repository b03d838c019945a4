// Package registry contains RPC wrappers for the eSIM Registry contract.
package registry

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// ContractReader provides an interface to call read-only methods of the
// registry contract.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract
// hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// DeviceWalletByID invokes `deviceWalletByID` method of contract. The second
// result is false if the device identifier has no wallet bound.
func (c *ContractReader) DeviceWalletByID(deviceID string) (util.Uint160, bool, error) {
	return c.optionalHash("deviceWalletByID", deviceID)
}

// DeviceWalletByKey invokes `deviceWalletByKey` method of contract. The
// second result is false if the owner key has no wallet bound.
func (c *ContractReader) DeviceWalletByKey(ownerKey []byte) (util.Uint160, bool, error) {
	return c.optionalHash("deviceWalletByKey", ownerKey)
}

// IsValidDeviceWallet invokes `isValidDeviceWallet` method of contract.
func (c *ContractReader) IsValidDeviceWallet(deviceWallet util.Uint160) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "isValidDeviceWallet", deviceWallet))
}

// DeviceWalletOf invokes `deviceWalletOf` method of contract. The zero
// address means an ownership transfer of the sub-wallet is pending.
func (c *ContractReader) DeviceWalletOf(subWallet util.Uint160) (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "deviceWalletOf", subWallet))
}

// IsOnStandby invokes `isOnStandby` method of contract.
func (c *ContractReader) IsOnStandby(subWallet util.Uint160) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "isOnStandby", subWallet))
}

// Vault invokes `vault` method of contract.
func (c *ContractReader) Vault() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "vault"))
}

// SecondaryAgent invokes `secondaryAgent` method of contract. The second
// result is false if no secondary agent was ever set.
func (c *ContractReader) SecondaryAgent() (util.Uint160, bool, error) {
	return c.optionalHash("secondaryAgent")
}

// WalletFactory invokes `walletFactory` method of contract.
func (c *ContractReader) WalletFactory() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "walletFactory"))
}

// SubWalletFactory invokes `subWalletFactory` method of contract.
func (c *ContractReader) SubWalletFactory() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "subWalletFactory"))
}

// WalletContract invokes `walletContract` method of contract.
func (c *ContractReader) WalletContract() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "walletContract"))
}

// SubWalletContract invokes `subWalletContract` method of contract.
func (c *ContractReader) SubWalletContract() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "subWalletContract"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

func (c *ContractReader) optionalHash(operation string, params ...any) (util.Uint160, bool, error) {
	itm, err := unwrap.Item(c.invoker.Call(c.hash, operation, params...))
	if err != nil {
		return util.Uint160{}, false, err
	}
	if itm.Type() == stackitem.AnyT {
		return util.Uint160{}, false, nil
	}

	b, err := itm.TryBytes()
	if err != nil {
		return util.Uint160{}, false, fmt.Errorf("invalid %s result: %w", operation, err)
	}

	h, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return util.Uint160{}, false, fmt.Errorf("invalid %s result: %w", operation, err)
	}

	return h, true, nil
}
