package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/convert"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/crypto"
)

// Class tags mixed into deterministic account addresses. Off-chain address
// computation (rpc/registry package) uses the same values and must stay
// byte-identical with this code.
const (
	// WalletClassTag marks device wallet accounts.
	WalletClassTag = "esim.wallet"
	// SubWalletClassTag marks sub-wallet accounts.
	SubWalletClassTag = "esim.subwallet"
)

// WalletAddress derives the deterministic address of the device wallet
// account constructed from the given owner key, device identifier and salt.
// The address does not depend on the implementation version, so it stays
// stable across class upgrades.
func WalletAddress(ownerKey interop.PublicKey, deviceID string, salt int) interop.Hash160 {
	data := []byte(WalletClassTag)
	data = append(data, ownerKey...)
	data = append(data, []byte(deviceID)...)
	data = append(data, convert.ToBytes(salt)...)

	return crypto.Ripemd160(crypto.Sha256(data))
}

// SubWalletAddress derives the deterministic address of the sub-wallet
// account constructed for the given device wallet with the given salt.
func SubWalletAddress(deviceWallet interop.Hash160, salt int) interop.Hash160 {
	data := []byte(SubWalletClassTag)
	data = append(data, deviceWallet...)
	data = append(data, convert.ToBytes(salt)...)

	return crypto.Ripemd160(crypto.Sha256(data))
}

// KeyHash maps an owner public key to its fixed-size registry key.
func KeyHash(ownerKey interop.PublicKey) interop.Hash256 {
	return crypto.Sha256(ownerKey)
}

// KeyAccount returns the signature account of the owner public key. Witness
// of this account authorizes owner-gated wallet operations.
func KeyAccount(ownerKey interop.PublicKey) interop.Hash160 {
	return contract.CreateStandardAccount(ownerKey)
}

// ZeroAddress returns the all-zero Hash160 used as the "released" sentinel in
// the registry association map.
func ZeroAddress() interop.Hash160 {
	return make([]byte, interop.Hash160Len)
}

// IsZeroAddress reports whether addr is missing or all-zero.
func IsZeroAddress(addr interop.Hash160) bool {
	for i := range addr {
		if addr[i] != 0 {
			return false
		}
	}

	return true
}
