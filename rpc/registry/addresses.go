package registry

import (
	"math/big"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Class tags mixed into deterministic account addresses. The values must
// stay byte-identical with the on-chain derivation.
const (
	walletClassTag    = "esim.wallet"
	subWalletClassTag = "esim.subwallet"
)

// WalletAddress computes the deterministic device wallet address for the
// given owner key, device identifier and salt without touching the chain.
// The result matches GetCounterfactualAddress of the wallet factory byte
// for byte.
func WalletAddress(ownerKey *keys.PublicKey, deviceID string, salt int64) util.Uint160 {
	data := []byte(walletClassTag)
	data = append(data, ownerKey.Bytes()...)
	data = append(data, []byte(deviceID)...)
	data = append(data, saltBytes(salt)...)

	return hash.Hash160(data)
}

// SubWalletAddress computes the deterministic sub-wallet address for the
// given device wallet and salt without touching the chain.
func SubWalletAddress(deviceWallet util.Uint160, salt int64) util.Uint160 {
	data := []byte(subWalletClassTag)
	data = append(data, deviceWallet.BytesBE()...)
	data = append(data, saltBytes(salt)...)

	return hash.Hash160(data)
}

// RecordID renders a wallet or sub-wallet address the way platform tooling
// displays account records.
func RecordID(addr util.Uint160) string {
	return base58.Encode(addr.BytesBE())
}

// ParseRecordID parses a rendered account record back into an address.
func ParseRecordID(s string) (util.Uint160, error) {
	data, err := base58.Decode(s)
	if err != nil {
		return util.Uint160{}, err
	}

	return util.Uint160DecodeBytesBE(data)
}

// saltBytes renders the salt exactly as the NeoVM integer-to-bytes
// conversion does.
func saltBytes(salt int64) []byte {
	return bigint.ToBytes(big.NewInt(salt))
}
