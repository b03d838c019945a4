package registry

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/esimchain/esim-contract/common"
)

type (
	// PurchaseRecord is a single entry of a sub-wallet purchase history,
	// structurally identical to the sub-wallet contract type.
	PurchaseRecord struct {
		ID    string
		Price int
	}
)

// Prefixes used for contract data storage.
const (
	// prefixDevice contains map from device identifier to device wallet address.
	prefixDevice byte = 'd'
	// prefixKeyHash contains map from owner key hash to device wallet address.
	prefixKeyHash byte = 'k'
	// prefixValid contains set of device wallets created through the suite.
	prefixValid byte = 'v'
	// prefixAssociation contains map from sub-wallet to its controlling
	// device wallet, or to the zero-address sentinel while an ownership
	// transfer is pending.
	prefixAssociation byte = 'o'
	// prefixStandby contains set of sub-wallets detached from any device wallet.
	prefixStandby byte = 's'
)

const (
	adminKey             = "adminAddress"
	vaultKey             = "vaultAddress"
	secondaryAgentKey    = "secondaryAgentAddress"
	walletFactoryKey     = "walletFactoryScriptHash"
	subWalletFactoryKey  = "subWalletFactoryScriptHash"
	walletContractKey    = "walletScriptHash"
	subWalletContractKey = "subWalletScriptHash"
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()
	args := data.([]any)
	if isUpdate {
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	admin := args[0].(interop.Hash160)
	vault := args[1].(interop.Hash160)
	walletFactory := args[2].(interop.Hash160)
	subWalletFactory := args[3].(interop.Hash160)
	walletContract := args[4].(interop.Hash160)
	subWalletContract := args[5].(interop.Hash160)

	if len(admin) != interop.Hash160Len || len(vault) != interop.Hash160Len {
		panic("incorrect length of account script hash")
	}
	if len(walletFactory) != interop.Hash160Len ||
		len(subWalletFactory) != interop.Hash160Len ||
		len(walletContract) != interop.Hash160Len ||
		len(subWalletContract) != interop.Hash160Len {
		panic("incorrect length of contract script hash")
	}

	storage.Put(ctx, adminKey, admin)
	storage.Put(ctx, vaultKey, vault)
	storage.Put(ctx, walletFactoryKey, walletFactory)
	storage.Put(ctx, subWalletFactoryKey, subWalletFactory)
	storage.Put(ctx, walletContractKey, walletContract)
	storage.Put(ctx, subWalletContractKey, subWalletContract)

	runtime.Log("registry contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("registry contract updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// AddOrUpdateSecondaryRegistryAddress sets the account trusted to run lazy
// batch provisioning. It can be invoked only by the platform admin.
func AddOrUpdateSecondaryRegistryAddress(addr interop.Hash160) {
	ctx := storage.GetContext()
	common.CheckAdminWitness(storage.Get(ctx, adminKey).(interop.Hash160))

	if len(addr) != interop.Hash160Len || common.IsZeroAddress(addr) {
		panic("zero secondary registry address")
	}

	storage.Put(ctx, secondaryAgentKey, addr)
	runtime.Log("secondary registry address updated")
}

// UpdateDeviceWalletInfo binds a device identifier and an owner key to a
// freshly deployed device wallet and marks the wallet valid. It can be
// invoked only by the device wallet factory. Both identifiers must be unbound,
// re-registration is rejected.
func UpdateDeviceWalletInfo(deviceWallet interop.Hash160, deviceID string, ownerKey interop.PublicKey) {
	ctx := storage.GetContext()
	checkCaller(ctx, walletFactoryKey)

	if len(deviceWallet) != interop.Hash160Len {
		panic("incorrect length of device wallet script hash")
	}
	if len(deviceID) == 0 {
		panic("empty device identifier")
	}
	if len(ownerKey) != interop.PublicKeyCompressedLen {
		panic("incorrect owner public key")
	}

	deviceKey := append([]byte{prefixDevice}, []byte(deviceID)...)
	if storage.Get(ctx, deviceKey) != nil {
		panic("device already has a wallet")
	}

	hashKey := append([]byte{prefixKeyHash}, common.KeyHash(ownerKey)...)
	if storage.Get(ctx, hashKey) != nil {
		panic("owner key already has a wallet")
	}

	storage.Put(ctx, deviceKey, deviceWallet)
	storage.Put(ctx, hashKey, deviceWallet)
	storage.Put(ctx, append([]byte{prefixValid}, deviceWallet...), []byte{1})

	runtime.Notify("deviceWalletRegistered", deviceWallet, deviceID)
}

// UpdateDeviceWalletOwnerKey rebinds the owner key map after a completed
// wallet-level ownership transfer. It can be invoked only by the device
// wallet contract. The new key must not be bound to any wallet.
func UpdateDeviceWalletOwnerKey(deviceWallet interop.Hash160, oldKey, newKey interop.PublicKey) {
	ctx := storage.GetContext()
	checkCaller(ctx, walletContractKey)

	oldHashKey := append([]byte{prefixKeyHash}, common.KeyHash(oldKey)...)
	bound := storage.Get(ctx, oldHashKey)
	if bound == nil || !common.BytesEqual(bound.([]byte), deviceWallet) {
		panic("owner key is not bound to the device wallet")
	}

	newHashKey := append([]byte{prefixKeyHash}, common.KeyHash(newKey)...)
	if storage.Get(ctx, newHashKey) != nil {
		panic("owner key already has a wallet")
	}

	storage.Delete(ctx, oldHashKey)
	storage.Put(ctx, newHashKey, deviceWallet)

	runtime.Notify("deviceWalletOwnerKeyUpdated", deviceWallet)
}

// AssociateSubWallet records a freshly deployed sub-wallet against its
// device wallet. It can be invoked only by the sub-wallet factory.
func AssociateSubWallet(deviceWallet, subWallet interop.Hash160) {
	ctx := storage.GetContext()
	checkCaller(ctx, subWalletFactoryKey)

	assocKey := append([]byte{prefixAssociation}, subWallet...)
	if storage.Get(ctx, assocKey) != nil {
		panic("sub-wallet already associated")
	}

	storage.Put(ctx, assocKey, deviceWallet)
}

// UpdateSubWalletAssociatedWithDeviceWallet reassigns a sub-wallet between
// device wallets. It can be invoked only by the device wallet contract acting
// for deviceWallet. Passing the zero address releases the sub-wallet and
// leaves an ownership transfer pending; while the transfer is pending, the
// only accepted call is the claim by the sub-wallet's current on-chain owner.
func UpdateSubWalletAssociatedWithDeviceWallet(deviceWallet, subWallet, newDeviceWallet interop.Hash160) {
	ctx := storage.GetContext()
	checkCaller(ctx, walletContractKey)

	assocKey := append([]byte{prefixAssociation}, subWallet...)
	current := storage.Get(ctx, assocKey)
	if current == nil {
		panic("unknown sub-wallet")
	}

	release := common.IsZeroAddress(newDeviceWallet)
	if !release && !common.BytesEqual(newDeviceWallet, deviceWallet) {
		panic("new device wallet must be the caller or the zero address")
	}

	if common.IsZeroAddress(current.([]byte)) {
		// Ownership transfer pending: only the claim by the new on-chain
		// owner resolves it, any other update would race the transfer.
		if release || !common.BytesEqual(subWalletOwner(ctx, subWallet), deviceWallet) {
			panic("ownership transfer pending")
		}
	} else if !common.BytesEqual(current.([]byte), deviceWallet) {
		panic("caller is not the controlling device wallet")
	}

	if release {
		storage.Put(ctx, assocKey, common.ZeroAddress())
	} else {
		storage.Put(ctx, assocKey, newDeviceWallet)
	}

	runtime.Notify("subWalletAssociationUpdated", subWallet, newDeviceWallet)
}

// ToggleSubWalletStandbyStatus flips the standby flag of a sub-wallet being
// moved between device wallets. It can be invoked only by the device wallet
// contract acting for the recorded controlling device wallet.
func ToggleSubWalletStandbyStatus(deviceWallet, subWallet interop.Hash160, isOnStandby bool) {
	ctx := storage.GetContext()
	checkCaller(ctx, walletContractKey)

	assocKey := append([]byte{prefixAssociation}, subWallet...)
	current := storage.Get(ctx, assocKey)
	if current == nil || !common.BytesEqual(current.([]byte), deviceWallet) {
		panic("caller is not the controlling device wallet")
	}

	standbyKey := append([]byte{prefixStandby}, subWallet...)
	if isOnStandby {
		storage.Put(ctx, standbyKey, []byte{1})
	} else {
		storage.Delete(ctx, standbyKey)
	}
}

// DeployLazyWallet provisions a device wallet together with its sub-wallets
// and their historical purchases in a single transaction. It can be invoked
// only by the secondary registry agent. Sub-wallet salts are offset by the
// element index, so all resulting addresses are distinct and predictable.
// Any failing step aborts the whole batch.
func DeployLazyWallet(ownerKey interop.PublicKey, deviceID string, salt int, externalIds []string, histories [][]PurchaseRecord) []interop.Hash160 {
	ctx := storage.GetContext()

	agent := storage.Get(ctx, secondaryAgentKey)
	if agent == nil {
		panic("secondary registry address is not set")
	}
	common.CheckWitness(agent.(interop.Hash160))

	if len(externalIds) != len(histories) {
		panic("length mismatch of external identifiers and histories")
	}
	if len(externalIds) == 0 {
		panic("empty batch")
	}

	deviceKey := append([]byte{prefixDevice}, []byte(deviceID)...)
	if storage.Get(ctx, deviceKey) != nil {
		panic("device already has a wallet")
	}

	walletFactory := storage.Get(ctx, walletFactoryKey).(interop.Hash160)
	subWalletFactory := storage.Get(ctx, subWalletFactoryKey).(interop.Hash160)
	subWalletContract := storage.Get(ctx, subWalletContractKey).(interop.Hash160)

	deviceWallet := contract.Call(walletFactory, "deployDeviceWallet",
		contract.All, ownerKey, deviceID, salt, false).(interop.Hash160)

	subWallets := make([]interop.Hash160, 0)
	for i := 0; i < len(externalIds); i++ {
		// The first sub-wallet keeps the default value access of a freshly
		// provisioned wallet, the rest start without it.
		subWallet := contract.Call(subWalletFactory, "deploy",
			contract.All, deviceWallet, salt+i, i == 0).(interop.Hash160)

		contract.Call(subWalletContract, "setExternalIdentifier",
			contract.All, subWallet, externalIds[i])

		if len(histories[i]) > 0 {
			contract.Call(subWalletContract, "backfillHistory",
				contract.All, subWallet, histories[i])
		}

		subWallets = append(subWallets, subWallet)
	}

	runtime.Notify("lazyWalletDeployed", deviceWallet, deviceID)

	return subWallets
}

// DeviceWalletByID returns the device wallet bound to the device identifier
// or zero-length hash if there is none.
func DeviceWalletByID(deviceID string) interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	data := storage.Get(ctx, append([]byte{prefixDevice}, []byte(deviceID)...))
	if data == nil {
		return nil
	}

	return data.(interop.Hash160)
}

// DeviceWalletByKey returns the device wallet bound to the owner key or
// zero-length hash if there is none.
func DeviceWalletByKey(ownerKey interop.PublicKey) interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	data := storage.Get(ctx, append([]byte{prefixKeyHash}, common.KeyHash(ownerKey)...))
	if data == nil {
		return nil
	}

	return data.(interop.Hash160)
}

// IsValidDeviceWallet reports whether the address belongs to a device wallet
// provisioned through the suite.
func IsValidDeviceWallet(deviceWallet interop.Hash160) bool {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, append([]byte{prefixValid}, deviceWallet...)) != nil
}

// DeviceWalletOf returns the controlling device wallet of the sub-wallet.
// The zero address means an ownership transfer is pending.
func DeviceWalletOf(subWallet interop.Hash160) interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	data := storage.Get(ctx, append([]byte{prefixAssociation}, subWallet...))
	if data == nil {
		panic("unknown sub-wallet")
	}

	return data.(interop.Hash160)
}

// IsOnStandby reports whether the sub-wallet is detached from any device wallet.
func IsOnStandby(subWallet interop.Hash160) bool {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, append([]byte{prefixStandby}, subWallet...)) != nil
}

// Vault returns the payment sink address.
func Vault() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, vaultKey).(interop.Hash160)
}

// SecondaryAgent returns the secondary registry agent address or zero-length
// hash if it was never set.
func SecondaryAgent() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	data := storage.Get(ctx, secondaryAgentKey)
	if data == nil {
		return nil
	}

	return data.(interop.Hash160)
}

// WalletFactory returns the device wallet factory script hash.
func WalletFactory() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, walletFactoryKey).(interop.Hash160)
}

// SubWalletFactory returns the sub-wallet factory script hash.
func SubWalletFactory() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, subWalletFactoryKey).(interop.Hash160)
}

// WalletContract returns the device wallet class contract script hash.
func WalletContract() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, walletContractKey).(interop.Hash160)
}

// SubWalletContract returns the sub-wallet class contract script hash.
func SubWalletContract() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, subWalletContractKey).(interop.Hash160)
}

func checkCaller(ctx storage.Context, key string) {
	expected := storage.Get(ctx, key).(interop.Hash160)
	if !common.BytesEqual(runtime.GetCallingScriptHash(), expected) {
		panic("method must be invoked by a trusted contract")
	}
}

func subWalletOwner(ctx storage.Context, subWallet interop.Hash160) interop.Hash160 {
	subWalletContract := storage.Get(ctx, subWalletContractKey).(interop.Hash160)
	return contract.Call(subWalletContract, "ownerOf", contract.ReadOnly, subWallet).(interop.Hash160)
}
