package wallet

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/esimchain/esim-contract/common"
)

// Wallet is a device wallet account record.
type Wallet struct {
	OwnerKey        interop.PublicKey
	DeviceID        string
	Initialized     bool
	Balance         int
	PendingOwnerKey interop.PublicKey
}

// Prefixes used for contract data storage.
const (
	// prefixWallet contains map from device wallet address to serialized
	// Wallet structure.
	prefixWallet byte = 'w'
	// prefixAssociation contains set of (device wallet, sub-wallet) pairs,
	// the value flags pull access for the sub-wallet.
	prefixAssociation byte = 'a'
)

const (
	registryKey         = "registryScriptHash"
	walletFactoryKey    = "walletFactoryScriptHash"
	subWalletFactoryKey = "subWalletFactoryScriptHash"
	subWalletKey        = "subWalletScriptHash"
	vaultBalanceKey     = "vaultBalance"
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()
	args := data.([]any)
	if isUpdate {
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	registry := args[0].(interop.Hash160)
	walletFactory := args[1].(interop.Hash160)
	subWalletFactory := args[2].(interop.Hash160)
	subWalletContract := args[3].(interop.Hash160)

	if len(registry) != interop.Hash160Len ||
		len(walletFactory) != interop.Hash160Len ||
		len(subWalletFactory) != interop.Hash160Len ||
		len(subWalletContract) != interop.Hash160Len {
		panic("incorrect length of contract script hash")
	}

	storage.Put(ctx, registryKey, registry)
	storage.Put(ctx, walletFactoryKey, walletFactory)
	storage.Put(ctx, subWalletFactoryKey, subWalletFactory)
	storage.Put(ctx, subWalletKey, subWalletContract)

	runtime.Log("device wallet contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("device wallet contract updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// Deploy creates a device wallet account record. It can be invoked only by
// the wallet factory. The address must be the deterministic address of the
// supplied owner key, device identifier and salt.
func Deploy(ownerKey interop.PublicKey, deviceID string, salt int) interop.Hash160 {
	ctx := storage.GetContext()
	checkCaller(ctx, walletFactoryKey)

	if len(ownerKey) != interop.PublicKeyCompressedLen {
		panic("incorrect length of owner public key")
	}
	if len(deviceID) == 0 {
		panic("empty device identifier")
	}

	addr := common.WalletAddress(ownerKey, deviceID, salt)
	key := append([]byte{prefixWallet}, addr...)
	if storage.Get(ctx, key) != nil {
		panic("wallet already deployed")
	}

	w := Wallet{
		OwnerKey:        ownerKey,
		DeviceID:        deviceID,
		Initialized:     false,
		Balance:         0,
		PendingOwnerKey: nil,
	}
	common.SetSerialized(ctx, key, w)

	return addr
}

// Init finishes device wallet setup by deploying its default sub-wallet with
// value access. It can be invoked only by the wallet factory and only once
// per wallet.
func Init(wallet interop.Hash160) {
	ctx := storage.GetContext()
	checkCaller(ctx, walletFactoryKey)

	w := getWallet(ctx, wallet)
	if w.Initialized {
		panic("wallet already initialized")
	}

	w.Initialized = true
	common.SetSerialized(ctx, append([]byte{prefixWallet}, wallet...), w)

	subWalletFactory := storage.Get(ctx, subWalletFactoryKey).(interop.Hash160)
	contract.Call(subWalletFactory, "deploy", contract.All, wallet, 0, true)
}

// DeploySubWallet creates an additional sub-wallet for the device wallet. It
// can be invoked only by the wallet owner.
func DeploySubWallet(wallet interop.Hash160, salt int, hasValueAccess bool) interop.Hash160 {
	ctx := storage.GetContext()
	w := getWallet(ctx, wallet)
	common.CheckOwnerWitness(common.KeyAccount(w.OwnerKey))

	subWalletFactory := storage.Get(ctx, subWalletFactoryKey).(interop.Hash160)
	return contract.Call(subWalletFactory, "deploy", contract.All, wallet, salt, hasValueAccess).(interop.Hash160)
}

// AssociateSubWallet attaches a sub-wallet to the device wallet with the
// given value access. It can be invoked only by the sub-wallet factory.
func AssociateSubWallet(wallet, subWallet interop.Hash160, hasValueAccess bool) {
	ctx := storage.GetContext()
	checkCaller(ctx, subWalletFactoryKey)

	getWallet(ctx, wallet)
	putAssociation(ctx, wallet, subWallet, hasValueAccess)
}

// ToggleValueAccess grants or revokes a sub-wallet's right to pull funds from
// the device wallet. It can be invoked only by the wallet owner.
func ToggleValueAccess(wallet, subWallet interop.Hash160, hasValueAccess bool) {
	ctx := storage.GetContext()
	w := getWallet(ctx, wallet)
	common.CheckOwnerWitness(common.KeyAccount(w.OwnerKey))

	if storage.Get(ctx, associationKey(wallet, subWallet)) == nil {
		panic("sub-wallet is not associated with the wallet")
	}

	putAssociation(ctx, wallet, subWallet, hasValueAccess)
}

// PayForService moves funds from the device wallet balance to the platform
// vault on behalf of a sub-wallet purchase. It can be invoked only by the
// sub-wallet class contract, for a sub-wallet associated with the wallet and
// granted value access.
func PayForService(wallet, subWallet interop.Hash160, amount int) {
	ctx := storage.GetContext()
	checkCaller(ctx, subWalletKey)
	checkValueAccess(ctx, wallet, subWallet)

	w := getWallet(ctx, wallet)
	if amount <= 0 {
		panic("non positive amount number")
	}
	if amount > w.Balance {
		panic("insufficient wallet balance")
	}

	registry := storage.Get(ctx, registryKey).(interop.Hash160)
	vault := contract.Call(registry, "vault", contract.ReadOnly).(interop.Hash160)
	if len(vault) != interop.Hash160Len || common.IsZeroAddress(vault) {
		panic("vault address is not set")
	}

	w.Balance -= amount
	common.SetSerialized(ctx, append([]byte{prefixWallet}, wallet...), w)
	addVaultBalance(ctx, amount)

	runtime.Notify("transferCompleted", wallet, vault, amount)
}

// Pull moves funds from the device wallet balance to the sub-wallet. It can
// be invoked only by the sub-wallet class contract, for a sub-wallet
// associated with the wallet and granted value access. The sub-wallet
// credits itself on return.
func Pull(wallet, subWallet interop.Hash160, amount int) {
	ctx := storage.GetContext()
	checkCaller(ctx, subWalletKey)
	checkValueAccess(ctx, wallet, subWallet)

	w := getWallet(ctx, wallet)
	if amount <= 0 {
		panic("non positive amount number")
	}
	if amount > w.Balance {
		panic("insufficient wallet balance")
	}

	w.Balance -= amount
	common.SetSerialized(ctx, append([]byte{prefixWallet}, wallet...), w)

	runtime.Notify("transferCompleted", wallet, subWallet, amount)
}

// RecordServicePayment adds a payment settled from a sub-wallet balance to
// the platform vault tally. It can be invoked only by the sub-wallet class
// contract.
func RecordServicePayment(wallet, subWallet interop.Hash160, amount int) {
	ctx := storage.GetContext()
	checkCaller(ctx, subWalletKey)

	getWallet(ctx, wallet)

	if amount <= 0 {
		panic("non positive amount number")
	}

	addVaultBalance(ctx, amount)
}

// Deposit credits the device wallet internal balance. It can be invoked only
// by the wallet factory, which holds the backing GAS.
func Deposit(wallet interop.Hash160, amount int) {
	ctx := storage.GetContext()
	checkCaller(ctx, walletFactoryKey)

	if amount <= 0 {
		panic("non positive amount number")
	}

	w := getWallet(ctx, wallet)
	w.Balance += amount
	common.SetSerialized(ctx, append([]byte{prefixWallet}, wallet...), w)
}

// ReleaseSubWallet detaches a sub-wallet from the device wallet, leaving the
// registry association pending for a claim by another device wallet. The
// sub-wallet is put on standby before the registry record is released. It
// can be invoked only by the wallet owner.
func ReleaseSubWallet(wallet, subWallet interop.Hash160) {
	ctx := storage.GetContext()
	w := getWallet(ctx, wallet)
	common.CheckOwnerWitness(common.KeyAccount(w.OwnerKey))

	if storage.Get(ctx, associationKey(wallet, subWallet)) == nil {
		panic("sub-wallet is not associated with the wallet")
	}

	registry := storage.Get(ctx, registryKey).(interop.Hash160)
	contract.Call(registry, "toggleSubWalletStandbyStatus", contract.All, wallet, subWallet, true)
	contract.Call(registry, "updateSubWalletAssociatedWithDeviceWallet", contract.All,
		wallet, subWallet, common.ZeroAddress())

	storage.Delete(ctx, associationKey(wallet, subWallet))

	runtime.Notify("subWalletReleased", wallet, subWallet)
}

// ClaimSubWallet attaches a released sub-wallet to this device wallet. The
// sub-wallet's recorded owner must already be the claiming wallet. It can be
// invoked only by the wallet owner.
func ClaimSubWallet(wallet, subWallet interop.Hash160, hasValueAccess bool) {
	ctx := storage.GetContext()
	w := getWallet(ctx, wallet)
	common.CheckOwnerWitness(common.KeyAccount(w.OwnerKey))

	subWalletContract := storage.Get(ctx, subWalletKey).(interop.Hash160)
	owner := contract.Call(subWalletContract, "ownerOf", contract.ReadOnly, subWallet).(interop.Hash160)
	if !common.BytesEqual(owner, wallet) {
		panic("sub-wallet is not owned by the wallet")
	}

	registry := storage.Get(ctx, registryKey).(interop.Hash160)
	contract.Call(registry, "updateSubWalletAssociatedWithDeviceWallet", contract.All,
		wallet, subWallet, wallet)
	contract.Call(registry, "toggleSubWalletStandbyStatus", contract.All, wallet, subWallet, false)

	putAssociation(ctx, wallet, subWallet, hasValueAccess)

	runtime.Notify("subWalletClaimed", wallet, subWallet)
}

// SetSubWalletExternalIdentifier assigns the external identifier of a
// sub-wallet associated with the device wallet. It can be invoked only by
// the wallet owner.
func SetSubWalletExternalIdentifier(wallet, subWallet interop.Hash160, externalID string) {
	ctx := storage.GetContext()
	w := getWallet(ctx, wallet)
	common.CheckOwnerWitness(common.KeyAccount(w.OwnerKey))

	if storage.Get(ctx, associationKey(wallet, subWallet)) == nil {
		panic("sub-wallet is not associated with the wallet")
	}

	subWalletContract := storage.Get(ctx, subWalletKey).(interop.Hash160)
	contract.Call(subWalletContract, "setExternalIdentifier", contract.All, subWallet, externalID)
}

// RequestOwnerUpdate starts a two-step owner key rotation for the device
// wallet. It can be invoked only by the current owner. A repeated request
// overwrites the pending candidate; requesting the current key revokes the
// pending request.
func RequestOwnerUpdate(wallet interop.Hash160, newKey interop.PublicKey) {
	ctx := storage.GetContext()
	w := getWallet(ctx, wallet)
	common.CheckOwnerWitness(common.KeyAccount(w.OwnerKey))

	if len(newKey) != interop.PublicKeyCompressedLen {
		panic("incorrect length of owner public key")
	}

	if common.BytesEqual(newKey, w.OwnerKey) {
		w.PendingOwnerKey = nil
	} else {
		w.PendingOwnerKey = newKey
	}
	common.SetSerialized(ctx, append([]byte{prefixWallet}, wallet...), w)

	runtime.Notify("ownerUpdateRequested", wallet, newKey)
}

// AcceptOwnerUpdate completes the two-step owner key rotation. It can be
// invoked only by the pending key holder. The registry key binding is moved
// to the new key atomically with the wallet record.
func AcceptOwnerUpdate(wallet interop.Hash160) {
	ctx := storage.GetContext()
	w := getWallet(ctx, wallet)
	if w.PendingOwnerKey == nil || len(w.PendingOwnerKey) == 0 {
		panic("no pending owner update")
	}

	common.CheckOwnerWitness(common.KeyAccount(w.PendingOwnerKey))

	oldKey := w.OwnerKey
	newKey := w.PendingOwnerKey

	registry := storage.Get(ctx, registryKey).(interop.Hash160)
	contract.Call(registry, "updateDeviceWalletOwnerKey", contract.All, wallet, oldKey, newKey)

	w.OwnerKey = newKey
	w.PendingOwnerKey = nil
	common.SetSerialized(ctx, append([]byte{prefixWallet}, wallet...), w)

	runtime.Notify("ownerUpdated", wallet, newKey)
}

// HasAccount returns true if a device wallet record exists at the address.
func HasAccount(wallet interop.Hash160) bool {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, append([]byte{prefixWallet}, wallet...)) != nil
}

// OwnerKeyOf returns the owner public key of the device wallet.
func OwnerKeyOf(wallet interop.Hash160) interop.PublicKey {
	ctx := storage.GetReadOnlyContext()
	return getWallet(ctx, wallet).OwnerKey
}

// DeviceIDOf returns the device identifier of the device wallet.
func DeviceIDOf(wallet interop.Hash160) string {
	ctx := storage.GetReadOnlyContext()
	return getWallet(ctx, wallet).DeviceID
}

// BalanceOf returns the internal balance of the device wallet.
func BalanceOf(wallet interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return getWallet(ctx, wallet).Balance
}

// IsAssociated returns true if the sub-wallet is attached to the device
// wallet.
func IsAssociated(wallet, subWallet interop.Hash160) bool {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, associationKey(wallet, subWallet)) != nil
}

// HasValueAccess returns true if the sub-wallet is attached to the device
// wallet and may pull funds from it.
func HasValueAccess(wallet, subWallet interop.Hash160) bool {
	ctx := storage.GetReadOnlyContext()
	val := storage.Get(ctx, associationKey(wallet, subWallet))
	if val == nil {
		return false
	}

	return val.([]byte)[0] != 0
}

// VaultBalance returns the total amount moved to the platform vault through
// service payments, whether settled from a device wallet or a sub-wallet
// balance.
func VaultBalance() int {
	ctx := storage.GetReadOnlyContext()
	val := storage.Get(ctx, vaultBalanceKey)
	if val == nil {
		return 0
	}

	return val.(int)
}

func getWallet(ctx storage.Context, wallet interop.Hash160) Wallet {
	val := storage.Get(ctx, append([]byte{prefixWallet}, wallet...))
	if val == nil {
		panic("unknown device wallet")
	}

	return std.Deserialize(val.([]byte)).(Wallet)
}

func associationKey(wallet, subWallet interop.Hash160) []byte {
	return append(append([]byte{prefixAssociation}, wallet...), subWallet...)
}

func putAssociation(ctx storage.Context, wallet, subWallet interop.Hash160, hasValueAccess bool) {
	flag := []byte{0}
	if hasValueAccess {
		flag = []byte{1}
	}

	storage.Put(ctx, associationKey(wallet, subWallet), flag)
}

func checkValueAccess(ctx storage.Context, wallet, subWallet interop.Hash160) {
	val := storage.Get(ctx, associationKey(wallet, subWallet))
	if val == nil {
		panic("sub-wallet is not associated with the wallet")
	}
	if val.([]byte)[0] == 0 {
		panic("sub-wallet has no value access")
	}
}

func addVaultBalance(ctx storage.Context, amount int) {
	total := 0
	if val := storage.Get(ctx, vaultBalanceKey); val != nil {
		total = val.(int)
	}

	storage.Put(ctx, vaultBalanceKey, total+amount)
}

func checkCaller(ctx storage.Context, key string) {
	expected := storage.Get(ctx, key).(interop.Hash160)
	if !common.BytesEqual(runtime.GetCallingScriptHash(), expected) {
		panic("unauthorized caller")
	}
}
