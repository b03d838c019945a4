package subwallet

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/esimchain/esim-contract/common"
)

// SubWallet is a sub-wallet account record.
type SubWallet struct {
	Owner      interop.Hash160
	ExternalID string
	Balance    int
}

// PurchaseRecord is a single entry of a sub-wallet purchase history.
type PurchaseRecord struct {
	ID    string
	Price int
}

// Prefixes used for contract data storage.
const (
	// prefixSubWallet contains map from sub-wallet address to serialized
	// SubWallet structure.
	prefixSubWallet byte = 'w'
	// prefixHistory contains map from sub-wallet address to serialized
	// purchase history.
	prefixHistory byte = 'h'
	// prefixApproval contains set of (sub-wallet, candidate owner) transfer
	// approvals.
	prefixApproval byte = 't'
)

const (
	registryKey         = "registryScriptHash"
	subWalletFactoryKey = "subWalletFactoryScriptHash"
	walletContractKey   = "walletScriptHash"
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
	subWalletFactory := args[1].(interop.Hash160)
	walletContract := args[2].(interop.Hash160)

	if len(registry) != interop.Hash160Len ||
		len(subWalletFactory) != interop.Hash160Len ||
		len(walletContract) != interop.Hash160Len {
		panic("incorrect length of contract script hash")
	}

	storage.Put(ctx, registryKey, registry)
	storage.Put(ctx, subWalletFactoryKey, subWalletFactory)
	storage.Put(ctx, walletContractKey, walletContract)

	runtime.Log("sub-wallet contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("sub-wallet contract updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// Deploy creates a sub-wallet account record owned by the device wallet. It
// can be invoked only by the sub-wallet factory.
func Deploy(subWallet, deviceWallet interop.Hash160) {
	ctx := storage.GetContext()
	checkCaller(ctx, subWalletFactoryKey)

	if len(subWallet) != interop.Hash160Len || len(deviceWallet) != interop.Hash160Len {
		panic("incorrect length of account script hash")
	}

	key := append([]byte{prefixSubWallet}, subWallet...)
	if storage.Get(ctx, key) != nil {
		panic("sub-wallet already deployed")
	}

	sw := SubWallet{
		Owner:      deviceWallet,
		ExternalID: "",
		Balance:    0,
	}
	common.SetSerialized(ctx, key, sw)
}

// SetExternalIdentifier assigns the off-chain identifier of the sub-wallet.
// It can be invoked only by the registry or the device wallet class
// contract, and only once per sub-wallet.
func SetExternalIdentifier(subWallet interop.Hash160, externalID string) {
	ctx := storage.GetContext()

	caller := runtime.GetCallingScriptHash()
	registry := storage.Get(ctx, registryKey).(interop.Hash160)
	walletContract := storage.Get(ctx, walletContractKey).(interop.Hash160)
	if !common.BytesEqual(caller, registry) && !common.BytesEqual(caller, walletContract) {
		panic("unauthorized caller")
	}

	if len(externalID) == 0 {
		panic("empty external identifier")
	}

	sw := getSubWallet(ctx, subWallet)
	if len(sw.ExternalID) != 0 {
		panic("external identifier already set")
	}

	sw.ExternalID = externalID
	common.SetSerialized(ctx, append([]byte{prefixSubWallet}, subWallet...), sw)

	runtime.Notify("externalIdentifierSet", subWallet, externalID)
}

// Purchase pays for an item and appends it to the sub-wallet purchase
// history. The price is covered by the sub-wallet balance first; any
// shortfall is pulled from the owning device wallet, which requires value
// access. It can be invoked only by the sub-wallet owner.
func Purchase(subWallet interop.Hash160, itemID string, price int) {
	ctx := storage.GetContext()
	sw := getSubWallet(ctx, subWallet)
	checkOwnerWitness(ctx, sw.Owner)

	if len(itemID) == 0 {
		panic("empty item identifier")
	}
	if price <= 0 {
		panic("non positive amount number")
	}

	common.LockGuard(ctx, subWallet)

	walletContract := storage.Get(ctx, walletContractKey).(interop.Hash160)

	if sw.Balance == 0 {
		contract.Call(walletContract, "payForService", contract.All, sw.Owner, subWallet, price)
	} else {
		if price > sw.Balance {
			shortfall := price - sw.Balance
			contract.Call(walletContract, "pull", contract.All, sw.Owner, subWallet, shortfall)
			sw.Balance += shortfall
		}

		sw.Balance -= price
		common.SetSerialized(ctx, append([]byte{prefixSubWallet}, subWallet...), sw)
		contract.Call(walletContract, "recordServicePayment", contract.All, sw.Owner, subWallet, price)
	}

	history := getHistory(ctx, subWallet)
	history = append(history, PurchaseRecord{ID: itemID, Price: price})
	common.SetSerialized(ctx, append([]byte{prefixHistory}, subWallet...), history)

	common.UnlockGuard(ctx, subWallet)

	runtime.Notify("purchaseCompleted", subWallet, itemID, price)
}

// Pull moves funds from the owning device wallet to the sub-wallet balance.
// The device wallet must have granted value access. It can be invoked only
// by the sub-wallet owner.
func Pull(subWallet interop.Hash160, amount int) {
	ctx := storage.GetContext()
	sw := getSubWallet(ctx, subWallet)
	checkOwnerWitness(ctx, sw.Owner)

	if amount <= 0 {
		panic("non positive amount number")
	}

	walletContract := storage.Get(ctx, walletContractKey).(interop.Hash160)
	contract.Call(walletContract, "pull", contract.All, sw.Owner, subWallet, amount)

	sw.Balance += amount
	common.SetSerialized(ctx, append([]byte{prefixSubWallet}, subWallet...), sw)
}

// BackfillHistory seeds the purchase history of a freshly provisioned
// sub-wallet with records accumulated off-chain. It can be invoked only by
// the registry and only while the history is empty.
func BackfillHistory(subWallet interop.Hash160, items []PurchaseRecord) {
	ctx := storage.GetContext()
	checkCaller(ctx, registryKey)

	getSubWallet(ctx, subWallet)

	historyKey := append([]byte{prefixHistory}, subWallet...)
	if storage.Get(ctx, historyKey) != nil {
		panic("history already recorded")
	}
	if len(items) == 0 {
		panic("empty history")
	}

	history := []PurchaseRecord{}
	for i := 0; i < len(items); i++ {
		if len(items[i].ID) == 0 {
			panic("empty item identifier")
		}
		if items[i].Price <= 0 {
			panic("non positive amount number")
		}

		history = append(history, PurchaseRecord{ID: items[i].ID, Price: items[i].Price})
	}

	common.SetSerialized(ctx, historyKey, history)

	runtime.Notify("historyBackfilled", subWallet, len(items))
}

// SetApproval grants or revokes a device wallet's right to take ownership of
// the sub-wallet. The candidate must be a registered device wallet. It can
// be invoked only by the sub-wallet owner.
func SetApproval(subWallet, to interop.Hash160, granted bool) {
	ctx := storage.GetContext()
	sw := getSubWallet(ctx, subWallet)
	checkOwnerWitness(ctx, sw.Owner)

	registry := storage.Get(ctx, registryKey).(interop.Hash160)
	if !contract.Call(registry, "isValidDeviceWallet", contract.ReadOnly, to).(bool) {
		panic("approval target is not a registered device wallet")
	}

	key := approvalKey(subWallet, to)
	if granted {
		storage.Put(ctx, key, []byte{1})
	} else {
		storage.Delete(ctx, key)
	}

	runtime.Notify("approvalUpdated", subWallet, to, granted)
}

// IsTransferApproved returns true if from may transfer the sub-wallet to
// to. A transfer to the current owner itself is always approved.
func IsTransferApproved(subWallet, from, to interop.Hash160) bool {
	ctx := storage.GetReadOnlyContext()
	sw := getSubWallet(ctx, subWallet)
	if !common.BytesEqual(sw.Owner, from) {
		return false
	}
	if common.BytesEqual(from, to) {
		return true
	}

	return storage.Get(ctx, approvalKey(subWallet, to)) != nil
}

// TransferOwnership moves the sub-wallet to a new owning device wallet. The
// current owner pushes the transfer directly; any other caller must be the
// new owner holding an approval, which the transfer consumes. A transfer is
// rejected while a registry-level reassignment of the sub-wallet is pending.
func TransferOwnership(subWallet, newOwner interop.Hash160) {
	ctx := storage.GetContext()
	sw := getSubWallet(ctx, subWallet)

	registry := storage.Get(ctx, registryKey).(interop.Hash160)
	recorded := contract.Call(registry, "deviceWalletOf", contract.ReadOnly, subWallet).(interop.Hash160)
	if common.IsZeroAddress(recorded) {
		panic("ownership transfer pending")
	}

	if common.BytesEqual(sw.Owner, newOwner) {
		return
	}

	if !isOwnerWitnessed(ctx, sw.Owner) {
		if storage.Get(ctx, approvalKey(subWallet, newOwner)) == nil {
			panic("transfer is not approved")
		}

		checkOwnerWitness(ctx, newOwner)
		storage.Delete(ctx, approvalKey(subWallet, newOwner))
	}

	sw.Owner = newOwner
	common.SetSerialized(ctx, append([]byte{prefixSubWallet}, subWallet...), sw)

	runtime.Notify("ownershipTransferred", subWallet, newOwner)
}

// HasAccount returns true if a sub-wallet record exists at the address.
func HasAccount(subWallet interop.Hash160) bool {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, append([]byte{prefixSubWallet}, subWallet...)) != nil
}

// OwnerOf returns the owning device wallet of the sub-wallet.
func OwnerOf(subWallet interop.Hash160) interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return getSubWallet(ctx, subWallet).Owner
}

// ExternalIdentifier returns the off-chain identifier of the sub-wallet, or
// an empty string if it was never set.
func ExternalIdentifier(subWallet interop.Hash160) string {
	ctx := storage.GetReadOnlyContext()
	return getSubWallet(ctx, subWallet).ExternalID
}

// BalanceOf returns the internal balance of the sub-wallet.
func BalanceOf(subWallet interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return getSubWallet(ctx, subWallet).Balance
}

// HistoryOf returns the purchase history of the sub-wallet, oldest first.
func HistoryOf(subWallet interop.Hash160) []PurchaseRecord {
	ctx := storage.GetReadOnlyContext()
	getSubWallet(ctx, subWallet)

	return getHistory(ctx, subWallet)
}

func getSubWallet(ctx storage.Context, subWallet interop.Hash160) SubWallet {
	val := storage.Get(ctx, append([]byte{prefixSubWallet}, subWallet...))
	if val == nil {
		panic("unknown sub-wallet")
	}

	return std.Deserialize(val.([]byte)).(SubWallet)
}

func getHistory(ctx storage.Context, subWallet interop.Hash160) []PurchaseRecord {
	val := storage.Get(ctx, append([]byte{prefixHistory}, subWallet...))
	if val == nil {
		return []PurchaseRecord{}
	}

	return std.Deserialize(val.([]byte)).([]PurchaseRecord)
}

func approvalKey(subWallet, to interop.Hash160) []byte {
	return append(append([]byte{prefixApproval}, subWallet...), to...)
}

// checkOwnerWitness authorizes an action on behalf of the owning account.
func checkOwnerWitness(ctx storage.Context, owner interop.Hash160) {
	if !isOwnerWitnessed(ctx, owner) {
		panic("owner witness check failed")
	}
}

// isOwnerWitnessed reports whether the owning account signed the transaction.
// Device wallets are records of the wallet class contract, so their owner key
// signs for them; any other account signs for itself.
func isOwnerWitnessed(ctx storage.Context, owner interop.Hash160) bool {
	walletContract := storage.Get(ctx, walletContractKey).(interop.Hash160)
	if contract.Call(walletContract, "hasAccount", contract.ReadOnly, owner).(bool) {
		key := contract.Call(walletContract, "ownerKeyOf", contract.ReadOnly, owner).(interop.PublicKey)
		return runtime.CheckWitness(common.KeyAccount(key))
	}

	return runtime.CheckWitness(owner)
}

func checkCaller(ctx storage.Context, key string) {
	expected := storage.Get(ctx, key).(interop.Hash160)
	if !common.BytesEqual(runtime.GetCallingScriptHash(), expected) {
		panic("unauthorized caller")
	}
}
