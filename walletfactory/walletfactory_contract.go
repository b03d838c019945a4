package walletfactory

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/esimchain/esim-contract/common"
)

// Prefixes used for contract data storage.
const (
	// prefixDeposit contains map from account to its pending deposit, the
	// value attached to a future batch deployment.
	prefixDeposit byte = 'p'
	// prefixBookkept contains set of device wallets whose registry
	// bookkeeping is complete.
	prefixBookkept byte = 'b'
)

const (
	adminKey            = "adminAddress"
	pendingAdminKey     = "pendingAdminAddress"
	registryKey         = "registryScriptHash"
	implementationKey   = "walletScriptHash"
	subWalletFactoryKey = "subWalletFactoryScriptHash"
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
	registry := args[1].(interop.Hash160)
	walletContract := args[2].(interop.Hash160)
	subWalletFactory := args[3].(interop.Hash160)

	if len(admin) != interop.Hash160Len {
		panic("incorrect length of admin script hash")
	}
	if len(registry) != interop.Hash160Len ||
		len(walletContract) != interop.Hash160Len ||
		len(subWalletFactory) != interop.Hash160Len {
		panic("incorrect length of contract script hash")
	}

	storage.Put(ctx, adminKey, admin)
	storage.Put(ctx, registryKey, registry)
	storage.Put(ctx, implementationKey, walletContract)
	storage.Put(ctx, subWalletFactoryKey, subWalletFactory)

	runtime.Log("wallet factory contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("wallet factory contract updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
// Transferred GAS becomes the pending deposit of the account named in data,
// or of the sender if data is empty, and funds subsequent DeployForUsers
// calls.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(gas.Hash) {
		panic("only GAS can be accepted for deposit")
	}
	if amount <= 0 {
		panic("amount must be positive")
	}

	beneficiary := from
	if data != nil {
		rcv := data.(interop.Hash160)
		if len(rcv) == interop.Hash160Len {
			beneficiary = rcv
		} else if len(rcv) != 0 {
			panic("invalid data argument, expected Hash160")
		}
	}

	ctx := storage.GetContext()
	setDeposit(ctx, beneficiary, getDeposit(ctx, beneficiary)+amount)

	runtime.Notify("depositReceived", beneficiary, amount)
}

// Withdraw returns unused pending deposit back to the account. It can be
// invoked only by the account itself.
func Withdraw(from interop.Hash160, amount int) {
	common.CheckWitness(from)

	if amount <= 0 {
		panic("non positive amount number")
	}

	ctx := storage.GetContext()
	deposit := getDeposit(ctx, from)
	if amount > deposit {
		panic("insufficient deposit")
	}

	setDeposit(ctx, from, deposit-amount)

	transferred := gas.Transfer(runtime.GetExecutingScriptHash(), from, amount, nil)
	if !transferred {
		panic("failed to transfer GAS, aborting")
	}
}

// DepositOf returns the pending deposit of the account.
func DepositOf(acc interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return getDeposit(ctx, acc)
}

// DeployForUsers creates a batch of device wallets funded from the pending
// deposit of the from account. It can be invoked only by the platform admin
// or the registry. All four arrays must have equal length. Deposits are
// debited from a running available-value counter element by element and
// reach the wallet at their batch position even when it already exists; any
// failure aborts the whole batch and any leftover stays on the caller's
// pending deposit.
func DeployForUsers(from interop.Hash160, deviceIds []string, ownerKeys []interop.PublicKey, salts []int, deposits []int) []interop.Hash160 {
	ctx := storage.GetContext()
	checkAdminOrRegistry(ctx)
	common.CheckWitness(from)

	n := len(deviceIds)
	if len(ownerKeys) != n || len(salts) != n || len(deposits) != n {
		panic("array length mismatch")
	}
	if n == 0 {
		panic("empty batch")
	}

	available := getDeposit(ctx, from)
	wallets := make([]interop.Hash160, 0)

	for i := 0; i < n; i++ {
		if deposits[i] < 0 {
			panic("negative deposit")
		}
		if deposits[i] > available {
			panic("insufficient attached value")
		}
		available -= deposits[i]

		w := deployDeviceWallet(ctx, ownerKeys[i], deviceIds[i], salts[i], deposits[i], true)
		wallets = append(wallets, w)
	}

	// Leftover value goes back to the caller's pending deposit.
	setDeposit(ctx, from, available)

	return wallets
}

// DeployDeviceWallet creates a single device wallet with full registry
// bookkeeping and no deposit. It can be invoked only by the platform admin or
// the registry; the registry uses it for lazy provisioning, with no default
// sub-wallet.
func DeployDeviceWallet(ownerKey interop.PublicKey, deviceID string, salt int, withDefaultSubWallet bool) interop.Hash160 {
	ctx := storage.GetContext()
	checkAdminOrRegistry(ctx)

	return deployDeviceWallet(ctx, ownerKey, deviceID, salt, 0, withDefaultSubWallet)
}

// CreateAccount deploys the bare device wallet account at its deterministic
// address. The method performs no registry or factory bookkeeping: it is
// invoked by the transaction relay in a context where external storage writes
// are disallowed. Bookkeeping is finished later by PostCreateAccount.
func CreateAccount(deviceID string, ownerKey interop.PublicKey, salt int) interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	walletContract := storage.Get(ctx, implementationKey).(interop.Hash160)

	addr := common.WalletAddress(ownerKey, deviceID, salt)
	if contract.Call(walletContract, "hasAccount", contract.ReadOnly, addr).(bool) {
		return addr
	}

	contract.Call(walletContract, "deploy", contract.All, ownerKey, deviceID, salt)

	return addr
}

// PostCreateAccount finishes registry bookkeeping for a device wallet
// created through CreateAccount and deploys its default sub-wallet. It can
// be invoked only by the platform admin or the registry, and only once per
// device wallet.
func PostCreateAccount(deviceWallet interop.Hash160, deviceID string, ownerKey interop.PublicKey) {
	ctx := storage.GetContext()
	checkAdminOrRegistry(ctx)

	bookKey := append([]byte{prefixBookkept}, deviceWallet...)
	if storage.Get(ctx, bookKey) != nil {
		panic("bookkeeping already recorded")
	}

	walletContract := storage.Get(ctx, implementationKey).(interop.Hash160)
	if !contract.Call(walletContract, "hasAccount", contract.ReadOnly, deviceWallet).(bool) {
		panic("device wallet is not deployed")
	}

	recordedID := contract.Call(walletContract, "deviceIDOf", contract.ReadOnly, deviceWallet).(string)
	recordedKey := contract.Call(walletContract, "ownerKeyOf", contract.ReadOnly, deviceWallet).(interop.PublicKey)
	if recordedID != deviceID || !common.BytesEqual(recordedKey, ownerKey) {
		panic("device wallet does not match the supplied identity")
	}

	registry := storage.Get(ctx, registryKey).(interop.Hash160)
	contract.Call(registry, "updateDeviceWalletInfo", contract.All, deviceWallet, deviceID, ownerKey)
	contract.Call(walletContract, "init", contract.All, deviceWallet)

	storage.Put(ctx, bookKey, []byte{1})

	runtime.Notify("walletDeployed", deviceWallet, deviceID)
}

// GetCounterfactualAddress computes the deterministic device wallet address
// for the given inputs without deploying anything. The result is
// byte-identical to the address produced by any creation path with the same
// inputs.
func GetCounterfactualAddress(ownerKey interop.PublicKey, deviceID string, salt int) interop.Hash160 {
	return common.WalletAddress(ownerKey, deviceID, salt)
}

// RequestAdminUpdate starts a two-step admin handover. It can be invoked only
// by the current admin. A repeated request overwrites the pending candidate;
// requesting the current admin's own address revokes the pending request.
func RequestAdminUpdate(newAdmin interop.Hash160) {
	ctx := storage.GetContext()
	admin := storage.Get(ctx, adminKey).(interop.Hash160)
	common.CheckAdminWitness(admin)

	if len(newAdmin) != interop.Hash160Len || common.IsZeroAddress(newAdmin) {
		panic("zero admin address")
	}

	if common.BytesEqual(newAdmin, admin) {
		storage.Delete(ctx, pendingAdminKey)
		runtime.Log("pending admin update revoked")
		return
	}

	storage.Put(ctx, pendingAdminKey, newAdmin)
	runtime.Notify("adminUpdateRequested", newAdmin)
}

// AcceptAdminUpdate completes the two-step admin handover. It can be invoked
// only by the pending candidate.
func AcceptAdminUpdate() {
	ctx := storage.GetContext()
	pending := storage.Get(ctx, pendingAdminKey)
	if pending == nil {
		panic("no pending admin update")
	}

	common.CheckWitness(pending.(interop.Hash160))

	storage.Put(ctx, adminKey, pending.(interop.Hash160))
	storage.Delete(ctx, pendingAdminKey)

	runtime.Notify("adminUpdated", pending.(interop.Hash160))
}

// Admin returns the current factory admin.
func Admin() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, adminKey).(interop.Hash160)
}

// SetWalletImplementation switches the device wallet class contract every
// new account is deployed into. It can be invoked only by the admin; a no-op
// update is rejected.
func SetWalletImplementation(impl interop.Hash160) {
	ctx := storage.GetContext()
	common.CheckAdminWitness(storage.Get(ctx, adminKey).(interop.Hash160))

	if len(impl) != interop.Hash160Len {
		panic("incorrect length of contract script hash")
	}

	current := storage.Get(ctx, implementationKey).(interop.Hash160)
	if common.BytesEqual(impl, current) {
		panic("implementation already in use")
	}

	storage.Put(ctx, implementationKey, impl)
	runtime.Notify("walletImplementationUpdated", impl)
}

// WalletImplementation returns the device wallet class contract script hash.
func WalletImplementation() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, implementationKey).(interop.Hash160)
}

func deployDeviceWallet(ctx storage.Context, ownerKey interop.PublicKey, deviceID string, salt int, deposit int, withDefaultSubWallet bool) interop.Hash160 {
	registry := storage.Get(ctx, registryKey).(interop.Hash160)
	walletContract := storage.Get(ctx, implementationKey).(interop.Hash160)

	addr := common.WalletAddress(ownerKey, deviceID, salt)

	// Uniqueness against the registry is the first observable effect of any
	// creation path.
	byDevice := contract.Call(registry, "deviceWalletByID", contract.ReadOnly, deviceID).(interop.Hash160)
	byKey := contract.Call(registry, "deviceWalletByKey", contract.ReadOnly, ownerKey).(interop.Hash160)

	if byDevice != nil || byKey != nil {
		if (byDevice != nil && !common.BytesEqual(byDevice, addr)) ||
			(byKey != nil && !common.BytesEqual(byKey, addr)) {
			panic("device or key already bound to a different wallet")
		}

		// The wallet exists, the debited value goes to its balance.
		if deposit > 0 {
			contract.Call(walletContract, "deposit", contract.All, addr, deposit)
		}

		return addr
	}

	if contract.Call(walletContract, "hasAccount", contract.ReadOnly, addr).(bool) {
		if deposit > 0 {
			contract.Call(walletContract, "deposit", contract.All, addr, deposit)
		}

		return addr
	}

	contract.Call(walletContract, "deploy", contract.All, ownerKey, deviceID, salt)

	if deposit > 0 {
		contract.Call(walletContract, "deposit", contract.All, addr, deposit)
	}

	contract.Call(registry, "updateDeviceWalletInfo", contract.All, addr, deviceID, ownerKey)

	if withDefaultSubWallet {
		contract.Call(walletContract, "init", contract.All, addr)
	}

	storage.Put(ctx, append([]byte{prefixBookkept}, addr...), []byte{1})

	runtime.Notify("walletDeployed", addr, deviceID)

	return addr
}

func getDeposit(ctx storage.Context, acc interop.Hash160) int {
	val := storage.Get(ctx, append([]byte{prefixDeposit}, acc...))
	if val == nil {
		return 0
	}

	return val.(int)
}

func setDeposit(ctx storage.Context, acc interop.Hash160, amount int) {
	key := append([]byte{prefixDeposit}, acc...)
	if amount == 0 {
		storage.Delete(ctx, key)
		return
	}

	storage.Put(ctx, key, amount)
}

func checkAdminOrRegistry(ctx storage.Context) {
	registry := storage.Get(ctx, registryKey).(interop.Hash160)
	if common.BytesEqual(runtime.GetCallingScriptHash(), registry) {
		return
	}

	common.CheckAdminWitness(storage.Get(ctx, adminKey).(interop.Hash160))
}
