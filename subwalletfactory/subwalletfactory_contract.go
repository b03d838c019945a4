package subwalletfactory

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/esimchain/esim-contract/common"
)

// Prefixes used for contract data storage.
const (
	// prefixDeployed contains set of sub-wallet addresses this factory has
	// deployed.
	prefixDeployed byte = 'x'
)

const (
	adminKey          = "adminAddress"
	registryKey       = "registryScriptHash"
	implementationKey = "subWalletScriptHash"
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
	subWalletContract := args[2].(interop.Hash160)

	if len(admin) != interop.Hash160Len {
		panic("incorrect length of admin script hash")
	}
	if len(registry) != interop.Hash160Len ||
		len(subWalletContract) != interop.Hash160Len {
		panic("incorrect length of contract script hash")
	}

	storage.Put(ctx, adminKey, admin)
	storage.Put(ctx, registryKey, registry)
	storage.Put(ctx, implementationKey, subWalletContract)

	runtime.Log("sub-wallet factory contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("sub-wallet factory contract updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// Deploy creates a sub-wallet for the device wallet at its deterministic
// address, records the association in the registry and attaches the
// sub-wallet to the device wallet with the requested value access. It can be
// invoked only by the registry, the wallet factory or the device wallet
// class contract.
func Deploy(deviceWallet interop.Hash160, salt int, hasValueAccess bool) interop.Hash160 {
	ctx := storage.GetContext()
	registry := storage.Get(ctx, registryKey).(interop.Hash160)
	subWalletContract := storage.Get(ctx, implementationKey).(interop.Hash160)
	walletContract := contract.Call(registry, "walletContract", contract.ReadOnly).(interop.Hash160)

	caller := runtime.GetCallingScriptHash()
	switch {
	case common.BytesEqual(caller, registry):
	case common.BytesEqual(caller, contract.Call(registry, "walletFactory", contract.ReadOnly).(interop.Hash160)):
	case common.BytesEqual(caller, walletContract):
		if !contract.Call(registry, "isValidDeviceWallet", contract.ReadOnly, deviceWallet).(bool) {
			panic("device wallet is not registered")
		}
	default:
		panic("unauthorized caller")
	}

	addr := common.SubWalletAddress(deviceWallet, salt)

	deployedKey := append([]byte{prefixDeployed}, addr...)
	if storage.Get(ctx, deployedKey) != nil {
		panic("sub-wallet already deployed")
	}

	contract.Call(subWalletContract, "deploy", contract.All, addr, deviceWallet)
	storage.Put(ctx, deployedKey, []byte{1})

	contract.Call(registry, "associateSubWallet", contract.All, deviceWallet, addr)
	contract.Call(walletContract, "associateSubWallet", contract.All, deviceWallet, addr, hasValueAccess)

	runtime.Notify("subWalletDeployed", addr, deviceWallet)

	return addr
}

// GetCounterfactualAddress computes the deterministic sub-wallet address for
// the given inputs without deploying anything.
func GetCounterfactualAddress(deviceWallet interop.Hash160, salt int) interop.Hash160 {
	return common.SubWalletAddress(deviceWallet, salt)
}

// IsDeployed returns true if this factory has already deployed a sub-wallet
// at the given address.
func IsDeployed(subWallet interop.Hash160) bool {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, append([]byte{prefixDeployed}, subWallet...)) != nil
}

// SetSubWalletImplementation switches the sub-wallet class contract every new
// sub-wallet is deployed into. It can be invoked only by the admin; a no-op
// update is rejected.
func SetSubWalletImplementation(impl interop.Hash160) {
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
	runtime.Notify("subWalletImplementationUpdated", impl)
}

// SubWalletImplementation returns the sub-wallet class contract script hash.
func SubWalletImplementation() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, implementationKey).(interop.Hash160)
}

// Admin returns the current factory admin.
func Admin() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, adminKey).(interop.Hash160)
}
