package tests

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

func TestWalletFactoryDeployDeviceWallet(t *testing.T) {
	p := newPlatform(t)
	o := newOwner(t)

	acc := p.walletFactory.NewAccount(t)
	p.walletFactory.WithSigners(acc).InvokeFail(t, "admin witness check failed",
		"deployDeviceWallet", o.pub(), "dev-1", 1, true)

	w := walletAddress(o.pub(), "dev-1", 1)
	invokeBytes(t, p.walletFactory, w.BytesBE(), "getCounterfactualAddress", o.pub(), "dev-1", 1)

	invokeBytes(t, p.asAdmin(p.walletFactory), w.BytesBE(), "deployDeviceWallet", o.pub(), "dev-1", 1, true)

	p.wallet.Invoke(t, true, "hasAccount", w)
	invokeBytes(t, p.wallet, o.pub(), "ownerKeyOf", w)
	p.wallet.Invoke(t, "dev-1", "deviceIDOf", w)
	p.registry.Invoke(t, true, "isValidDeviceWallet", w)

	// Default sub-wallet with value access comes with the wallet.
	defaultSub := subWalletAddress(w, 0)
	p.subWallet.Invoke(t, true, "hasAccount", defaultSub)
	p.wallet.Invoke(t, true, "hasValueAccess", w, defaultSub)

	// Same identity and salt resolve to the already deployed wallet.
	invokeBytes(t, p.asAdmin(p.walletFactory), w.BytesBE(), "deployDeviceWallet", o.pub(), "dev-1", 1, true)

	// A different salt for a bound identity is a conflict.
	p.asAdmin(p.walletFactory).InvokeFail(t, "device or key already bound to a different wallet",
		"deployDeviceWallet", o.pub(), "dev-1", 2, true)
	p.asAdmin(p.walletFactory).InvokeFail(t, "device or key already bound to a different wallet",
		"deployDeviceWallet", o.pub(), "dev-other", 2, true)
	p.asAdmin(p.walletFactory).InvokeFail(t, "device or key already bound to a different wallet",
		"deployDeviceWallet", newOwner(t).pub(), "dev-1", 2, true)
}

func TestWalletFactoryDepositAndWithdraw(t *testing.T) {
	p := newPlatform(t)

	payer := p.e.Validator.ScriptHash()
	factoryHash := p.walletFactory.Hash

	p.walletFactory.Invoke(t, 0, "depositOf", payer)
	p.transferGAS(t, factoryHash, 1000, nil)
	p.walletFactory.Invoke(t, 1000, "depositOf", payer)

	beneficiary := p.walletFactory.NewAccount(t).ScriptHash()
	p.transferGAS(t, factoryHash, 500, beneficiary)
	p.walletFactory.Invoke(t, 500, "depositOf", beneficiary)
	p.walletFactory.Invoke(t, 1000, "depositOf", payer)

	validatorInv := p.e.ValidatorInvoker(factoryHash)
	validatorInv.InvokeFail(t, "insufficient deposit", "withdraw", payer, 2000)
	validatorInv.InvokeFail(t, "non positive amount number", "withdraw", payer, 0)
	validatorInv.Invoke(t, stackitem.Null{}, "withdraw", payer, 400)
	p.walletFactory.Invoke(t, 600, "depositOf", payer)

	acc := p.walletFactory.NewAccount(t)
	p.walletFactory.WithSigners(acc).InvokeFail(t, "witness check failed", "withdraw", payer, 100)
}

func TestWalletFactoryDeployForUsers(t *testing.T) {
	p := newPlatform(t)
	o1, o2 := newOwner(t), newOwner(t)

	payer := p.e.Validator.ScriptHash()
	p.transferGAS(t, p.walletFactory.Hash, 1000, nil)

	deployInv := p.walletFactory.WithSigners(p.e.Validator, p.admin)

	deployInv.InvokeFail(t, "array length mismatch", "deployForUsers",
		payer, []any{"dev-1"}, []any{o1.pub(), o2.pub()}, []any{1, 2}, []any{0, 0})
	deployInv.InvokeFail(t, "empty batch", "deployForUsers",
		payer, []any{}, []any{}, []any{}, []any{})
	deployInv.InvokeFail(t, "insufficient attached value", "deployForUsers",
		payer, []any{"dev-1", "dev-2"}, []any{o1.pub(), o2.pub()}, []any{1, 2}, []any{900, 200})

	// A failed batch leaves the pending deposit untouched.
	p.walletFactory.Invoke(t, 1000, "depositOf", payer)

	w1 := walletAddress(o1.pub(), "dev-1", 1)
	w2 := walletAddress(o2.pub(), "dev-2", 2)
	invokeBytesArray(t, deployInv, [][]byte{w1.BytesBE(), w2.BytesBE()}, "deployForUsers",
		payer, []any{"dev-1", "dev-2"}, []any{o1.pub(), o2.pub()}, []any{1, 2}, []any{600, 300})

	p.wallet.Invoke(t, 600, "balanceOf", w1)
	p.wallet.Invoke(t, 300, "balanceOf", w2)
	p.walletFactory.Invoke(t, 100, "depositOf", payer)

	p.registry.Invoke(t, true, "isValidDeviceWallet", w1)
	p.registry.Invoke(t, true, "isValidDeviceWallet", w2)
}

func TestWalletFactoryDeployForUsersExistingWallet(t *testing.T) {
	p := newPlatform(t)
	o := newOwner(t)
	w := p.deployWallet(t, o, "dev-1", 1)

	payer := p.e.Validator.ScriptHash()
	p.transferGAS(t, p.walletFactory.Hash, 1000, nil)

	deployInv := p.walletFactory.WithSigners(p.e.Validator, p.admin)

	// A deposit aimed at an already provisioned wallet reaches its balance
	// instead of vanishing from the pending deposit.
	invokeBytesArray(t, deployInv, [][]byte{w.BytesBE()}, "deployForUsers",
		payer, []any{"dev-1"}, []any{o.pub()}, []any{1}, []any{500})

	p.wallet.Invoke(t, 500, "balanceOf", w)
	p.walletFactory.Invoke(t, 500, "depositOf", payer)

	// Same for a bare relay-created account known only to the wallet class.
	o2 := newOwner(t)
	w2 := walletAddress(o2.pub(), "dev-2", 2)
	invokeBytes(t, p.walletFactory, w2.BytesBE(), "createAccount", "dev-2", o2.pub(), 2)

	invokeBytesArray(t, deployInv, [][]byte{w2.BytesBE()}, "deployForUsers",
		payer, []any{"dev-2"}, []any{o2.pub()}, []any{2}, []any{200})

	p.wallet.Invoke(t, 200, "balanceOf", w2)
	p.walletFactory.Invoke(t, 300, "depositOf", payer)
}

func TestWalletFactoryCreateAccountFlow(t *testing.T) {
	p := newPlatform(t)
	o := newOwner(t)

	w := walletAddress(o.pub(), "dev-relay", 5)

	// Open relay path deploys the bare account only.
	acc := p.walletFactory.NewAccount(t)
	relayInv := p.walletFactory.WithSigners(acc)
	invokeBytes(t, relayInv, w.BytesBE(), "createAccount", "dev-relay", o.pub(), 5)

	p.wallet.Invoke(t, true, "hasAccount", w)
	p.registry.Invoke(t, false, "isValidDeviceWallet", w)
	p.registry.Invoke(t, stackitem.Null{}, "deviceWalletByID", "dev-relay")

	// Repeated relay call converges on the same address.
	invokeBytes(t, relayInv, w.BytesBE(), "createAccount", "dev-relay", o.pub(), 5)

	relayInv.InvokeFail(t, "admin witness check failed",
		"postCreateAccount", w, "dev-relay", o.pub())

	p.asAdmin(p.walletFactory).InvokeFail(t, "device wallet does not match the supplied identity",
		"postCreateAccount", w, "dev-other", o.pub())

	p.asAdmin(p.walletFactory).Invoke(t, nil, "postCreateAccount", w, "dev-relay", o.pub())

	p.registry.Invoke(t, true, "isValidDeviceWallet", w)
	invokeBytes(t, p.registry, w.BytesBE(), "deviceWalletByID", "dev-relay")
	p.subWallet.Invoke(t, true, "hasAccount", subWalletAddress(w, 0))

	p.asAdmin(p.walletFactory).InvokeFail(t, "bookkeeping already recorded",
		"postCreateAccount", w, "dev-relay", o.pub())
}

func TestWalletFactoryAdminHandover(t *testing.T) {
	p := newPlatform(t)

	invokeBytes(t, p.walletFactory, p.admin.ScriptHash().BytesBE(), "admin")

	successor := p.walletFactory.NewAccount(t)

	p.walletFactory.WithSigners(successor).InvokeFail(t, "admin witness check failed",
		"requestAdminUpdate", successor.ScriptHash())

	p.asAdmin(p.walletFactory).InvokeFail(t, "zero admin address",
		"requestAdminUpdate", util.Uint160{})

	p.asAdmin(p.walletFactory).Invoke(t, nil, "requestAdminUpdate", successor.ScriptHash())

	// Still the old admin until the successor accepts.
	invokeBytes(t, p.walletFactory, p.admin.ScriptHash().BytesBE(), "admin")

	// Requesting own address revokes the pending handover.
	p.asAdmin(p.walletFactory).Invoke(t, nil, "requestAdminUpdate", p.admin.ScriptHash())
	p.walletFactory.WithSigners(successor).InvokeFail(t, "no pending admin update", "acceptAdminUpdate")

	p.asAdmin(p.walletFactory).Invoke(t, nil, "requestAdminUpdate", successor.ScriptHash())

	other := p.walletFactory.NewAccount(t)
	p.walletFactory.WithSigners(other).InvokeFail(t, "witness check failed", "acceptAdminUpdate")

	p.walletFactory.WithSigners(successor).Invoke(t, nil, "acceptAdminUpdate")
	invokeBytes(t, p.walletFactory, successor.ScriptHash().BytesBE(), "admin")

	p.asAdmin(p.walletFactory).InvokeFail(t, "admin witness check failed",
		"requestAdminUpdate", p.admin.ScriptHash())
}

func TestWalletFactoryImplementationPointer(t *testing.T) {
	p := newPlatform(t)

	invokeBytes(t, p.walletFactory, p.wallet.Hash.BytesBE(), "walletImplementation")

	p.asAdmin(p.walletFactory).InvokeFail(t, "implementation already in use",
		"setWalletImplementation", p.wallet.Hash)

	acc := p.walletFactory.NewAccount(t)
	p.walletFactory.WithSigners(acc).InvokeFail(t, "admin witness check failed",
		"setWalletImplementation", util.Uint160{1, 2, 3})

	next := util.Uint160{1, 2, 3}
	p.asAdmin(p.walletFactory).Invoke(t, nil, "setWalletImplementation", next)
	invokeBytes(t, p.walletFactory, next.BytesBE(), "walletImplementation")
}
