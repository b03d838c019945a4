package tests

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

func TestSubWalletFactoryDeployGating(t *testing.T) {
	p := newPlatform(t)
	o := newOwner(t)
	w := p.deployWallet(t, o, "dev-1", 1)

	// Only the platform contracts may drive sub-wallet deployment.
	p.subWalletFactory.InvokeFail(t, "unauthorized caller", "deploy", w, 9, false)
	p.asAdmin(p.subWalletFactory).InvokeFail(t, "unauthorized caller", "deploy", w, 9, false)

	// The wallet-class path works for the wallet owner.
	sub := subWalletAddress(w, 9)
	invokeBytes(t, p.asOwner(p.wallet, o), sub.BytesBE(), "deploySubWallet", w, 9, false)

	p.subWalletFactory.Invoke(t, true, "isDeployed", sub)
	invokeBytes(t, p.subWallet, w.BytesBE(), "ownerOf", sub)
	invokeBytes(t, p.registry, w.BytesBE(), "deviceWalletOf", sub)
	p.wallet.Invoke(t, true, "isAssociated", w, sub)
	p.wallet.Invoke(t, false, "hasValueAccess", w, sub)

	p.asOwner(p.wallet, o).InvokeFail(t, "sub-wallet already deployed", "deploySubWallet", w, 9, false)
}

func TestSubWalletFactoryCounterfactualAddress(t *testing.T) {
	p := newPlatform(t)
	o := newOwner(t)
	w := p.deployWallet(t, o, "dev-1", 1)

	sub := subWalletAddress(w, 3)
	invokeBytes(t, p.subWalletFactory, sub.BytesBE(), "getCounterfactualAddress", w, 3)
	p.subWalletFactory.Invoke(t, false, "isDeployed", sub)

	invokeBytes(t, p.asOwner(p.wallet, o), sub.BytesBE(), "deploySubWallet", w, 3, true)
	p.subWalletFactory.Invoke(t, true, "isDeployed", sub)
}

func TestSubWalletFactoryImplementationPointer(t *testing.T) {
	p := newPlatform(t)

	invokeBytes(t, p.subWalletFactory, p.subWallet.Hash.BytesBE(), "subWalletImplementation")

	p.asAdmin(p.subWalletFactory).InvokeFail(t, "implementation already in use",
		"setSubWalletImplementation", p.subWallet.Hash)

	acc := p.subWalletFactory.NewAccount(t)
	p.subWalletFactory.WithSigners(acc).InvokeFail(t, "admin witness check failed",
		"setSubWalletImplementation", util.Uint160{7})

	next := util.Uint160{7}
	p.asAdmin(p.subWalletFactory).Invoke(t, nil, "setSubWalletImplementation", next)
	invokeBytes(t, p.subWalletFactory, next.BytesBE(), "subWalletImplementation")
}
