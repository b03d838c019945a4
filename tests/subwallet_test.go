package tests

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

func TestSubWalletPurchase(t *testing.T) {
	p := newPlatform(t)
	o := newOwner(t)
	w := fundedWallet(t, p, o, "dev-1", 1000)
	sub := subWalletAddress(w, 0)

	acc := p.subWallet.NewAccount(t)
	p.subWallet.WithSigners(acc).InvokeFail(t, "owner witness check failed",
		"purchase", sub, "item-1", 10)

	p.asOwner(p.subWallet, o).InvokeFail(t, "empty item identifier", "purchase", sub, "", 10)
	p.asOwner(p.subWallet, o).InvokeFail(t, "non positive amount number", "purchase", sub, "item-1", 0)

	// Empty sub-wallet settles straight from the device wallet.
	p.asOwner(p.subWallet, o).Invoke(t, nil, "purchase", sub, "item-1", 100)
	p.wallet.Invoke(t, 900, "balanceOf", w)
	p.subWallet.Invoke(t, 0, "balanceOf", sub)
	p.wallet.Invoke(t, 100, "vaultBalance")

	// A funded sub-wallet pays from its own balance, pulling only the
	// shortfall.
	p.asOwner(p.subWallet, o).Invoke(t, nil, "pull", sub, 50)
	p.subWallet.Invoke(t, 50, "balanceOf", sub)
	p.wallet.Invoke(t, 850, "balanceOf", w)

	p.asOwner(p.subWallet, o).Invoke(t, nil, "purchase", sub, "item-2", 80)
	p.subWallet.Invoke(t, 0, "balanceOf", sub)
	p.wallet.Invoke(t, 820, "balanceOf", w)
	p.wallet.Invoke(t, 180, "vaultBalance")

	history := stackitem.NewArray([]stackitem.Item{
		stackitem.NewStruct([]stackitem.Item{
			stackitem.NewByteArray([]byte("item-1")), stackitem.Make(100),
		}),
		stackitem.NewStruct([]stackitem.Item{
			stackitem.NewByteArray([]byte("item-2")), stackitem.Make(80),
		}),
	})
	p.subWallet.Invoke(t, history, "historyOf", sub)
}

func TestSubWalletPurchaseCoveredBySubBalance(t *testing.T) {
	p := newPlatform(t)
	o := newOwner(t)
	w := fundedWallet(t, p, o, "dev-1", 1000)
	sub := subWalletAddress(w, 0)

	p.asOwner(p.subWallet, o).Invoke(t, nil, "pull", sub, 200)
	p.asOwner(p.subWallet, o).Invoke(t, nil, "purchase", sub, "item-1", 150)

	// No shortfall, the device wallet balance stays put; the vault tally
	// still lands on the wallet class contract.
	p.subWallet.Invoke(t, 50, "balanceOf", sub)
	p.wallet.Invoke(t, 800, "balanceOf", w)
	p.wallet.Invoke(t, 150, "vaultBalance")
}

func TestSubWalletBackfillHistoryOnce(t *testing.T) {
	p := newPlatform(t)
	o := newOwner(t)

	histories := []any{[]any{[]any{"old-1", 3}}}
	p.asAgent(p.registry).Invoke(t, nil, "deployLazyWallet",
		o.pub(), "dev-1", 1, []any{"esim-a"}, histories)

	w := walletAddress(o.pub(), "dev-1", 1)
	sub := subWalletAddress(w, 1)

	// Backfill is registry-only and one-shot.
	p.subWallet.InvokeFail(t, "unauthorized caller", "backfillHistory",
		sub, []any{[]any{"old-2", 4}})

	history := stackitem.NewArray([]stackitem.Item{
		stackitem.NewStruct([]stackitem.Item{
			stackitem.NewByteArray([]byte("old-1")), stackitem.Make(3),
		}),
	})
	p.subWallet.Invoke(t, history, "historyOf", sub)
}

func TestSubWalletExternalIdentifierOneShot(t *testing.T) {
	p := newPlatform(t)
	o := newOwner(t)
	w := p.deployWallet(t, o, "dev-1", 1)
	sub := subWalletAddress(w, 0)

	p.subWallet.Invoke(t, "", "externalIdentifier", sub)

	p.asOwner(p.wallet, o).Invoke(t, nil, "setSubWalletExternalIdentifier", w, sub, "esim-a")
	p.asOwner(p.wallet, o).InvokeFail(t, "external identifier already set",
		"setSubWalletExternalIdentifier", w, sub, "esim-b")
	p.subWallet.Invoke(t, "esim-a", "externalIdentifier", sub)
}

func TestSubWalletApprovals(t *testing.T) {
	p := newPlatform(t)
	o1, o2 := newOwner(t), newOwner(t)
	w1 := p.deployWallet(t, o1, "dev-1", 1)
	w2 := p.deployWallet(t, o2, "dev-2", 2)
	sub := subWalletAddress(w1, 0)

	// Self-transfer needs no approval.
	p.subWallet.Invoke(t, true, "isTransferApproved", sub, w1, w1)
	p.subWallet.Invoke(t, false, "isTransferApproved", sub, w1, w2)
	p.subWallet.Invoke(t, false, "isTransferApproved", sub, w2, w1)

	p.asOwner(p.subWallet, o2).InvokeFail(t, "owner witness check failed",
		"setApproval", sub, w2, true)
	p.asOwner(p.subWallet, o1).InvokeFail(t, "approval target is not a registered device wallet",
		"setApproval", sub, subWalletAddress(w2, 99), true)

	p.asOwner(p.subWallet, o1).Invoke(t, nil, "setApproval", sub, w2, true)
	p.subWallet.Invoke(t, true, "isTransferApproved", sub, w1, w2)

	p.asOwner(p.subWallet, o1).Invoke(t, nil, "setApproval", sub, w2, false)
	p.subWallet.Invoke(t, false, "isTransferApproved", sub, w1, w2)
}

func TestSubWalletTransferOwnership(t *testing.T) {
	p := newPlatform(t)
	o1, o2 := newOwner(t), newOwner(t)
	w1 := p.deployWallet(t, o1, "dev-1", 1)
	w2 := p.deployWallet(t, o2, "dev-2", 2)
	sub := subWalletAddress(w1, 0)

	p.asOwner(p.subWallet, o2).InvokeFail(t, "transfer is not approved",
		"transferOwnership", sub, w2)

	p.asOwner(p.subWallet, o1).Invoke(t, nil, "setApproval", sub, w2, true)

	// An approved transfer still needs the witness of the owner or of the
	// new owner.
	o3 := newOwner(t)
	p.asOwner(p.subWallet, o3).InvokeFail(t, "owner witness check failed",
		"transferOwnership", sub, w2)

	p.asOwner(p.subWallet, o2).Invoke(t, nil, "transferOwnership", sub, w2)
	invokeBytes(t, p.subWallet, w2.BytesBE(), "ownerOf", sub)

	// Consumed approval cannot be replayed after the record moves back.
	p.asOwner(p.subWallet, o2).Invoke(t, nil, "setApproval", sub, w1, true)
	p.asOwner(p.subWallet, o1).Invoke(t, nil, "transferOwnership", sub, w1)
	p.asOwner(p.subWallet, o2).InvokeFail(t, "transfer is not approved",
		"transferOwnership", sub, w2)
}

func TestSubWalletOwnerInitiatedTransfer(t *testing.T) {
	p := newPlatform(t)
	o1, o2 := newOwner(t), newOwner(t)
	w1 := p.deployWallet(t, o1, "dev-1", 1)
	w2 := p.deployWallet(t, o2, "dev-2", 2)
	sub := subWalletAddress(w1, 0)

	// The owner hands the record over directly, no approval involved.
	p.asOwner(p.subWallet, o1).Invoke(t, nil, "transferOwnership", sub, w2)
	invokeBytes(t, p.subWallet, w2.BytesBE(), "ownerOf", sub)

	// An owner-initiated move back does not consume the standing approval,
	// so the recipient can still use it afterwards.
	p.asOwner(p.subWallet, o2).Invoke(t, nil, "setApproval", sub, w2, true)
	p.asOwner(p.subWallet, o2).Invoke(t, nil, "transferOwnership", sub, w1)
	invokeBytes(t, p.subWallet, w1.BytesBE(), "ownerOf", sub)

	p.asOwner(p.subWallet, o2).Invoke(t, nil, "transferOwnership", sub, w2)
	invokeBytes(t, p.subWallet, w2.BytesBE(), "ownerOf", sub)

	// That recipient-initiated move consumed the approval for good.
	p.asOwner(p.subWallet, o2).Invoke(t, nil, "transferOwnership", sub, w1)
	p.asOwner(p.subWallet, o2).InvokeFail(t, "transfer is not approved",
		"transferOwnership", sub, w2)
}

func TestSubWalletSelfTransferIsNoop(t *testing.T) {
	p := newPlatform(t)
	o := newOwner(t)
	w := p.deployWallet(t, o, "dev-1", 1)
	sub := subWalletAddress(w, 0)

	p.asOwner(p.subWallet, o).Invoke(t, nil, "transferOwnership", sub, w)
	invokeBytes(t, p.subWallet, w.BytesBE(), "ownerOf", sub)
}
