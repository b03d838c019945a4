// Package deploy provides eSIM wallet platform deployment into a Neo
// blockchain network.
package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for platform deployment.
type Blockchain interface {
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by
	// its address. GetContractStateByHash returns an error with 'Unknown
	// contract' substring if the requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// CommonDeployPrm groups common deployment parameters of a smart contract.
type CommonDeployPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// Prm groups all parameters of the platform deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance the platform is deployed into.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// It is also the deployment sender all contract addresses derive from.
	LocalAccount *wallet.Account

	// Platform admin account address.
	Admin util.Uint160
	// Payment sink address.
	Vault util.Uint160

	Registry         CommonDeployPrm
	WalletFactory    CommonDeployPrm
	SubWalletFactory CommonDeployPrm
	Wallet           CommonDeployPrm
	SubWallet        CommonDeployPrm
}

// Hashes carries addresses of the deployed platform contracts.
type Hashes struct {
	Registry         util.Uint160
	WalletFactory    util.Uint160
	SubWalletFactory util.Uint160
	Wallet           util.Uint160
	SubWallet        util.Uint160
}

// Deploy initializes the eSIM wallet platform in the given Neo blockchain
// consisting of five mutually referencing contracts. Contract addresses are
// computed from the sender account before anything is sent, so the
// references can be wired in a single pass. Deploy is idempotent: contracts
// already present in the network are skipped.
func Deploy(ctx context.Context, prm Prm) (Hashes, error) {
	if prm.Logger == nil {
		return Hashes{}, errors.New("missing logger")
	}
	if prm.LocalAccount == nil {
		return Hashes{}, errors.New("missing local account")
	}
	if prm.Admin.Equals(util.Uint160{}) || prm.Vault.Equals(util.Uint160{}) {
		return Hashes{}, errors.New("missing admin or vault address")
	}

	l := prm.Logger.With(zap.String("deployment", uuid.NewString()))

	sender := prm.LocalAccount.ScriptHash()
	h := Hashes{
		Registry:         contractAddress(sender, prm.Registry),
		WalletFactory:    contractAddress(sender, prm.WalletFactory),
		SubWalletFactory: contractAddress(sender, prm.SubWalletFactory),
		Wallet:           contractAddress(sender, prm.Wallet),
		SubWallet:        contractAddress(sender, prm.SubWallet),
	}

	act, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return Hashes{}, fmt.Errorf("init transaction sender: %w", err)
	}

	mgmt := management.New(act)

	for _, c := range []struct {
		name string
		prm  CommonDeployPrm
		hash util.Uint160
		args []any
	}{
		{"registry", prm.Registry, h.Registry, []any{
			prm.Admin, prm.Vault, h.WalletFactory, h.SubWalletFactory, h.Wallet, h.SubWallet,
		}},
		{"wallet factory", prm.WalletFactory, h.WalletFactory, []any{
			prm.Admin, h.Registry, h.Wallet, h.SubWalletFactory,
		}},
		{"sub-wallet factory", prm.SubWalletFactory, h.SubWalletFactory, []any{
			prm.Admin, h.Registry, h.SubWallet,
		}},
		{"device wallet", prm.Wallet, h.Wallet, []any{
			h.Registry, h.WalletFactory, h.SubWalletFactory, h.SubWallet,
		}},
		{"sub-wallet", prm.SubWallet, h.SubWallet, []any{
			h.Registry, h.SubWalletFactory, h.Wallet,
		}},
	} {
		if err := ctx.Err(); err != nil {
			return Hashes{}, fmt.Errorf("wait for deployment of the %s contract: %w", c.name, err)
		}

		err := deployContract(prm.Blockchain, mgmt, act, l, c.name, c.prm, c.hash, c.args)
		if err != nil {
			return Hashes{}, err
		}
	}

	l.Info("eSIM wallet platform deployed",
		zap.Stringer("registry", h.Registry),
		zap.Stringer("wallet factory", h.WalletFactory),
		zap.Stringer("sub-wallet factory", h.SubWalletFactory),
		zap.Stringer("device wallet", h.Wallet),
		zap.Stringer("sub-wallet", h.SubWallet))

	return h, nil
}

func deployContract(bc Blockchain, mgmt *management.Contract, act *actor.Actor,
	l *zap.Logger, name string, prm CommonDeployPrm, hash util.Uint160, args []any) error {
	l = l.With(zap.String("contract", name), zap.Stringer("address", hash))

	if _, err := bc.GetContractStateByHash(hash); err == nil {
		l.Info("contract is already deployed, skipping")
		return nil
	}

	l.Info("contract is missing, deploying")

	txHash, vub, err := mgmt.Deploy(&prm.NEF, &prm.Manifest, args)
	if err != nil {
		return fmt.Errorf("deploy %s contract: %w", name, err)
	}

	if _, err := act.Wait(txHash, vub, nil); err != nil {
		return fmt.Errorf("wait for deployment of the %s contract: %w", name, err)
	}

	l.Info("contract deployed successfully")

	return nil
}

func contractAddress(sender util.Uint160, prm CommonDeployPrm) util.Uint160 {
	return state.CreateContractHash(sender, prm.NEF.Checksum, prm.Manifest.Name)
}
