// Command esim-deploy deploys the eSIM wallet platform contracts into a Neo
// blockchain network through its RPC interface.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/esimchain/esim-contract/deploy"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

func main() {
	neoRPCEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	walletPath := flag.String("wallet", "", "Path to the NEP-6 wallet of the deployment sender")
	walletPassword := flag.String("password", "", "Password of the deployment sender wallet")
	adminAddress := flag.String("admin", "", "Address of the platform admin account")
	vaultAddress := flag.String("vault", "", "Address of the payment sink account")
	contractsDir := flag.String("contracts", "", "Directory with compiled contracts (<name>.nef and <name>.manifest.json)")

	flag.Parse()

	switch {
	case *neoRPCEndpoint == "":
		log.Fatal("missing Neo RPC endpoint")
	case *walletPath == "":
		log.Fatal("missing deployment sender wallet")
	case *adminAddress == "":
		log.Fatal("missing platform admin address")
	case *vaultAddress == "":
		log.Fatal("missing payment sink address")
	case *contractsDir == "":
		log.Fatal("missing compiled contracts directory")
	}

	err := run(*neoRPCEndpoint, *walletPath, *walletPassword, *adminAddress, *vaultAddress, *contractsDir)
	if err != nil {
		log.Fatal(err)
	}
}

func run(endpoint, walletPath, password, adminAddress, vaultAddress, contractsDir string) error {
	ctx := context.Background()

	l, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer l.Sync() //nolint:errcheck // there is nothing to do with the error anyway

	admin, err := address.StringToUint160(adminAddress)
	if err != nil {
		return fmt.Errorf("decode admin address: %w", err)
	}

	vault, err := address.StringToUint160(vaultAddress)
	if err != nil {
		return fmt.Errorf("decode vault address: %w", err)
	}

	w, err := wallet.NewWalletFromFile(walletPath)
	if err != nil {
		return fmt.Errorf("open sender wallet: %w", err)
	}

	acc := w.GetAccount(w.GetChangeAddress())
	if acc == nil {
		return fmt.Errorf("missing sender account in wallet '%s'", walletPath)
	}

	if err := acc.Decrypt(password, w.Scrypt); err != nil {
		return fmt.Errorf("unlock sender account: %w", err)
	}

	c, err := rpcclient.New(ctx, endpoint, rpcclient.Options{})
	if err != nil {
		return fmt.Errorf("init Neo RPC client: %w", err)
	}

	defer c.Close()

	if err := c.Init(); err != nil {
		return fmt.Errorf("initialize Neo RPC client: %w", err)
	}

	prm := deploy.Prm{
		Logger:       l,
		Blockchain:   c,
		LocalAccount: acc,
		Admin:        admin,
		Vault:        vault,
	}

	for _, ctr := range []struct {
		name string
		dst  *deploy.CommonDeployPrm
	}{
		{"registry", &prm.Registry},
		{"walletfactory", &prm.WalletFactory},
		{"subwalletfactory", &prm.SubWalletFactory},
		{"wallet", &prm.Wallet},
		{"subwallet", &prm.SubWallet},
	} {
		*ctr.dst, err = readContract(contractsDir, ctr.name)
		if err != nil {
			return fmt.Errorf("read compiled %s contract: %w", ctr.name, err)
		}
	}

	h, err := deploy.Deploy(ctx, prm)
	if err != nil {
		return fmt.Errorf("deploy platform: %w", err)
	}

	for _, c := range []struct {
		name string
		hash util.Uint160
	}{
		{"registry", h.Registry},
		{"walletfactory", h.WalletFactory},
		{"subwalletfactory", h.SubWalletFactory},
		{"wallet", h.Wallet},
		{"subwallet", h.SubWallet},
	} {
		fmt.Printf("%s: %s\n", c.name, c.hash.StringLE())
	}

	return nil
}

func readContract(dir, name string) (deploy.CommonDeployPrm, error) {
	var prm deploy.CommonDeployPrm

	rawNEF, err := os.ReadFile(filepath.Join(dir, name+".nef"))
	if err != nil {
		return prm, err
	}

	prm.NEF, err = nef.FileFromBytes(rawNEF)
	if err != nil {
		return prm, fmt.Errorf("decode NEF: %w", err)
	}

	rawManifest, err := os.ReadFile(filepath.Join(dir, name+".manifest.json"))
	if err != nil {
		return prm, err
	}

	if err := json.Unmarshal(rawManifest, &prm.Manifest); err != nil {
		return prm, fmt.Errorf("decode manifest: %w", err)
	}

	return prm, nil
}
