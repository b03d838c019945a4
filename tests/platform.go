package tests

import (
	"math/big"
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/stretchr/testify/require"
)

const (
	registryPath         = "../registry"
	walletFactoryPath    = "../walletfactory"
	subWalletFactoryPath = "../subwalletfactory"
	walletPath           = "../wallet"
	subWalletPath        = "../subwallet"
)

// Class tags mixed into deterministic account addresses, must stay
// byte-identical with the on-chain derivation.
const (
	walletClassTag    = "esim.wallet"
	subWalletClassTag = "esim.subwallet"
)

// platform is the fully deployed contract suite with the accounts every test
// needs. Contract hashes are computed before deployment, so mutually
// referencing contracts can be wired in a single pass.
type platform struct {
	e *neotest.Executor

	registry         *neotest.ContractInvoker
	walletFactory    *neotest.ContractInvoker
	subWalletFactory *neotest.ContractInvoker
	wallet           *neotest.ContractInvoker
	subWallet        *neotest.ContractInvoker

	admin neotest.Signer
	agent neotest.Signer
	vault util.Uint160
}

// owner is an externally held device owner key with a funding-capable signer.
type owner struct {
	key    *keys.PrivateKey
	signer neotest.Signer
}

func (o owner) pub() []byte {
	return o.key.PublicKey().Bytes()
}

func newOwner(t *testing.T) owner {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	acc := wallet.NewAccountFromPrivateKey(priv)
	return owner{key: priv, signer: neotest.NewSingleSigner(acc)}
}

func newPlatform(t *testing.T) *platform {
	e := newExecutor(t)

	ctrRegistry := neotest.CompileFile(t, e.CommitteeHash, registryPath, path.Join(registryPath, "config.yml"))
	ctrWalletFactory := neotest.CompileFile(t, e.CommitteeHash, walletFactoryPath, path.Join(walletFactoryPath, "config.yml"))
	ctrSubWalletFactory := neotest.CompileFile(t, e.CommitteeHash, subWalletFactoryPath, path.Join(subWalletFactoryPath, "config.yml"))
	ctrWallet := neotest.CompileFile(t, e.CommitteeHash, walletPath, path.Join(walletPath, "config.yml"))
	ctrSubWallet := neotest.CompileFile(t, e.CommitteeHash, subWalletPath, path.Join(subWalletPath, "config.yml"))

	admin := e.NewAccount(t)
	agent := e.NewAccount(t)
	vault := e.NewAccount(t).ScriptHash()

	e.DeployContract(t, ctrRegistry, []any{
		admin.ScriptHash(), vault,
		ctrWalletFactory.Hash, ctrSubWalletFactory.Hash,
		ctrWallet.Hash, ctrSubWallet.Hash,
	})
	e.DeployContract(t, ctrWalletFactory, []any{
		admin.ScriptHash(), ctrRegistry.Hash,
		ctrWallet.Hash, ctrSubWalletFactory.Hash,
	})
	e.DeployContract(t, ctrSubWalletFactory, []any{
		admin.ScriptHash(), ctrRegistry.Hash, ctrSubWallet.Hash,
	})
	e.DeployContract(t, ctrWallet, []any{
		ctrRegistry.Hash, ctrWalletFactory.Hash,
		ctrSubWalletFactory.Hash, ctrSubWallet.Hash,
	})
	e.DeployContract(t, ctrSubWallet, []any{
		ctrRegistry.Hash, ctrSubWalletFactory.Hash, ctrWallet.Hash,
	})

	p := &platform{
		e:                e,
		registry:         e.CommitteeInvoker(ctrRegistry.Hash),
		walletFactory:    e.CommitteeInvoker(ctrWalletFactory.Hash),
		subWalletFactory: e.CommitteeInvoker(ctrSubWalletFactory.Hash),
		wallet:           e.CommitteeInvoker(ctrWallet.Hash),
		subWallet:        e.CommitteeInvoker(ctrSubWallet.Hash),
		admin:            admin,
		agent:            agent,
		vault:            vault,
	}

	p.registry.WithSigners(admin).Invoke(t, nil, "addOrUpdateSecondaryRegistryAddress", agent.ScriptHash())

	return p
}

// asAdmin and friends reslice an invoker so that the committee keeps paying
// fees while the interesting account provides the witness.
func (p *platform) asAdmin(c *neotest.ContractInvoker) *neotest.ContractInvoker {
	return c.WithSigners(p.registry.Committee, p.admin)
}

func (p *platform) asAgent(c *neotest.ContractInvoker) *neotest.ContractInvoker {
	return c.WithSigners(p.registry.Committee, p.agent)
}

func (p *platform) asOwner(c *neotest.ContractInvoker, o owner) *neotest.ContractInvoker {
	return c.WithSigners(p.registry.Committee, o.signer)
}

// transferGAS moves native GAS from the validator to the given account, with
// optional attached data reaching OnNEP17Payment of a contract receiver.
func (p *platform) transferGAS(t *testing.T, to util.Uint160, amount int64, data any) {
	gasHash := p.e.NativeHash(t, nativenames.Gas)
	gasInv := p.e.ValidatorInvoker(gasHash)
	gasInv.Invoke(t, true, "transfer", p.e.Validator.ScriptHash(), to, amount, data)
}

// deployWallet provisions a device wallet with a default sub-wallet through
// the factory and returns the wallet address.
func (p *platform) deployWallet(t *testing.T, o owner, deviceID string, salt int64) util.Uint160 {
	addr := walletAddress(o.pub(), deviceID, salt)
	invokeBytes(t, p.asAdmin(p.walletFactory), addr.BytesBE(), "deployDeviceWallet", o.pub(), deviceID, salt, true)
	return addr
}

// invokeBytes invokes a method returning a single byte value and compares the
// raw result bytes. Computed and storage-read values surface as different
// stack item types, so the comparison goes through TryBytes.
func invokeBytes(t *testing.T, c *neotest.ContractInvoker, expected []byte, method string, args ...any) {
	tx := c.PrepareInvoke(t, method, args...)
	c.AddNewBlock(t, tx)
	aer := c.CheckHalt(t, tx.Hash())
	require.Equal(t, 1, len(aer.Stack))

	actual, err := aer.Stack[0].TryBytes()
	require.NoError(t, err)
	require.Equal(t, expected, actual)
}

// invokeBytesArray is invokeBytes for methods returning an array of byte
// values.
func invokeBytesArray(t *testing.T, c *neotest.ContractInvoker, expected [][]byte, method string, args ...any) {
	tx := c.PrepareInvoke(t, method, args...)
	c.AddNewBlock(t, tx)
	aer := c.CheckHalt(t, tx.Hash())
	require.Equal(t, 1, len(aer.Stack))

	items, ok := aer.Stack[0].Value().([]stackitem.Item)
	require.True(t, ok)
	require.Equal(t, len(expected), len(items))

	for i := range items {
		actual, err := items[i].TryBytes()
		require.NoError(t, err)
		require.Equal(t, expected[i], actual)
	}
}

func saltBytes(salt int64) []byte {
	if salt == 0 {
		return nil
	}

	return bigint.ToBytes(big.NewInt(salt))
}

// walletAddress mirrors the on-chain device wallet address derivation.
func walletAddress(ownerKey []byte, deviceID string, salt int64) util.Uint160 {
	data := []byte(walletClassTag)
	data = append(data, ownerKey...)
	data = append(data, []byte(deviceID)...)
	data = append(data, saltBytes(salt)...)

	return hash.Hash160(data)
}

// subWalletAddress mirrors the on-chain sub-wallet address derivation.
func subWalletAddress(deviceWallet util.Uint160, salt int64) util.Uint160 {
	data := []byte(subWalletClassTag)
	data = append(data, deviceWallet.BytesBE()...)
	data = append(data, saltBytes(salt)...)

	return hash.Hash160(data)
}
