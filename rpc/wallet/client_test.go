package wallet

import (
	"errors"
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

type testInv struct {
	err error
	res *result.Invoke
}

func (t *testInv) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	return t.res, t.err
}

func TestOwnerKeyOf(t *testing.T) {
	ti := new(testInv)
	r := NewReader(ti, util.Uint160{1, 2, 3})

	ti.err = errors.New("bad")
	_, err := r.OwnerKeyOf(util.Uint160{5})
	require.Error(t, err)

	ti.err = nil
	ti.res = &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{stackitem.Make([]byte{1, 2, 3})},
	}
	_, err = r.OwnerKeyOf(util.Uint160{5})
	require.Error(t, err)

	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PublicKey()

	ti.res = &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{stackitem.Make(pub.Bytes())},
	}
	res, err := r.OwnerKeyOf(util.Uint160{5})
	require.NoError(t, err)
	require.Equal(t, pub, res)
}

func TestDeviceWalletReads(t *testing.T) {
	ti := new(testInv)
	r := NewReader(ti, util.Uint160{1, 2, 3})

	ti.res = &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{stackitem.Make("dev-1")},
	}
	id, err := r.DeviceIDOf(util.Uint160{5})
	require.NoError(t, err)
	require.Equal(t, "dev-1", id)

	ti.res = &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{stackitem.Make(42)},
	}
	balance, err := r.BalanceOf(util.Uint160{5})
	require.NoError(t, err)
	require.Equal(t, big.NewInt(42), balance)

	ti.res = &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{stackitem.Make(true)},
	}
	ok, err := r.HasValueAccess(util.Uint160{5}, util.Uint160{6})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestHistoryOf(t *testing.T) {
	ti := new(testInv)
	r := NewSubWalletReader(ti, util.Uint160{1, 2, 3})

	ti.res = &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{stackitem.Make([]stackitem.Item{})},
	}
	history, err := r.HistoryOf(util.Uint160{5})
	require.NoError(t, err)
	require.Empty(t, history)

	ti.res = &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{stackitem.Make([]stackitem.Item{
			stackitem.NewStruct([]stackitem.Item{
				stackitem.Make("item-1"), stackitem.Make(5),
			}),
			stackitem.NewStruct([]stackitem.Item{
				stackitem.Make("item-2"), stackitem.Make(7),
			}),
		})},
	}
	history, err = r.HistoryOf(util.Uint160{5})
	require.NoError(t, err)
	require.Equal(t, []PurchaseRecord{
		{ID: "item-1", Price: big.NewInt(5)},
		{ID: "item-2", Price: big.NewInt(7)},
	}, history)

	ti.res = &result.Invoke{
		State: "HALT",
		Stack: []stackitem.Item{stackitem.Make([]stackitem.Item{
			stackitem.Make(100500),
		})},
	}
	_, err = r.HistoryOf(util.Uint160{5})
	require.Error(t, err)
}
