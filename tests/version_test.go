package tests

import (
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/esimchain/esim-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	data, err := os.ReadFile("../VERSION")
	require.NoError(t, err)

	v := strings.TrimPrefix(string(data), "v")
	parts := strings.Split(strings.TrimSpace(v), ".")
	require.Len(t, parts, 3)

	var ver [3]int
	for i := range parts {
		ver[i], err = strconv.Atoi(parts[i])
		require.NoError(t, err)
	}

	require.Equal(t, common.Version, ver[0]*1_000_000+ver[1]*1_000+ver[2],
		"version from common package is different from the one in VERSION file")
}

func TestContractsVersion(t *testing.T) {
	p := newPlatform(t)

	for _, c := range []struct {
		name    string
		invoker *neotest.ContractInvoker
	}{
		{"registry", p.registry},
		{"walletfactory", p.walletFactory},
		{"subwalletfactory", p.subWalletFactory},
		{"wallet", p.wallet},
		{"subwallet", p.subWallet},
	} {
		t.Run(c.name, func(t *testing.T) {
			c.invoker.Invoke(t, common.Version, "version")
		})
	}
}
