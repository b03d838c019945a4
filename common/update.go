package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/neo"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

// CommitteeAddress returns the committee multisig account. The committee is
// the upgrade authority for every contract of the suite.
func CommitteeAddress() []byte {
	committee := neo.GetCommittee()
	return contract.CreateMultisigAccount(len(committee)/2+1, committee)
}

// HasUpdateAccess returns true if contract can be updated.
func HasUpdateAccess() bool {
	return runtime.CheckWitness(CommitteeAddress())
}
