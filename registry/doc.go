/*
Registry contract is the root contract of the eSIM wallet platform.

Registry contract stores the authoritative view of the platform: which device
wallet serves each device identifier and each owner public key, which device
wallet each sub-wallet belongs to, the standby state of sub-wallets and the
addresses of the platform admin, the vault, the secondary provisioning agent
and the four cooperating contracts. Factories and wallet class contracts
report every account mutation here, so cross-contract records never diverge.

The secondary provisioning agent uses the registry to lazily provision
device wallets for users who started on the off-chain ledger, recreating the
wallet, its sub-wallets and their purchase histories in a single transaction.

# Contract notifications

deviceWalletRegistered notification. This notification is produced when a
device wallet finishes registration for a device identifier.

	deviceWalletRegistered:
	  - name: deviceWallet
	    type: Hash160
	  - name: deviceID
	    type: String

deviceWalletOwnerKeyUpdated notification. This notification is produced when
a device wallet completes an owner key rotation.

	deviceWalletOwnerKeyUpdated:
	  - name: deviceWallet
	    type: Hash160

subWalletAssociationUpdated notification. This notification is produced when
a sub-wallet is released from or claimed by a device wallet.

	subWalletAssociationUpdated:
	  - name: subWallet
	    type: Hash160
	  - name: deviceWallet
	    type: Hash160

lazyWalletDeployed notification. This notification is produced when the
secondary provisioning agent recreates an off-chain user on the chain.

	lazyWalletDeployed:
	  - name: deviceWallet
	    type: Hash160
	  - name: deviceID
	    type: String
*/
package registry
