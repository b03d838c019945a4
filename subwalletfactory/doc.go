/*
SubWalletFactory contract deploys sub-wallet accounts of the eSIM wallet
platform.

Every sub-wallet is a record in the sub-wallet class contract at an address
derived from the owning device wallet and a salt. The factory records the
association both in the registry and in the device wallet class contract, so
a sub-wallet never exists without its owner knowing about it. The factory
also keeps the pointer to the sub-wallet class contract, letting the
platform admin switch every sub-wallet to a new implementation at once.

# Contract notifications

subWalletDeployed notification. This notification is produced when a
sub-wallet completes deployment.

	subWalletDeployed:
	  - name: subWallet
	    type: Hash160
	  - name: deviceWallet
	    type: Hash160

subWalletImplementationUpdated notification. This notification is produced
when the sub-wallet class contract pointer is switched.

	subWalletImplementationUpdated:
	  - name: implementation
	    type: Hash160
*/
package subwalletfactory
