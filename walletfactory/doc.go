/*
WalletFactory contract is the only entry point for device wallet creation on
the eSIM wallet platform.

WalletFactory contract deploys device wallet accounts into the wallet class
contract at deterministic addresses, records them in the registry and holds
the native GAS backing deposited wallet balances. Batch deployment is funded
from a pending deposit the payer tops up with a plain GAS transfer to the
factory; an unused remainder can be withdrawn at any time. The factory also
keeps the pointer to the device wallet class contract, so the platform admin
can switch every account to a new implementation with a single update.

Device wallets can also be created through a transaction relay that forbids
external storage writes. For that path CreateAccount deploys the bare
account and PostCreateAccount finishes registry bookkeeping afterwards;
both paths converge on the same deterministic address.

# Contract notifications

depositReceived notification. This notification is produced when GAS is
transferred to the factory and credited as a pending deposit.

	depositReceived:
	  - name: beneficiary
	    type: Hash160
	  - name: amount
	    type: Integer

walletDeployed notification. This notification is produced when a device
wallet completes deployment and bookkeeping.

	walletDeployed:
	  - name: deviceWallet
	    type: Hash160
	  - name: deviceID
	    type: String

adminUpdateRequested notification. This notification is produced when the
admin nominates a successor.

	adminUpdateRequested:
	  - name: newAdmin
	    type: Hash160

adminUpdated notification. This notification is produced when the nominated
successor accepts the admin role.

	adminUpdated:
	  - name: admin
	    type: Hash160

walletImplementationUpdated notification. This notification is produced when
the device wallet class contract pointer is switched.

	walletImplementationUpdated:
	  - name: implementation
	    type: Hash160
*/
package walletfactory
