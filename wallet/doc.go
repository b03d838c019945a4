/*
Wallet contract is the device wallet class contract of the eSIM wallet
platform.

Each device wallet is a record of this contract at a deterministic address
derived from its owner public key, device identifier and salt. The record
holds the owner key, the device identifier and an internal balance backed by
GAS held at the wallet factory. The owner authorizes actions by witnessing
with the signature account of the owner key; a two-step key rotation keeps
the registry binding consistent with the record.

Sub-wallets attach to a device wallet with an optional value access flag.
With value access a sub-wallet may pull funds from the wallet balance or
have the wallet pay the platform vault for a purchase directly. Detaching a
sub-wallet puts it on standby and leaves the registry record pending until
another device wallet that already owns it claims it.

# Contract notifications

transferCompleted notification. This notification is produced when funds
move out of a device wallet balance, either to the platform vault or to a
sub-wallet.

	transferCompleted:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer

subWalletReleased notification. This notification is produced when the owner
detaches a sub-wallet from the device wallet.

	subWalletReleased:
	  - name: deviceWallet
	    type: Hash160
	  - name: subWallet
	    type: Hash160

subWalletClaimed notification. This notification is produced when the owner
attaches a released sub-wallet to the device wallet.

	subWalletClaimed:
	  - name: deviceWallet
	    type: Hash160
	  - name: subWallet
	    type: Hash160

ownerUpdateRequested notification. This notification is produced when the
owner nominates a new owner key.

	ownerUpdateRequested:
	  - name: deviceWallet
	    type: Hash160
	  - name: newKey
	    type: PublicKey

ownerUpdated notification. This notification is produced when the nominated
key accepts ownership of the device wallet.

	ownerUpdated:
	  - name: deviceWallet
	    type: Hash160
	  - name: newKey
	    type: PublicKey
*/
package wallet
