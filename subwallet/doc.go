/*
SubWallet contract is the sub-wallet class contract of the eSIM wallet
platform.

Each sub-wallet is a record of this contract owned by a device wallet. The
record carries an internal balance, a one-shot external identifier linking
the account to an off-chain eSIM profile and an append-only purchase
history. Purchases are settled from the sub-wallet balance first; a
shortfall is pulled from the owning device wallet, which requires the value
access grant of that wallet. Every settlement is tallied into the platform
vault balance kept by the device wallet class contract.

Sub-wallets move between device wallets either directly, witnessed by the
current owner, or through an approval handshake: the current owner approves
a registered device wallet, the new owner witnesses the transfer and the
approval is consumed. The registry then mirrors the
move through the release and claim flow of the device wallet class
contract. Lazily provisioned sub-wallets get their off-chain purchase
history backfilled by the registry exactly once.

# Contract notifications

externalIdentifierSet notification. This notification is produced when the
off-chain identifier of the sub-wallet is assigned.

	externalIdentifierSet:
	  - name: subWallet
	    type: Hash160
	  - name: externalID
	    type: String

purchaseCompleted notification. This notification is produced when a
purchase settles and joins the history.

	purchaseCompleted:
	  - name: subWallet
	    type: Hash160
	  - name: itemID
	    type: String
	  - name: price
	    type: Integer

historyBackfilled notification. This notification is produced when the
registry seeds the history of a lazily provisioned sub-wallet.

	historyBackfilled:
	  - name: subWallet
	    type: Hash160
	  - name: count
	    type: Integer

approvalUpdated notification. This notification is produced when the owner
grants or revokes a transfer approval.

	approvalUpdated:
	  - name: subWallet
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: granted
	    type: Boolean

ownershipTransferred notification. This notification is produced when the
sub-wallet moves to a new owning device wallet.

	ownershipTransferred:
	  - name: subWallet
	    type: Hash160
	  - name: newOwner
	    type: Hash160
*/
package subwallet
