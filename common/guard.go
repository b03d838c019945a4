package common

import "github.com/nspcc-dev/neo-go/pkg/interop/storage"

// ErrReentrantCall is thrown by LockGuard when the guarded account is
// already inside a value-moving call.
const ErrReentrantCall = "reentrant call"

var guardPrefix = []byte{0x7f}

// LockGuard takes the non-reentrant execution lock of the given account.
// A nested attempt to take the same lock within one transaction panics with
// ErrReentrantCall. A fault anywhere in the transaction reverts the lock
// together with the rest of the state.
func LockGuard(ctx storage.Context, acc []byte) {
	key := append(guardPrefix, acc...)
	if storage.Get(ctx, key) != nil {
		panic(ErrReentrantCall)
	}

	storage.Put(ctx, key, []byte{1})
}

// UnlockGuard releases the lock taken by LockGuard.
func UnlockGuard(ctx storage.Context, acc []byte) {
	storage.Delete(ctx, append(guardPrefix, acc...))
}
