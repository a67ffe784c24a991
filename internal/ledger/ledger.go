// Package ledger implements the asset-transfer service the vault settles
// against: fungible mints, token accounts, and authorized transfers.
//
// The ledger is the execution environment for swaps. Its Atomically method
// gives callers an all-or-nothing unit of work, so a multi-leg transfer either
// commits every leg or leaves no trace. Transfers are authorized either by the
// owning user's signature or by a derived-authority proof; the ledger
// re-verifies proofs against the derivation on every call.
package ledger

import (
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-vaultswap/internal/authority"
	"github.com/lugondev/go-vaultswap/internal/common"
	"github.com/lugondev/go-vaultswap/internal/errors"
	"github.com/lugondev/go-vaultswap/pkg/types"
)

// Authorizer proves the right to debit a token account owned by owner.
type Authorizer interface {
	AuthorizedFor(owner types.Pubkey) bool
}

// UserSignature authorizes transfers out of accounts owned by the signer.
// Wallet signature verification happens upstream; by the time a request
// reaches the ledger the signer identity is trusted.
type UserSignature struct {
	Signer types.Pubkey
}

// AuthorizedFor reports whether the signature covers the account owner.
func (s UserSignature) AuthorizedFor(owner types.Pubkey) bool {
	return s.Signer.Equals(owner)
}

// AuthorityProof authorizes transfers out of accounts owned by a derived
// authority. The proof is re-verified against the derivation scheme, never
// against a cached address.
type AuthorityProof struct {
	Proof authority.Proof
}

// AuthorizedFor reports whether the proof reconstructs the account owner.
func (p AuthorityProof) AuthorizedFor(owner types.Pubkey) bool {
	return p.Proof.Authorizes(owner)
}

// Mint describes one fungible asset type.
type Mint struct {
	Address  types.Pubkey
	Decimals uint8
	Supply   uint64
}

// Account is one token account holding a balance of a single mint.
type Account struct {
	Address types.Pubkey
	Mint    types.Pubkey
	Owner   types.Pubkey
	Balance uint64
	Frozen  bool
}

// Ledger is an in-memory token ledger. All exported methods are safe for
// concurrent use; operations against the same accounts serialize on the
// ledger's lock, so each one observes a consistent snapshot.
type Ledger struct {
	common.LoggerMixin

	mu       sync.Mutex
	mints    map[types.Pubkey]*Mint
	accounts map[types.Pubkey]*Account
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		LoggerMixin: common.NewLoggerMixin(),
		mints:       make(map[types.Pubkey]*Mint),
		accounts:    make(map[types.Pubkey]*Account),
	}
}

// CreateMint registers a new fungible asset type and returns its identity.
func (l *Ledger) CreateMint(decimals uint8) types.Pubkey {
	l.mu.Lock()
	defer l.mu.Unlock()

	addr := solana.NewWallet().PublicKey()
	l.mints[addr] = &Mint{Address: addr, Decimals: decimals}
	return addr
}

// CreateAccount opens a token account for the given owner and mint.
func (l *Ledger) CreateAccount(owner, mint types.Pubkey) (types.Pubkey, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.mints[mint]; !ok {
		return types.Pubkey{}, errors.ErrAccountNotFound.WithDetails(map[string]any{"mint": mint.String()})
	}

	addr := solana.NewWallet().PublicKey()
	l.accounts[addr] = &Account{Address: addr, Mint: mint, Owner: owner}
	return addr, nil
}

// CreateAccountAt opens a token account at a caller-chosen address, used for
// reserves keyed off a derived authority. Fails if the address is taken.
func (l *Ledger) CreateAccountAt(addr, owner, mint types.Pubkey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.mints[mint]; !ok {
		return errors.ErrAccountNotFound.WithDetails(map[string]any{"mint": mint.String()})
	}
	if _, ok := l.accounts[addr]; ok {
		return errors.ErrAllocationFailed.WithDetails(map[string]any{"address": addr.String()})
	}

	l.accounts[addr] = &Account{Address: addr, Mint: mint, Owner: owner}
	return nil
}

// CloseAccount removes an empty token account. Accounts still holding a
// balance cannot be closed.
func (l *Ledger) CloseAccount(account types.Pubkey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[account]
	if !ok {
		return errors.ErrAccountNotFound.WithDetails(map[string]any{"account": account.String()})
	}
	if acct.Balance != 0 {
		return errors.ErrAccountNotEmpty.WithDetails(map[string]any{"account": account.String(), "balance": acct.Balance})
	}

	delete(l.accounts, account)
	return nil
}

// MintTo credits newly issued tokens to an account.
func (l *Ledger) MintTo(mint, account types.Pubkey, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.mints[mint]
	if !ok {
		return errors.ErrAccountNotFound.WithDetails(map[string]any{"mint": mint.String()})
	}
	acct, ok := l.accounts[account]
	if !ok {
		return errors.ErrAccountNotFound.WithDetails(map[string]any{"account": account.String()})
	}
	if !acct.Mint.Equals(mint) {
		return errors.ErrAssetMismatch
	}

	acct.Balance += amount
	m.Supply += amount
	return nil
}

// Balance returns the current balance of a token account.
func (l *Ledger) Balance(account types.Pubkey) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceLocked(account)
}

// Freeze marks an account so that it can no longer send or receive.
func (l *Ledger) Freeze(account types.Pubkey) error {
	return l.setFrozen(account, true)
}

// Thaw lifts a freeze.
func (l *Ledger) Thaw(account types.Pubkey) error {
	return l.setFrozen(account, false)
}

func (l *Ledger) setFrozen(account types.Pubkey, frozen bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[account]
	if !ok {
		return errors.ErrAccountNotFound.WithDetails(map[string]any{"account": account.String()})
	}
	acct.Frozen = frozen
	return nil
}

// Account returns a copy of the account state.
func (l *Ledger) Account(account types.Pubkey) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[account]
	if !ok {
		return Account{}, errors.ErrAccountNotFound.WithDetails(map[string]any{"account": account.String()})
	}
	return *acct, nil
}

// Transfer moves amount of mint from one account to another, checked against
// the expected mint on both sides and authorized for the source owner.
func (l *Ledger) Transfer(from, to, mint types.Pubkey, amount uint64, auth Authorizer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transferLocked(from, to, mint, amount, auth)
}

// Tx exposes ledger operations inside an atomic unit of work.
type Tx struct {
	l *Ledger
}

// Transfer is Transfer scoped to the enclosing unit of work.
func (tx *Tx) Transfer(from, to, mint types.Pubkey, amount uint64, auth Authorizer) error {
	return tx.l.transferLocked(from, to, mint, amount, auth)
}

// Balance is Balance scoped to the enclosing unit of work.
func (tx *Tx) Balance(account types.Pubkey) (uint64, error) {
	return tx.l.balanceLocked(account)
}

// Atomically runs fn as a single indivisible unit against a consistent
// snapshot of the ledger. If fn returns an error every effect it had is
// unwound and the error is returned unchanged.
func (l *Ledger) Atomically(fn func(tx *Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := l.snapshotLocked()
	if err := fn(&Tx{l: l}); err != nil {
		l.restoreLocked(snapshot)
		return err
	}
	return nil
}

func (l *Ledger) balanceLocked(account types.Pubkey) (uint64, error) {
	acct, ok := l.accounts[account]
	if !ok {
		return 0, errors.ErrAccountNotFound.WithDetails(map[string]any{"account": account.String()})
	}
	return acct.Balance, nil
}

func (l *Ledger) transferLocked(from, to, mint types.Pubkey, amount uint64, auth Authorizer) error {
	src, ok := l.accounts[from]
	if !ok {
		return errors.ErrAccountNotFound.WithDetails(map[string]any{"account": from.String()})
	}
	dst, ok := l.accounts[to]
	if !ok {
		return errors.ErrAccountNotFound.WithDetails(map[string]any{"account": to.String()})
	}
	if !src.Mint.Equals(mint) || !dst.Mint.Equals(mint) {
		return errors.ErrAssetMismatch
	}
	if src.Frozen || dst.Frozen {
		return errors.ErrAccountFrozen
	}
	if auth == nil || !auth.AuthorizedFor(src.Owner) {
		return errors.ErrUnauthorizedSigner
	}
	if src.Balance < amount {
		return errors.ErrInsufficientBalance
	}

	src.Balance -= amount
	dst.Balance += amount
	return nil
}

type snapshot struct {
	mints    map[types.Pubkey]Mint
	accounts map[types.Pubkey]Account
}

func (l *Ledger) snapshotLocked() snapshot {
	snap := snapshot{
		mints:    make(map[types.Pubkey]Mint, len(l.mints)),
		accounts: make(map[types.Pubkey]Account, len(l.accounts)),
	}
	for k, v := range l.mints {
		snap.mints[k] = *v
	}
	for k, v := range l.accounts {
		snap.accounts[k] = *v
	}
	return snap
}

func (l *Ledger) restoreLocked(snap snapshot) {
	l.mints = make(map[types.Pubkey]*Mint, len(snap.mints))
	l.accounts = make(map[types.Pubkey]*Account, len(snap.accounts))
	for k, v := range snap.mints {
		m := v
		l.mints[k] = &m
	}
	for k, v := range snap.accounts {
		a := v
		l.accounts[k] = &a
	}
}
