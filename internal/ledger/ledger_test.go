package ledger

import (
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-vaultswap/internal/authority"
	"github.com/lugondev/go-vaultswap/internal/errors"
	"github.com/lugondev/go-vaultswap/pkg/types"
)

func newFundedAccount(t *testing.T, l *Ledger, owner, mint types.Pubkey, balance uint64) types.Pubkey {
	t.Helper()

	acct, err := l.CreateAccount(owner, mint)
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if balance > 0 {
		if err := l.MintTo(mint, acct, balance); err != nil {
			t.Fatalf("MintTo failed: %v", err)
		}
	}
	return acct
}

func TestTransferMovesBalance(t *testing.T) {
	l := New()
	mint := l.CreateMint(6)
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()

	from := newFundedAccount(t, l, alice, mint, 1000)
	to := newFundedAccount(t, l, bob, mint, 0)

	if err := l.Transfer(from, to, mint, 400, UserSignature{Signer: alice}); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	fromBal, _ := l.Balance(from)
	toBal, _ := l.Balance(to)
	if fromBal != 600 || toBal != 400 {
		t.Errorf("balances after transfer = (%d, %d), want (600, 400)", fromBal, toBal)
	}
}

func TestTransferRejections(t *testing.T) {
	l := New()
	mintA := l.CreateMint(6)
	mintB := l.CreateMint(6)
	alice := solana.NewWallet().PublicKey()
	mallory := solana.NewWallet().PublicKey()

	from := newFundedAccount(t, l, alice, mintA, 100)
	to := newFundedAccount(t, l, alice, mintA, 0)
	wrongMint := newFundedAccount(t, l, alice, mintB, 0)
	frozen := newFundedAccount(t, l, alice, mintA, 100)
	if err := l.Freeze(frozen); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}

	tests := []struct {
		name string
		from types.Pubkey
		to   types.Pubkey
		mint types.Pubkey
		amt  uint64
		auth Authorizer
		want error
	}{
		{"insufficient balance", from, to, mintA, 101, UserSignature{Signer: alice}, errors.ErrInsufficientBalance},
		{"wrong signer", from, to, mintA, 10, UserSignature{Signer: mallory}, errors.ErrUnauthorizedSigner},
		{"nil authorizer", from, to, mintA, 10, nil, errors.ErrUnauthorizedSigner},
		{"mint mismatch on destination", from, wrongMint, mintA, 10, UserSignature{Signer: alice}, errors.ErrAssetMismatch},
		{"mint mismatch on source", from, to, mintB, 10, UserSignature{Signer: alice}, errors.ErrAssetMismatch},
		{"frozen source", frozen, to, mintA, 10, UserSignature{Signer: alice}, errors.ErrAccountFrozen},
		{"missing account", solana.NewWallet().PublicKey(), to, mintA, 10, UserSignature{Signer: alice}, errors.ErrAccountNotFound},
	}

	for _, tt := range tests {
		err := l.Transfer(tt.from, tt.to, tt.mint, tt.amt, tt.auth)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: Transfer error = %v, want %v", tt.name, err, tt.want)
		}
	}

	// None of the rejected transfers should have moved anything.
	if bal, _ := l.Balance(from); bal != 100 {
		t.Errorf("source balance changed after rejected transfers: %d", bal)
	}
	if bal, _ := l.Balance(to); bal != 0 {
		t.Errorf("destination balance changed after rejected transfers: %d", bal)
	}
}

func TestCreateAccountAt(t *testing.T) {
	l := New()
	mint := l.CreateMint(6)
	owner := solana.NewWallet().PublicKey()
	addr := solana.NewWallet().PublicKey()

	if err := l.CreateAccountAt(addr, owner, mint); err != nil {
		t.Fatalf("CreateAccountAt failed: %v", err)
	}
	acct, err := l.Account(addr)
	if err != nil {
		t.Fatalf("Account failed: %v", err)
	}
	if !acct.Owner.Equals(owner) || !acct.Mint.Equals(mint) {
		t.Errorf("account at %s has owner %s mint %s", addr, acct.Owner, acct.Mint)
	}

	err = l.CreateAccountAt(addr, owner, mint)
	if !errors.Is(err, errors.ErrAllocationFailed) {
		t.Errorf("second CreateAccountAt at same address: err = %v, want %v", err, errors.ErrAllocationFailed)
	}
	err = l.CreateAccountAt(solana.NewWallet().PublicKey(), owner, solana.NewWallet().PublicKey())
	if !errors.Is(err, errors.ErrAccountNotFound) {
		t.Errorf("CreateAccountAt with unknown mint: err = %v, want %v", err, errors.ErrAccountNotFound)
	}
}

func TestCloseAccount(t *testing.T) {
	l := New()
	mint := l.CreateMint(6)
	owner := solana.NewWallet().PublicKey()

	funded := newFundedAccount(t, l, owner, mint, 25)
	err := l.CloseAccount(funded)
	if !errors.Is(err, errors.ErrAccountNotEmpty) {
		t.Errorf("closing a funded account: err = %v, want %v", err, errors.ErrAccountNotEmpty)
	}

	empty := newFundedAccount(t, l, owner, mint, 0)
	if err := l.CloseAccount(empty); err != nil {
		t.Fatalf("CloseAccount failed: %v", err)
	}
	if _, err := l.Account(empty); !errors.Is(err, errors.ErrAccountNotFound) {
		t.Errorf("closed account still readable: err = %v", err)
	}

	err = l.CloseAccount(empty)
	if !errors.Is(err, errors.ErrAccountNotFound) {
		t.Errorf("closing a closed account: err = %v, want %v", err, errors.ErrAccountNotFound)
	}
}

func TestThawLiftsFreeze(t *testing.T) {
	l := New()
	mint := l.CreateMint(6)
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()

	from := newFundedAccount(t, l, alice, mint, 100)
	to := newFundedAccount(t, l, bob, mint, 0)

	if err := l.Freeze(from); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}
	err := l.Transfer(from, to, mint, 10, UserSignature{Signer: alice})
	if !errors.Is(err, errors.ErrAccountFrozen) {
		t.Fatalf("transfer from frozen account: err = %v, want %v", err, errors.ErrAccountFrozen)
	}

	if err := l.Thaw(from); err != nil {
		t.Fatalf("Thaw failed: %v", err)
	}
	if err := l.Transfer(from, to, mint, 10, UserSignature{Signer: alice}); err != nil {
		t.Errorf("transfer after thaw failed: %v", err)
	}
}

func TestAuthorityProofAuthorizesReserveDebit(t *testing.T) {
	l := New()
	mint := l.CreateMint(6)

	seed := solana.NewWallet().PublicKey()
	auth, bump, err := authority.Derive([]byte(authority.PoolAuthoritySeed), seed.Bytes())
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	reserve := newFundedAccount(t, l, auth, mint, 500)
	user := solana.NewWallet().PublicKey()
	dest := newFundedAccount(t, l, user, mint, 0)

	proof := authority.NewProof(bump, []byte(authority.PoolAuthoritySeed), seed.Bytes())
	if err := l.Transfer(reserve, dest, mint, 200, AuthorityProof{Proof: proof}); err != nil {
		t.Fatalf("Transfer under authority proof failed: %v", err)
	}

	// A user signature must not be able to debit the reserve.
	err = l.Transfer(reserve, dest, mint, 1, UserSignature{Signer: user})
	if !errors.Is(err, errors.ErrUnauthorizedSigner) {
		t.Errorf("user signature debited a reserve: err = %v", err)
	}

	// A proof with the wrong seeds must not authorize either.
	otherSeed := solana.NewWallet().PublicKey()
	badProof := authority.NewProof(bump, []byte(authority.PoolAuthoritySeed), otherSeed.Bytes())
	err = l.Transfer(reserve, dest, mint, 1, AuthorityProof{Proof: badProof})
	if !errors.Is(err, errors.ErrUnauthorizedSigner) {
		t.Errorf("mismatched proof debited a reserve: err = %v", err)
	}
}

func TestAtomicallyUnwindsOnFailure(t *testing.T) {
	l := New()
	mint := l.CreateMint(6)
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()

	a := newFundedAccount(t, l, alice, mint, 1000)
	b := newFundedAccount(t, l, bob, mint, 1000)

	err := l.Atomically(func(tx *Tx) error {
		if err := tx.Transfer(a, b, mint, 300, UserSignature{Signer: alice}); err != nil {
			return err
		}
		// Second leg fails: bob cannot cover it.
		return tx.Transfer(b, a, mint, 5000, UserSignature{Signer: bob})
	})
	if !errors.Is(err, errors.ErrInsufficientBalance) {
		t.Fatalf("Atomically error = %v, want %v", err, errors.ErrInsufficientBalance)
	}

	balA, _ := l.Balance(a)
	balB, _ := l.Balance(b)
	if balA != 1000 || balB != 1000 {
		t.Errorf("balances after unwound unit = (%d, %d), want (1000, 1000)", balA, balB)
	}
}

func TestAtomicallyCommitsOnSuccess(t *testing.T) {
	l := New()
	mint := l.CreateMint(6)
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()

	a := newFundedAccount(t, l, alice, mint, 1000)
	b := newFundedAccount(t, l, bob, mint, 1000)

	err := l.Atomically(func(tx *Tx) error {
		if err := tx.Transfer(a, b, mint, 300, UserSignature{Signer: alice}); err != nil {
			return err
		}
		return tx.Transfer(b, a, mint, 100, UserSignature{Signer: bob})
	})
	if err != nil {
		t.Fatalf("Atomically failed: %v", err)
	}

	balA, _ := l.Balance(a)
	balB, _ := l.Balance(b)
	if balA != 800 || balB != 1200 {
		t.Errorf("balances after committed unit = (%d, %d), want (800, 1200)", balA, balB)
	}
}
