package ledger

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"

	"github.com/lugondev/go-vaultswap/pkg/types"
)

// Genesis describes the mints, users, and seeded balances a fresh ledger
// starts from. It is loaded from a yaml manifest by the CLI.
type Genesis struct {
	Mints []GenesisMint    `yaml:"mints"`
	Users []GenesisUser    `yaml:"users"`
	Seeds []GenesisBalance `yaml:"balances"`
}

// GenesisMint declares one fungible asset.
type GenesisMint struct {
	Name     string `yaml:"name"`
	Decimals uint8  `yaml:"decimals"`
}

// GenesisUser declares one named wallet.
type GenesisUser struct {
	Name string `yaml:"name"`
}

// GenesisBalance seeds a user's account for a mint with an opening balance.
type GenesisBalance struct {
	User    string `yaml:"user"`
	Mint    string `yaml:"mint"`
	Balance uint64 `yaml:"balance"`
}

// LoadGenesis reads a genesis manifest from a yaml file.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis manifest: %w", err)
	}

	var g Genesis
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse genesis manifest: %w", err)
	}
	return &g, nil
}

// World is the result of applying a genesis manifest: name-addressed mints,
// users, and token accounts.
type World struct {
	Mints    map[string]types.Pubkey
	Users    map[string]types.Pubkey
	Accounts map[string]types.Pubkey // keyed "user/mint"
}

// AccountKey builds the lookup key for a user's account of a mint.
func AccountKey(user, mint string) string {
	return user + "/" + mint
}

// Apply seeds the ledger from the manifest and returns the created addresses.
func (g *Genesis) Apply(l *Ledger) (*World, error) {
	w := &World{
		Mints:    make(map[string]types.Pubkey),
		Users:    make(map[string]types.Pubkey),
		Accounts: make(map[string]types.Pubkey),
	}

	for _, m := range g.Mints {
		w.Mints[m.Name] = l.CreateMint(m.Decimals)
	}
	for _, u := range g.Users {
		w.Users[u.Name] = solana.NewWallet().PublicKey()
	}

	for _, b := range g.Seeds {
		user, ok := w.Users[b.User]
		if !ok {
			return nil, fmt.Errorf("genesis balance references unknown user %q", b.User)
		}
		mint, ok := w.Mints[b.Mint]
		if !ok {
			return nil, fmt.Errorf("genesis balance references unknown mint %q", b.Mint)
		}

		acct, err := l.CreateAccount(user, mint)
		if err != nil {
			return nil, fmt.Errorf("failed to create account for %s/%s: %w", b.User, b.Mint, err)
		}
		if err := l.MintTo(mint, acct, b.Balance); err != nil {
			return nil, fmt.Errorf("failed to seed balance for %s/%s: %w", b.User, b.Mint, err)
		}
		w.Accounts[AccountKey(b.User, b.Mint)] = acct
	}

	return w, nil
}
