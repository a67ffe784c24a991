package ledger

import (
	"os"
	"path/filepath"
	"testing"
)

const testManifest = `
mints:
  - name: USD-mock
    decimals: 6
  - name: EUR-mock
    decimals: 2

users:
  - name: alice

balances:
  - user: alice
    mint: USD-mock
    balance: 1500
`

func TestLoadGenesisAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	if err := os.WriteFile(path, []byte(testManifest), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	g, err := LoadGenesis(path)
	if err != nil {
		t.Fatalf("LoadGenesis failed: %v", err)
	}
	if len(g.Mints) != 2 || len(g.Users) != 1 || len(g.Seeds) != 1 {
		t.Fatalf("unexpected manifest shape: %+v", g)
	}

	l := New()
	world, err := g.Apply(l)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	acct, ok := world.Accounts[AccountKey("alice", "USD-mock")]
	if !ok {
		t.Fatal("seeded account missing from world")
	}
	bal, err := l.Balance(acct)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if bal != 1500 {
		t.Errorf("seeded balance = %d, want 1500", bal)
	}
}

func TestApplyRejectsUnknownReferences(t *testing.T) {
	l := New()

	g := &Genesis{
		Mints: []GenesisMint{{Name: "USD-mock", Decimals: 6}},
		Seeds: []GenesisBalance{{User: "ghost", Mint: "USD-mock", Balance: 1}},
	}
	if _, err := g.Apply(l); err == nil {
		t.Error("Apply accepted a balance for an undeclared user")
	}

	g = &Genesis{
		Users: []GenesisUser{{Name: "alice"}},
		Seeds: []GenesisBalance{{User: "alice", Mint: "ghost", Balance: 1}},
	}
	if _, err := g.Apply(l); err == nil {
		t.Error("Apply accepted a balance for an undeclared mint")
	}
}
