package cmd

import (
	"fmt"
	"math/rand"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/lugondev/go-vaultswap/internal/engine"
	"github.com/lugondev/go-vaultswap/internal/pool"
	"github.com/lugondev/go-vaultswap/pkg/types"
)

var (
	demoSwaps   int
	demoMaxSize uint64
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the seeded two-asset demo scenario",
	Long: `Seed a USD/EUR pool with a million units per reserve, settle one fixed
swap, then run a short loop of randomly sized swaps in random directions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w, err := buildWorld(ctx)
		if err != nil {
			return err
		}
		defer w.Close()

		const (
			mintAName   = "USD-mock"
			mintBName   = "EUR-mock"
			reserveSeed = uint64(1_000_000)
		)

		decimals := w.cfg.Ledger.DefaultDecimals
		assetA := w.ledger.CreateMint(decimals)
		assetB := w.ledger.CreateMint(decimals)
		admin, userAcctA, userAcctB, user, err := demoAccounts(w, assetA, assetB)
		if err != nil {
			return err
		}

		record, reserves, err := w.registry.CreatePool(ctx, admin, assetA, assetB)
		if err != nil {
			return err
		}
		if err := w.ledger.MintTo(assetA, reserves.A, reserveSeed); err != nil {
			return err
		}
		if err := w.ledger.MintTo(assetB, reserves.B, reserveSeed); err != nil {
			return err
		}

		fmt.Printf("Pool seeded: %s <-> %s, %d units per reserve\n", mintAName, mintBName, reserveSeed)

		auth, err := record.Authority()
		if err != nil {
			return err
		}

		makeRequest := func(direction types.Direction, amount uint64) engine.Request {
			req := engine.Request{
				Pool:      record,
				User:      user,
				AmountIn:  amount,
				Direction: direction,
				Authority: auth,
			}
			orient(&req, record, reserves, userAcctA, userAcctB, direction)
			return req
		}

		// Fixed scenario: 100 units A to B.
		settlement, err := w.engine.Swap(ctx, makeRequest(types.DirectionAToB, 100))
		if err != nil {
			return err
		}
		balA, _ := w.ledger.Balance(reserves.A)
		balB, _ := w.ledger.Balance(reserves.B)
		fmt.Printf("Swap %s: %d in, %d out; reserves now A=%d B=%d\n",
			settlement.Direction, settlement.AmountIn, settlement.AmountOut, balA, balB)

		// Random strategy loop.
		for i := 0; i < demoSwaps; i++ {
			direction := types.DirectionAToB
			if rand.Intn(2) == 1 {
				direction = types.DirectionBToA
			}
			amount := uint64(rand.Int63n(int64(demoMaxSize))) + 1

			settlement, err := w.engine.Swap(ctx, makeRequest(direction, amount))
			if err != nil {
				fmt.Printf("Swap rejected: %v\n", err)
				continue
			}
			fmt.Printf("Swap %s: %d in, %d out\n",
				settlement.Direction, settlement.AmountIn, settlement.AmountOut)
		}

		balA, _ = w.ledger.Balance(reserves.A)
		balB, _ = w.ledger.Balance(reserves.B)
		fmt.Printf("Final reserves: A=%d B=%d\n", balA, balB)
		return nil
	},
}

func newDemoIdentity() types.Pubkey {
	return solana.NewWallet().PublicKey()
}

func demoAccounts(w *vaultWorld, assetA, assetB types.Pubkey) (admin, acctA, acctB, user types.Pubkey, err error) {
	admin = newDemoIdentity()
	user = newDemoIdentity()

	acctA, err = w.ledger.CreateAccount(user, assetA)
	if err != nil {
		return
	}
	acctB, err = w.ledger.CreateAccount(user, assetB)
	if err != nil {
		return
	}
	if err = w.ledger.MintTo(assetA, acctA, 10_000); err != nil {
		return
	}
	err = w.ledger.MintTo(assetB, acctB, 10_000)
	return
}

func orient(req *engine.Request, record *pool.Record, reserves pool.Reserves,
	acctA, acctB types.Pubkey, direction types.Direction) {
	if direction == types.DirectionAToB {
		req.UserSource, req.UserDestination = acctA, acctB
		req.ReserveSource, req.ReserveDestination = reserves.A, reserves.B
		req.SourceMint, req.DestinationMint = record.AssetA, record.AssetB
		return
	}
	req.UserSource, req.UserDestination = acctB, acctA
	req.ReserveSource, req.ReserveDestination = reserves.B, reserves.A
	req.SourceMint, req.DestinationMint = record.AssetB, record.AssetA
}

func init() {
	demoCmd.Flags().IntVar(&demoSwaps, "swaps", 5, "number of random swaps to run after the fixed scenario")
	demoCmd.Flags().Uint64Var(&demoMaxSize, "max-size", 500, "maximum random swap size")

	rootCmd.AddCommand(demoCmd)
}
