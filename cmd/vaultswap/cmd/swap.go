package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-vaultswap/internal/engine"
	"github.com/lugondev/go-vaultswap/internal/pool"
	"github.com/lugondev/go-vaultswap/pkg/types"
)

var (
	swapUser      string
	swapAssetA    string
	swapAssetB    string
	swapAmount    uint64
	swapDirection string
	swapReserve   uint64
)

var swapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Settle a swap against a freshly seeded pool",
	Long: `Seed the ledger from the genesis manifest, create a pool for the pair,
fund both reserves, and settle one swap. Prints the settlement receipt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w, err := buildWorld(ctx)
		if err != nil {
			return err
		}
		defer w.Close()

		var direction types.Direction
		switch swapDirection {
		case "a_to_b":
			direction = types.DirectionAToB
		case "b_to_a":
			direction = types.DirectionBToA
		default:
			return fmt.Errorf("direction must be a_to_b or b_to_a, got %q", swapDirection)
		}

		user, err := w.user(swapUser)
		if err != nil {
			return err
		}
		assetA, err := w.mint(swapAssetA)
		if err != nil {
			return err
		}
		assetB, err := w.mint(swapAssetB)
		if err != nil {
			return err
		}

		record, reserves, err := w.registry.CreatePool(ctx, user, assetA, assetB)
		if err != nil {
			return err
		}
		if err := w.ledger.MintTo(assetA, reserves.A, swapReserve); err != nil {
			return err
		}
		if err := w.ledger.MintTo(assetB, reserves.B, swapReserve); err != nil {
			return err
		}

		req, err := buildRequest(w, record, reserves, user, swapUser, direction, swapAmount)
		if err != nil {
			return err
		}

		settlement, err := w.engine.Swap(ctx, req)
		if err != nil {
			return err
		}

		fmt.Printf("Swap settled\n")
		fmt.Printf("  ID:         %s\n", settlement.ID)
		fmt.Printf("  User:       %s\n", settlement.User)
		fmt.Printf("  Direction:  %s\n", settlement.Direction)
		fmt.Printf("  Amount in:  %d\n", settlement.AmountIn)
		fmt.Printf("  Amount out: %d\n", settlement.AmountOut)
		return nil
	},
}

// buildRequest assembles a swap request with the accounts oriented for the
// direction. The user must have seeded genesis accounts for both mints.
func buildRequest(w *vaultWorld, record *pool.Record, reserves pool.Reserves,
	user types.Pubkey, userName string, direction types.Direction, amount uint64) (engine.Request, error) {

	auth, err := record.Authority()
	if err != nil {
		return engine.Request{}, err
	}

	aName, bName := swapAssetA, swapAssetB
	acctA, err := w.account(userName, aName)
	if err != nil {
		return engine.Request{}, err
	}
	acctB, err := w.account(userName, bName)
	if err != nil {
		return engine.Request{}, err
	}

	req := engine.Request{
		Pool:      record,
		User:      user,
		AmountIn:  amount,
		Direction: direction,
		Authority: auth,
	}
	switch direction {
	case types.DirectionAToB:
		req.UserSource, req.UserDestination = acctA, acctB
		req.ReserveSource, req.ReserveDestination = reserves.A, reserves.B
		req.SourceMint, req.DestinationMint = record.AssetA, record.AssetB
	default:
		req.UserSource, req.UserDestination = acctB, acctA
		req.ReserveSource, req.ReserveDestination = reserves.B, reserves.A
		req.SourceMint, req.DestinationMint = record.AssetB, record.AssetA
	}
	return req, nil
}

func init() {
	swapCmd.Flags().StringVar(&swapUser, "user", "", "genesis name of the swapping user (required)")
	swapCmd.Flags().StringVar(&swapAssetA, "asset-a", "", "genesis name of asset A (required)")
	swapCmd.Flags().StringVar(&swapAssetB, "asset-b", "", "genesis name of asset B (required)")
	swapCmd.Flags().Uint64Var(&swapAmount, "amount", 0, "input amount (required)")
	swapCmd.Flags().StringVar(&swapDirection, "direction", "a_to_b", "swap direction (a_to_b or b_to_a)")
	swapCmd.Flags().Uint64Var(&swapReserve, "reserve", 1_000_000, "opening balance for each reserve")
	_ = swapCmd.MarkFlagRequired("user")
	_ = swapCmd.MarkFlagRequired("asset-a")
	_ = swapCmd.MarkFlagRequired("asset-b")
	_ = swapCmd.MarkFlagRequired("amount")

	rootCmd.AddCommand(swapCmd)
}
