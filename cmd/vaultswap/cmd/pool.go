package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	poolAssetA string
	poolAssetB string
	poolAdmin  string
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Manage exchange pools",
}

var poolCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a pool for an asset pair",
	Long: `Create a pool for two mints from the genesis manifest. The pool's own
address and its custody authority are derived deterministically from the pair,
and two reserve accounts are allocated under the authority.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w, err := buildWorld(ctx)
		if err != nil {
			return err
		}
		defer w.Close()

		assetA, err := w.mint(poolAssetA)
		if err != nil {
			return err
		}
		assetB, err := w.mint(poolAssetB)
		if err != nil {
			return err
		}
		admin, err := w.user(poolAdmin)
		if err != nil {
			return err
		}

		record, reserves, err := w.registry.CreatePool(ctx, admin, assetA, assetB)
		if err != nil {
			return err
		}

		addr, err := record.Address()
		if err != nil {
			return err
		}
		auth, err := record.Authority()
		if err != nil {
			return err
		}

		fmt.Printf("Pool created\n")
		fmt.Printf("  Address:        %s (bump %d)\n", addr, record.Bump)
		fmt.Printf("  Authority:      %s (bump %d)\n", auth, record.AuthorityBump)
		fmt.Printf("  Asset A:        %s\n", record.AssetA)
		fmt.Printf("  Asset B:        %s\n", record.AssetB)
		fmt.Printf("  Reserve A:      %s\n", reserves.A)
		fmt.Printf("  Reserve B:      %s\n", reserves.B)
		return nil
	},
}

var poolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted pools",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		w, err := buildWorld(ctx)
		if err != nil {
			return err
		}
		defer w.Close()

		pools, err := w.repo.Pools().List(ctx, 100, 0)
		if err != nil {
			return err
		}
		if len(pools) == 0 {
			fmt.Println("No pools found")
			return nil
		}

		for _, p := range pools {
			fmt.Printf("%s  %s <-> %s  (created %s)\n",
				p.Address, p.AssetA, p.AssetB, p.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	poolCreateCmd.Flags().StringVar(&poolAssetA, "asset-a", "", "genesis name of asset A (required)")
	poolCreateCmd.Flags().StringVar(&poolAssetB, "asset-b", "", "genesis name of asset B (required)")
	poolCreateCmd.Flags().StringVar(&poolAdmin, "admin", "", "genesis name of the admin user (required)")
	_ = poolCreateCmd.MarkFlagRequired("asset-a")
	_ = poolCreateCmd.MarkFlagRequired("asset-b")
	_ = poolCreateCmd.MarkFlagRequired("admin")

	poolCmd.AddCommand(poolCreateCmd)
	poolCmd.AddCommand(poolListCmd)
	rootCmd.AddCommand(poolCmd)
}
