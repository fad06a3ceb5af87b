package main

import (
	"fmt"
	"math/big"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/launchvest/launchvest-go/config"
	"github.com/launchvest/launchvest-go/curve"
)

var (
	previewConfigFlag    string
	previewAmountFlag    string
	previewRemainingFlag string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Price a purchase against the configured curve",
	RunE: func(cmd *cobra.Command, args []string) error {
		launch, err := config.Load(previewConfigFlag)
		if err != nil {
			return err
		}
		pricing := launch.Config.Pricing
		if previewRemainingFlag != "" {
			remaining, ok := new(big.Int).SetString(previewRemainingFlag, 10)
			if !ok {
				return errors.Errorf("bad remaining supply %q", previewRemainingFlag)
			}
			pricing.RemainingSupply = remaining
			if err := pricing.Validate(); err != nil {
				return err
			}
		}
		amount, ok := new(big.Int).SetString(previewAmountFlag, 10)
		if !ok || amount.Sign() <= 0 {
			return errors.Errorf("bad amount %q", previewAmountFlag)
		}

		breakdown, err := curve.TotalCost(pricing, amount)
		if err != nil {
			return err
		}
		duration, err := curve.VestingDuration(pricing,
			launch.Config.VestingDurationMin, launch.Config.VestingDurationMax)
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		fmt.Printf("amount:      %s\n", amount)
		fmt.Printf("remaining:   %s / %s\n", pricing.RemainingSupply, pricing.TotalDistributionSupply)
		fmt.Printf("base price:  %s\n", breakdown.BasePriceDecimal().StringFixed(6))
		fmt.Printf("premium:     %sx\n", breakdown.PremiumDecimal().StringFixed(6))
		bold.Printf("total cost:  %s\n", color.GreenString(breakdown.FinalCost.String()))
		fmt.Printf("vesting:     %ds\n", duration)
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVar(&previewConfigFlag, "config", "launch.json", "launch description file")
	previewCmd.Flags().StringVar(&previewAmountFlag, "amount", "", "token amount to price")
	previewCmd.Flags().StringVar(&previewRemainingFlag, "remaining", "", "override the remaining supply")
	previewCmd.MarkFlagRequired("amount")
}
