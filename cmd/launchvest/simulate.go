package main

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	launchvest "github.com/launchvest/launchvest-go"
	"github.com/launchvest/launchvest-go/config"
	"github.com/launchvest/launchvest-go/curve"
	"github.com/launchvest/launchvest-go/shared"
)

var (
	simulateConfigFlag string
	simulateBuysFlag   string
)

// sinkValue absorbs value transfers during simulation.
type sinkValue struct{}

func (sinkValue) Transfer(to shared.Address, amount *big.Int) error { return nil }

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a sequence of purchases against a fresh launch",
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, err := config.Load(simulateConfigFlag)
		if err != nil {
			return err
		}
		launch, err := launchvest.NewLaunch(desc.Admin, desc.Self, desc.Token, desc.Config, sinkValue{})
		if err != nil {
			return err
		}
		if err := launch.Controller.StartDistribution(desc.Admin); err != nil {
			return err
		}

		var buys []*big.Int
		for _, part := range strings.Split(simulateBuysFlag, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, ok := new(big.Int).SetString(part, 10)
			if !ok || v.Sign() <= 0 {
				return errors.Errorf("bad buy amount %q", part)
			}
			buys = append(buys, v)
		}
		if len(buys) == 0 {
			return errors.New("no buy amounts given")
		}

		for i, amount := range buys {
			buyer := shared.Address(fmt.Sprintf("buyer-%d", i+1))
			_, _, total, _, err := launch.Controller.PreviewPurchase(amount)
			if err != nil {
				return errors.Wrapf(err, "buy %d", i+1)
			}
			receipt, err := launch.Controller.PurchaseTokens(buyer, amount, total)
			if err != nil {
				return errors.Wrapf(err, "buy %d", i+1)
			}
			logrus.WithFields(logrus.Fields{
				"buyer":  buyer,
				"amount": amount.String(),
			}).Debug("purchase accepted")
			fmt.Printf("buy %2d: %8s tokens  base %s  premium %sx  paid %s  vest %ds\n",
				i+1, amount,
				curve.Q64ToDecimal(receipt.BasePrice).StringFixed(6),
				curve.Q64ToDecimal(receipt.Premium).StringFixed(6),
				receipt.TotalCost, receipt.VestingDuration)
		}

		stats := launch.Controller.DistributionStats()
		remaining, total, _, _ := launch.Controller.SupplyInfo()
		bold := color.New(color.Bold)
		bold.Println("--- totals ---")
		fmt.Printf("raised:       %s\n", color.GreenString(stats.TotalRaised.String()))
		fmt.Printf("participants: %d\n", stats.TotalParticipants)
		fmt.Printf("largest:      %s by %s\n", stats.LargestPurchase, stats.LargestPurchaser)
		fmt.Printf("remaining:    %s / %s (%d bps sold)\n",
			remaining, total, launch.Controller.PercentageSold())
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateConfigFlag, "config", "launch.json", "launch description file")
	simulateCmd.Flags().StringVar(&simulateBuysFlag, "buys", "", "comma-separated token amounts to buy in order")
	simulateCmd.MarkFlagRequired("buys")
}
