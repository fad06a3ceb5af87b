// launchvest is the operational CLI for a token launch: pricing previews,
// sale simulation, and state snapshot handling.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "launchvest",
	Short: "Fixed-supply token launch tooling",
	Long: `launchvest prices and simulates fixed-supply token distributions.

Examples:
  launchvest preview --config launch.json --amount 1000
  launchvest simulate --config launch.json --buys 1000,5000,25000
  launchvest snapshot export --db launch.db --out launch.snap`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		if verboseFlag {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(previewCmd, simulateCmd, snapshotCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
