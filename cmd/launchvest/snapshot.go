package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/launchvest/launchvest-go/store"
)

var (
	snapshotDBFlag  string
	snapshotOutFlag string
	snapshotInFlag  string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Move launch state between the database and borsh snapshots",
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the persisted launch state as a borsh snapshot file",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(snapshotDBFlag)
		if err != nil {
			return err
		}
		defer db.Close()

		state, found, err := db.LoadLaunchState()
		if err != nil {
			return err
		}
		if !found {
			return errors.Errorf("%s holds no launch state", snapshotDBFlag)
		}
		schedules, configs, err := db.LoadVesting()
		if err != nil {
			return err
		}
		snap, err := store.BuildSnapshot(state, schedules, configs)
		if err != nil {
			return err
		}
		data, err := snap.Marshal()
		if err != nil {
			return err
		}
		if err := os.WriteFile(snapshotOutFlag, data, 0o644); err != nil {
			return errors.Wrap(err, "write snapshot")
		}
		fmt.Printf("wrote %d bytes (%d schedules) to %s\n", len(data), len(schedules), snapshotOutFlag)
		return nil
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a borsh snapshot file into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(snapshotInFlag)
		if err != nil {
			return errors.Wrap(err, "read snapshot")
		}
		snap, err := store.UnmarshalSnapshot(data)
		if err != nil {
			return err
		}

		db, err := store.Open(snapshotDBFlag)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.SaveLaunchState(snap.LaunchState()); err != nil {
			return err
		}
		schedules, configs := snap.VestingState()
		if err := db.SaveVesting(schedules, configs); err != nil {
			return err
		}
		fmt.Printf("imported %d schedules into %s\n", len(schedules), snapshotDBFlag)
		return nil
	},
}

func init() {
	snapshotCmd.PersistentFlags().StringVar(&snapshotDBFlag, "db", "launch.db", "launch database path")
	snapshotExportCmd.Flags().StringVar(&snapshotOutFlag, "out", "launch.snap", "snapshot output path")
	snapshotImportCmd.Flags().StringVar(&snapshotInFlag, "in", "launch.snap", "snapshot input path")
	snapshotCmd.AddCommand(snapshotExportCmd, snapshotImportCmd)
}
