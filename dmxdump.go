package main

import (
	"fmt"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/nickysemenza/gola"
	"github.com/spf13/cobra"
)

var dumpUniverse int

var dmxDumpCmd = &cobra.Command{
	Use:   "dmx-dump",
	Short: "Print the DMX values OLA is currently outputting on a universe",
	RunE:  runDMXDump,
}

func init() {
	dmxDumpCmd.Flags().IntVarP(&dumpUniverse, "universe", "u", 1, "DMX universe to dump")
	rootCmd.AddCommand(dmxDumpCmd)
}

func runDMXDump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := gola.New(cfg.DMX.OLAAddress)
	if err != nil {
		return errors.WithStackTrace(fmt.Errorf("could not connect to OLA at %s: %w", cfg.DMX.OLAAddress, err))
	}
	defer client.Close()

	x, err := client.GetDmx(dumpUniverse)
	if err != nil {
		return errors.WithStackTrace(fmt.Errorf("GetDmx: %d: %w", dumpUniverse, err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "universe %d: %v\n", dumpUniverse, x.Data)
	return nil
}
