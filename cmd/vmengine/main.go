// Command vmengine is a thin manifest-driven runner over engine.Run. The
// CLI argument surface itself is explicitly out of scope for this engine
// (spec §1: "the command-line argument surface" is an external
// collaborator) — this binary exists only to demonstrate wiring engine.Run
// end to end with the exit codes spec §6.4 defines, the way the teacher's
// cli/main.go is a thin shell over its own core pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vm-engine/engine/engine"
)

func main() {
	var (
		manifestPath string
		outDir       string
	)

	runCmd := &cobra.Command{
		Use:           "run",
		Short:         "Execute one engine run from a manifest and write its output artifacts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := engine.Run(os.DirFS("."), manifestPath, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rep.ResultPath)
			fmt.Fprintln(cmd.OutOrStdout(), rep.RunRecordPath)
			if rep.FrontierMapPath != "" {
				fmt.Fprintln(cmd.OutOrStdout(), rep.FrontierMapPath)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): national support %s, margin %dpp\n",
				rep.View.Label, rep.View.LabelReason, rep.View.NationalSupportPct, rep.View.NationalMarginPp)
			if rep.ExitCode != 0 {
				os.Exit(rep.ExitCode)
			}
			return nil
		},
	}
	runCmd.Flags().StringVar(&manifestPath, "manifest", "manifest.json", "path to the run manifest, relative to the current directory")
	runCmd.Flags().StringVar(&outDir, "out", ".", "directory to write result.json/run_record.json/frontier_map.json into")

	rootCmd := &cobra.Command{
		Use:           "vmengine",
		Short:         "Deterministic offline decision-tabulation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "vmengine: %v\n", err)
		os.Exit(1)
	}
}
