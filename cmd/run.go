package cmd

import (
	"github.com/encodeous/strand/core"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run strand",
	Long:  `This will run the node described by the config until it receives SIGINT or SIGTERM.`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logPath, _ := cmd.Flags().GetString("log")
		debugAddr, _ := cmd.Flags().GetString("debug-addr")

		err := core.Bootstrap(configPath, logPath, debugAddr, verbose)
		if err != nil {
			panic(err)
		}
	},
	GroupID: "strand",
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().String("log", "", "Also write logs to this file")
	runCmd.Flags().String("debug-addr", "", "Serve pprof, metrics and inspect on this address, e.g. 127.0.0.1:6060")
}
