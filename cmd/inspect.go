package cmd

import (
	"fmt"

	"github.com/encodeous/strand/core"
	"github.com/encodeous/strand/plugin"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect [debug-addr]",
	Aliases: []string{"i"},
	Short:   "Inspects the current state of a running node",
	Long:    `Reads accounts, peers, hold-downs and routes from the debug server of a node started with --debug-addr.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println("Usage: strand inspect <debug-addr>")
			return
		}
		result, err := core.InspectRemote(args[0])
		if err != nil {
			fmt.Println("Error:", err.Error())
			return
		}
		fmt.Print(result)
	},
	GroupID: "strand",
}

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Lists the available plugin types",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range plugin.Names() {
			fmt.Println(name)
		}
	},
	GroupID: "strand",
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(pluginsCmd)
}
