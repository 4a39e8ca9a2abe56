package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath = "node.yaml"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "strand",
	Short: "Strand payment routing node",
	Long: `Strand connects ledgers through accounts and forwards payment packets between them.
Routes are exchanged with neighbouring nodes so that every packet is sent towards its destination over the best known path.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "init",
		Title: "Initialize Strand",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "strand",
		Title: "Strand Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", configPath, "node config")
}
