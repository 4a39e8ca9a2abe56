package cmd

import (
	"fmt"
	"os"

	"github.com/encodeous/strand/core"
	"github.com/encodeous/strand/plugin"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Checks that the node config is valid",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := core.ReadConfig(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Config is invalid:", err)
			os.Exit(1)
		}
		// plugin options are only decoded when the account is created
		for _, id := range cfg.SortedAccounts() {
			acct := cfg.Accounts[id]
			if _, err := plugin.New(acct.Plugin, plugin.Options{AccountId: id, Config: acct.Options}); err != nil {
				fmt.Fprintf(os.Stderr, "Config is invalid: account %s: %v\n", id, err)
				os.Exit(1)
			}
		}

		cfgYaml, err := yaml.Marshal(cfg)
		if err != nil {
			panic(err)
		}
		fmt.Println("Config is valid")
		fmt.Println(string(cfgYaml))
	},
	GroupID: "strand",
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
