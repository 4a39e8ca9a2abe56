package cmd

import (
	"fmt"
	"os"

	"github.com/encodeous/strand/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new [address]",
	Short: "Create a node configuration",
	Long: `Writes a node config for the given ILP address with a fresh routing secret.
With --parent, an account connecting to the parent node over tcp is added and used as the default route.
With --listen, a peer account accepting a tcp connection is added.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			_ = cmd.Usage()
			return
		}
		address := args[0]
		if err := state.AddressValidator(address); err != nil {
			fmt.Printf("Invalid address: %v\n", err)
			os.Exit(-1)
		}
		parent, _ := cmd.Flags().GetString("parent")
		listen, _ := cmd.Flags().GetString("listen")
		asset, _ := cmd.Flags().GetString("asset")

		cfg := sampleConfig(address, parent, listen, asset)
		if err := state.NodeConfigValidator(&cfg); err != nil {
			panic(err)
		}
		out, err := yaml.Marshal(&cfg)
		if err != nil {
			panic(err)
		}
		outPath := cmd.Flag("output").Value.String()
		err = os.WriteFile(outPath, out, 0600)
		if err != nil {
			panic(err)
		}
		fmt.Printf("Wrote %s\n", outPath)
	},
	GroupID: "init",
}

func sampleConfig(address, parent, listen, asset string) state.NodeCfg {
	cfg := state.NodeCfg{
		Address:       address,
		RoutingSecret: state.GenerateRoutingSecret(),
		Accounts:      make(map[state.AccountId]state.AccountCfg),
	}
	if parent != "" {
		cfg.Accounts["parent"] = state.AccountCfg{
			Relation:   state.RelationParent,
			AssetCode:  asset,
			AssetScale: 9,
			Plugin:     "tcp",
			Options:    map[string]any{"connect": parent},
		}
		cfg.DefaultRoute = state.DefaultRouteAuto
	}
	if listen != "" {
		cfg.Accounts["peer"] = state.AccountCfg{
			Relation:   state.RelationPeer,
			AssetCode:  asset,
			AssetScale: 9,
			Plugin:     "tcp",
			Options:    map[string]any{"listen": listen},
		}
	}
	return cfg
}

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Generates a new routing secret and writes it to stdout",
	Run: func(cmd *cobra.Command, args []string) {
		text, err := state.GenerateRoutingSecret().MarshalText()
		if err != nil {
			panic(err)
		}
		fmt.Println(string(text))
	},
	GroupID: "init",
}

func init() {
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(secretCmd)

	newCmd.Flags().StringP("output", "o", "node.yaml", "Path to write the config to")
	newCmd.Flags().String("parent", "", "Address of a parent node to connect to, e.g. 10.0.0.1:7768")
	newCmd.Flags().String("listen", "", "Accept a peer connection on this address, e.g. 0.0.0.0:7768")
	newCmd.Flags().String("asset", "USD", "Asset code of the created accounts")
}
