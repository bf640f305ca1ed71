package table

import (
	"github.com/ValentinKolb/tStore/cmd/util"
	"github.com/ValentinKolb/tStore/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcStore *client.RPCStore

	// TableCommands represents the table command group
	TableCommands = &cobra.Command{
		Use:                "table",
		Short:              "Perform table store operations",
		PersistentPreRunE:  setupTableClient,
		PersistentPostRunE: closeTableClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common RPC flags to the table command
	util.SetupRPCClientFlags(TableCommands)

	key := "output"
	TableCommands.PersistentFlags().StringP(key, "o", "json", util.WrapString("Output format of the results (json, yaml)"))

	// Add subcommands
	TableCommands.AddCommand(createCmd)
	TableCommands.AddCommand(listCmd)
	TableCommands.AddCommand(getCmd)
	TableCommands.AddCommand(insertCmd)
	TableCommands.AddCommand(rowsCmd)
	TableCommands.AddCommand(deleteCmd)
	TableCommands.AddCommand(statsCmd)
	TableCommands.AddCommand(benchCmd)
}

// setupTableClient initializes the RPC store client
func setupTableClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the table store client
	rpcStore, err = client.NewRPCStore(
		*config,
		t,
		s,
	)

	return err
}

func closeTableClient(_ *cobra.Command, _ []string) error {
	if rpcStore == nil {
		return nil
	}
	return rpcStore.Close()
}
