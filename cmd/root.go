package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/tStore/cmd/serve"
	"github.com/ValentinKolb/tStore/cmd/table"
	"github.com/ValentinKolb/tStore/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "tstore",
		Short: "schema validated table store",
		Long: fmt.Sprintf(`tStore (v%s)

A small table store written in Go. Tables have a fixed set of typed columns,
rows are validated on insert and every change is persisted to a snapshot file
before it is acknowledged.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tStore",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tStore v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(table.TableCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
