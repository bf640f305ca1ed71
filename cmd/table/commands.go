package table

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tbl "github.com/ValentinKolb/tStore/lib/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	createCmd = &cobra.Command{
		Use:   "create [name] [column:kind]...",
		Short: "Creates a table with the given columns",
		Long: `Creates a table with the given columns.
Each column is given as name:kind, kind is one of String, Integer, Float, Boolean or Object.

Example:
  tstore table create users name:String age:Integer active:Boolean`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			columns, err := parseColumns(args[1:])
			if err != nil {
				return err
			}
			info, err := rpcStore.CreateTable(args[0], columns)
			if err != nil {
				return err
			}
			return printOutput(info)
		},
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists the names of all tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := rpcStore.ListTables()
			if err != nil {
				return err
			}
			return printOutput(names)
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [name]",
		Short: "Shows the descriptor of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := rpcStore.GetTable(args[0])
			if err != nil {
				return err
			}
			return printOutput(info)
		},
	}
	insertCmd = &cobra.Command{
		Use:   "insert [name] [row]",
		Short: "Inserts a row given as JSON object",
		Long: `Inserts a row given as JSON object. Use - to read the row from stdin.

Example:
  tstore table insert users '{"name": "alice", "age": 30, "active": true}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := args[1]
			if raw == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				raw = string(b)
			}
			row, err := parseRow(raw)
			if err != nil {
				return err
			}
			count, err := rpcStore.InsertRow(args[0], row)
			if err != nil {
				return err
			}
			fmt.Printf("inserted successfully (%d rows)\n", count)
			return nil
		},
	}
	rowsCmd = &cobra.Command{
		Use:   "rows [name]",
		Short: "Lists all rows of a table in insertion order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := rpcStore.ListRows(args[0])
			if err != nil {
				return err
			}
			return printOutput(rows)
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete [name]",
		Short: "Deletes a table with all its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := rpcStore.DeleteTable(args[0]); err != nil {
				return err
			}
			fmt.Println("deleted successfully")
			return nil
		},
	}
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Shows statistics of the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := rpcStore.Stats()
			if err != nil {
				return err
			}
			return printOutput(stats)
		},
	}
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseColumns parses column specs of the form name:kind
func parseColumns(specs []string) ([]tbl.Column, error) {
	columns := make([]tbl.Column, 0, len(specs))
	for _, spec := range specs {
		name, kind, ok := strings.Cut(spec, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid column %q, expected name:kind", spec)
		}
		k, err := tbl.ParseColumnKind(kind)
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", name, err)
		}
		columns = append(columns, tbl.Column{Name: strings.TrimSpace(name), Kind: k})
	}
	return columns, nil
}

// parseRow parses a JSON object into a row
func parseRow(raw string) (tbl.Row, error) {
	var row tbl.Row
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return nil, fmt.Errorf("row must be a JSON object: %w", err)
	}
	if row == nil {
		return nil, errors.New("row must be a JSON object")
	}
	return row, nil
}

// printOutput writes v to stdout in the format selected by --output
func printOutput(v any) error {
	switch format := viper.GetString("output"); format {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "json", "":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("invalid output format %s", format)
	}
}
