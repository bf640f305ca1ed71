package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/tStore/cmd/util"
	"github.com/ValentinKolb/tStore/lib/store"
	tbl "github.com/ValentinKolb/tStore/lib/table"
	"github.com/ValentinKolb/tStore/rpc/common"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Performance testing tool for tStore servers",
		Long: `Performance testing tool for tStore servers.
All benchmarks work on temporary tables named __bench-<id>-<test> that are deleted afterwards.
Note that every mutating request writes a snapshot on a persistent server.`,
		Args:    cobra.NoArgs,
		RunE:    runBench,
		PreRunE: processBenchConfig,
	}
	benchTablePrefix     = "__bench"
	benchLargeValueSizeK = 100
	benchNumThreads      = 10
	benchRowCount        = 100
	benchSkip            = make([]string, 0)

	benchColumns = []tbl.Column{
		{Name: "id", Kind: tbl.ColumnKindInteger},
		{Name: "name", Kind: tbl.ColumnKindString},
		{Name: "score", Kind: tbl.ColumnKindFloat},
		{Name: "active", Kind: tbl.ColumnKindBoolean},
	}
)

// benchmark is a single named benchmark. setup runs before the timer starts,
// the returned op is executed in parallel with an increasing counter.
type benchmark struct {
	name  string
	setup func(b *testing.B, table string) (op func(i int) error)
}

func init() {
	key := "skip"
	benchCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. create,insert)"))
	key = "threads"
	benchCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	benchCmd.Flags().Int(key, 100, util.WrapString("How large the payload for the insert-large test should be (in KB)"))
	key = "rows"
	benchCmd.Flags().Int(key, 100, util.WrapString("How many rows the table of the rows test holds"))
	key = "csv"
	benchCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processBenchConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	benchLargeValueSizeK = viper.GetInt("large-value-size")
	benchRowCount = viper.GetInt("rows")
	benchNumThreads = viper.GetInt("threads")
	benchSkip = strings.Split(viper.GetString("skip"), ",")

	if benchNumThreads < 1 {
		return fmt.Errorf("threads must be at least 1")
	}
	if benchRowCount < 0 || benchLargeValueSizeK < 0 {
		return fmt.Errorf("rows and large-value-size must not be negative")
	}
	return nil
}

func runBench(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for tStore servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", benchNumThreads)
	fmt.Println()

	fmt.Println("staring tests...")

	runID := uuid.NewString()[:8]
	results := make(map[string]testing.BenchmarkResult)
	order := make([]string, 0)

	for _, bm := range benchmarks() {
		order = append(order, bm.name)
		if shouldSkip(bm.name) {
			results[bm.name] = testing.BenchmarkResult{}
			printResult(bm.name, results[bm.name])
			continue
		}

		var run atomic.Int64
		result := testing.Benchmark(func(b *testing.B) {
			// testing.Benchmark calls this function several times, every run gets its own table
			table := fmt.Sprintf("%s-%s-%s-%d", benchTablePrefix, runID, bm.name, run.Add(1))
			op := bm.setup(b, table)

			b.SetParallelism(benchNumThreads)
			b.ResetTimer()

			var counter atomic.Int64
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					if err := op(int(counter.Add(1))); err != nil {
						log.Printf("(%s) - error: %v\n", bm.name, err)
					}
				}
			})
		})

		results[bm.name] = result
		printResult(bm.name, result)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, order, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Benchmarks
// --------------------------------------------------------------------------

func benchmarks() []benchmark {
	return []benchmark{
		{
			name: "create",
			setup: func(b *testing.B, table string) func(int) error {
				b.Cleanup(func() {
					names, err := rpcStore.ListTables()
					if err != nil {
						log.Printf("(create) - error listing tables: %v\n", err)
						return
					}
					for _, name := range names {
						if strings.HasPrefix(name, table+"-c") {
							dropTable(name)
						}
					}
				})
				return func(i int) error {
					_, err := rpcStore.CreateTable(fmt.Sprintf("%s-c%d", table, i), benchColumns)
					return err
				}
			},
		},
		{
			name: "insert",
			setup: func(b *testing.B, table string) func(int) error {
				prepareTable(b, table, benchColumns, 0)
				return func(i int) error {
					_, err := rpcStore.InsertRow(table, benchRow(i))
					return err
				}
			},
		},
		{
			name: "insert-large",
			setup: func(b *testing.B, table string) func(int) error {
				columns := []tbl.Column{{Name: "id", Kind: tbl.ColumnKindInteger}, {Name: "payload", Kind: tbl.ColumnKindString}}
				prepareTable(b, table, columns, 0)
				payload := tbl.StringValue(strings.Repeat("x", benchLargeValueSizeK*1024))
				return func(i int) error {
					_, err := rpcStore.InsertRow(table, tbl.Row{"id": tbl.IntValue(int64(i)), "payload": payload})
					return err
				}
			},
		},
		{
			name: "get",
			setup: func(b *testing.B, table string) func(int) error {
				prepareTable(b, table, benchColumns, 0)
				return func(int) error {
					_, err := rpcStore.GetTable(table)
					return err
				}
			},
		},
		{
			name: "get-missing",
			setup: func(b *testing.B, table string) func(int) error {
				return func(int) error {
					if _, err := rpcStore.GetTable(table); !errors.Is(err, store.ErrTableNotFound) {
						return fmt.Errorf("expected table not found, got %v", err)
					}
					return nil
				}
			},
		},
		{
			name: "rows",
			setup: func(b *testing.B, table string) func(int) error {
				prepareTable(b, table, benchColumns, benchRowCount)
				return func(int) error {
					_, err := rpcStore.ListRows(table)
					return err
				}
			},
		},
		{
			name: "list",
			setup: func(b *testing.B, table string) func(int) error {
				prepareTable(b, table, benchColumns, 0)
				return func(int) error {
					_, err := rpcStore.ListTables()
					return err
				}
			},
		},
		{
			name: "mixed",
			setup: func(b *testing.B, table string) func(int) error {
				prepareTable(b, table, benchColumns, benchRowCount)
				return func(i int) error {
					var err error
					switch i % 4 {
					case 0: // insert
						_, err = rpcStore.InsertRow(table, benchRow(i))
					case 1: // get
						_, err = rpcStore.GetTable(table)
					case 2: // rows
						_, err = rpcStore.ListRows(table)
					case 3: // stats
						_, err = rpcStore.Stats()
					}
					return err
				}
			},
		},
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	return slices.Contains(benchSkip, test)
}

func benchRow(i int) tbl.Row {
	return tbl.Row{
		"id":     tbl.IntValue(int64(i)),
		"name":   tbl.StringValue(fmt.Sprintf("row-%d", i)),
		"score":  tbl.FloatValue(float64(i) / 3),
		"active": tbl.BoolValue(i%2 == 0),
	}
}

// prepareTable creates a table with n rows and deletes it when the benchmark is done
func prepareTable(b *testing.B, table string, columns []tbl.Column, n int) {
	if _, err := rpcStore.CreateTable(table, columns); err != nil {
		log.Printf("(%s) - error creating table: %v\n", table, err)
	}
	for i := 0; i < n; i++ {
		if _, err := rpcStore.InsertRow(table, benchRow(i)); err != nil {
			log.Printf("(%s) - error inserting row: %v\n", table, err)
			break
		}
	}
	b.Cleanup(func() { dropTable(table) })
}

func dropTable(table string) {
	if _, err := rpcStore.DeleteTable(table); err != nil && !errors.Is(err, store.ErrTableNotFound) {
		log.Printf("(%s) - error deleting table: %v\n", table, err)
	}
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, order []string, results map[string]testing.BenchmarkResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"Serializer", "Transport",
		"Threads", "LargeValueSizeKB", "RowCount",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for _, test := range order {
		result := results[test]
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			strconv.Itoa(config.ConnectionsPerEndpoint),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(benchNumThreads),
			strconv.Itoa(benchLargeValueSizeK),
			strconv.Itoa(benchRowCount),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return writer.Error()
}
