package serve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	cmdUtil "github.com/ValentinKolb/tStore/cmd/util"
	"github.com/ValentinKolb/tStore/lib/snapshot"
	"github.com/ValentinKolb/tStore/lib/store"
	"github.com/ValentinKolb/tStore/rpc/common"
	"github.com/ValentinKolb/tStore/rpc/rest"
	"github.com/ValentinKolb/tStore/rpc/serializer"
	"github.com/ValentinKolb/tStore/rpc/server"
	"github.com/ValentinKolb/tStore/rpc/transport"
	"github.com/ValentinKolb/tStore/rpc/transport/http"
	"github.com/ValentinKolb/tStore/rpc/transport/tcp"
	"github.com/ValentinKolb/tStore/rpc/transport/unix"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// shutdownTimeout bounds the time running requests get to finish after a signal
const shutdownTimeout = 10 * time.Second

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the tStore server",
		Long:    `Start the tStore server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is TSTORE_<flag> (e.g. TSTORE_SNAPSHOT_PATH=/var/lib/tstore.db.json)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "snapshot-path"
	ServeCmd.PersistentFlags().String(key, "tstore.db.json", cmdUtil.WrapString("File the tables are persisted to after every change. The file is loaded on startup"))

	key = "snapshot-format"
	ServeCmd.PersistentFlags().String(key, "json", cmdUtil.WrapString(fmt.Sprintf("Format of the snapshot file (%s)", strings.Join(snapshot.Formats, ", "))))

	key = "strict-load"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("Refuse to start if the snapshot file exists but cannot be read. Otherwise the file is moved aside and the server starts empty"))

	key = "in-memory"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("Keep all tables in memory only, no snapshot is read or written"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds for writing a response"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/tstore.sock, ...)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.Transport = viper.GetString("transport")
	serveCmdConfig.Serializer = viper.GetString("serializer")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.SnapshotPath = viper.GetString("snapshot-path")
	serveCmdConfig.SnapshotFormat = strings.ToLower(viper.GetString("snapshot-format"))
	serveCmdConfig.StrictLoad = viper.GetBool("strict-load")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	if viper.GetBool("in-memory") {
		serveCmdConfig.SnapshotPath = ""
	}

	if _, err := common.ParseLogLevel(serveCmdConfig.LogLevel); err != nil {
		return err
	}
	if serveCmdConfig.Persistent() {
		if _, err := snapshot.NewCodec(serveCmdConfig.SnapshotFormat); err != nil {
			return err
		}
	}

	return nil
}

// run starts the tStore server and blocks until it receives SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {
	if err := common.InitLoggers(serveCmdConfig.LogLevel); err != nil {
		return err
	}

	// parse the serializer
	s, err := serializer.New(serveCmdConfig.Serializer)
	if err != nil {
		return err
	}

	// open the store before the transport, the REST api needs it
	tableStore, err := server.OpenStore(*serveCmdConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := tableStore.Close(); err != nil {
			server.Logger.Errorf("failed to close store: %v", err)
		}
	}()

	t, err := newServerTransport(serveCmdConfig.Transport, tableStore)
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(*serveCmdConfig, t, s, tableStore)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- serv.Serve() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		server.Logger.Infof("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := serv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errCh
}

// newServerTransport creates the transport named in the config.
// The http transport also serves the REST api and the metrics endpoint.
func newServerTransport(name string, tableStore store.ITableStore) (transport.IRPCServerTransport, error) {
	switch name {
	case "http":
		return http.NewHttpServerTransport(rest.NewHandler(tableStore).Register), nil
	case "tcp":
		return tcp.NewTCPDefaultServerTransport(), nil
	case "unix":
		return unix.NewUnixDefaultServerTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", name)
	}
}
