package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	redisCache "github.com/cimnine/dhcp4c/cache/redis"
	"github.com/cimnine/dhcp4c/configuration"
	"github.com/cimnine/dhcp4c/dhcp"
	"github.com/cimnine/dhcp4c/dhcp/config"
	v4 "github.com/cimnine/dhcp4c/dhcp/v4"
	"github.com/cimnine/dhcp4c/netbox"
	"github.com/cimnine/dhcp4c/reporter"
)

const version = "v0.1.0"

func main() {
	rootCmd := cobra.Command{
		Use:          "dhcp4c",
		Short:        "Non-blocking DHCPv4 client " + version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("log-level", "",
		"Log level [debug,info,warn,error], overrides the config file")

	runCmd := &cobra.Command{
		Use:   "run [flags]",
		Short: "Acquire a lease and keep it current",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
	runCmd.Flags().String("config", "/etc/dhcp4c.conf.yaml", "where to load the config from")
	rootCmd.AddCommand(runCmd)

	probeCmd := &cobra.Command{
		Use:   "probe [flags]",
		Short: "Acquire a single lease and print it",
		Args:  cobra.NoArgs,
		RunE:  probe,
	}
	probeCmd.Flags().String("iface", "eth0", "The interface to use.")
	probeCmd.Flags().String("hwaddr", "", "Hardware address to use instead of the interface's.")
	probeCmd.Flags().String("host-name", dhcp.DefaultHostName, "Prefix of the announced host name.")
	probeCmd.Flags().Duration("timeout", 10*time.Second, "How long to wait for each reply.")
	probeCmd.Flags().Bool("raw", false, "Send and receive on the link layer.")
	rootCmd.AddCommand(probeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	configFileName, _ := cmd.Flags().GetString("config")

	conf, err := configuration.ReadConfig(configFileName)
	if err != nil {
		return err
	}

	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = conf.Daemon.Log.Level
	}
	slog, err := newLogger(level)
	if err != nil {
		return err
	}
	defer slog.Sync()

	slog.Infof("Config loaded successfully from '%s'.", configFileName)

	hw, err := conf.Client.HardwareAddr()
	if err != nil {
		return err
	}

	transport, err := newTransport(&conf.Client, slog)
	if err != nil {
		return err
	}

	client := dhcp.NewClient(transport,
		dhcp.WithLogger(slog),
		dhcp.WithHostName(conf.Client.HostNamePrefix()))

	d := dhcp.NewDaemon(client, hw, conf.Client.Timeout(), &conf.Daemon, newReporters(&conf, slog))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	if addr := conf.Daemon.MetricsAddress; addr != "" {
		serveMetrics(ctx, addr, errCh, slog)
	}

	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	slog.Info("Quit with CTRL+C.")

	select {
	case err = <-errCh:
		stop()
		<-done
	case err = <-done:
	}

	slog.Info("Bye 👋")
	return err
}

func newTransport(c *config.ClientConfig, slog *zap.SugaredLogger) (dhcp.Transport, error) {
	if c.TransportKind() == config.TransportRaw {
		iface, err := c.NetInterface()
		if err != nil {
			return nil, err
		}
		return v4.NewRawTransport(*iface, slog), nil
	}
	return v4.NewUDPTransport(c.Interface, slog), nil
}

func newReporters(conf *configuration.Configuration, slog *zap.SugaredLogger) *reporter.Fanout {
	fanout := reporter.NewFanout(slog)

	if conf.Cache.Redis.Enabled {
		redisClient := redisCache.NewClient(&conf.Cache.Redis)
		if err := redisClient.Ping().Err(); err != nil {
			slog.Warnf("Redis at '%s' is not reachable yet: %s", conf.Cache.Redis.Addr(), err)
		}
		fanout.Reporters = append(fanout.Reporters, reporter.Redis{
			Client: redisClient,
			Prefix: conf.Cache.Redis.KeyPrefix,
			Log:    slog,
		})
	}

	if conf.Netbox.Enabled {
		fanout.Reporters = append(fanout.Reporters, reporter.Netbox{
			Client: netbox.NewClient(&conf.Netbox),
			Log:    slog,
		})
	}

	return fanout
}

func serveMetrics(ctx context.Context, addr string, errCh chan<- error, slog *zap.SugaredLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warnf("Metrics shutdown error: %s", err)
		}
	}()

	slog.Infof("Serving metrics on '%s'.", addr)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics: %w", err)
		}
	}()
}
