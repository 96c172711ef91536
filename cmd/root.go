package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"wsprobe/internal/banner"
	"wsprobe/internal/cli"
	"wsprobe/internal/dummy"
	"wsprobe/internal/probe"
	"wsprobe/internal/runner"
)

var (
	cfgFile string

	// CLI Flags
	mode          string
	message       string
	interval      time.Duration
	count         int
	concurrency   int
	headersJSON   string
	timeout       time.Duration
	skipTLSVerify bool
	debug         bool
	outPrefix     string
)

var rootCmd = &cobra.Command{
	Use:   "wsprobe URI",
	Short: "wsprobe - WebSocket connectivity probe and load tester",
	Long: `
wsprobe checks WebSocket endpoints: it connects, exchanges pings or
messages, measures round-trip latency and reports aggregate statistics.

Modes:
  basic        one probe attempt (default)
  continuous   probe on a fixed interval until interrupted
  stress       many attempts with bounded concurrency
  interactive  persistent connection driven from stdin`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(run(args[0]))
	},
}

func Execute() {
	// Custom Help with Banner
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(cli.ExitConfig)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(dummyCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wsprobe.yaml)")

	rootCmd.Flags().StringVarP(&mode, "mode", "m", "basic", "Probe mode: basic, continuous, stress or interactive")
	rootCmd.Flags().StringVar(&message, "message", "", "Payload sent each attempt (empty = ping/pong check only); supports {{uuid}}, {{seq}}, {{randomInt a b}}")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", 5*time.Second, "Delay between attempt starts (continuous mode)")
	rootCmd.Flags().IntVarP(&count, "count", "c", 10, "Total attempts (stress mode)")
	rootCmd.Flags().IntVarP(&concurrency, "concurrency", "C", 3, "Max in-flight attempts (stress mode)")
	rootCmd.Flags().StringVarP(&headersJSON, "headers", "H", "", `Handshake headers as a JSON object (e.g. '{"Authorization": "Bearer ..."}')`)
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 5*time.Second, "Connect and response timeout")
	rootCmd.Flags().BoolVar(&skipTLSVerify, "skip-ssl-verify", false, "Skip TLS certificate verification (testing only)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Verbose logging plus an HTTP fallback probe when the connect fails")
	rootCmd.Flags().StringVarP(&outPrefix, "out", "o", "", "Output filename prefix for report files")

	viper.BindPFlags(rootCmd.Flags())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".wsprobe")
		}
	}
	viper.SetEnvPrefix("WSPROBE")
	viper.AutomaticEnv()
	viper.ReadInConfig()
}

// run resolves flag/config/default precedence through viper, validates
// everything up front and dispatches to the right mode.
func run(uri string) int {
	logger := newLogger(viper.GetBool("debug"))
	defer logger.Sync()

	headers, err := probe.ParseHeaders(viper.GetString("headers"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitConfig
	}

	target := probe.Target{
		URI:           uri,
		Payload:       viper.GetString("message"),
		Headers:       headers,
		Timeout:       viper.GetDuration("timeout"),
		SkipTLSVerify: viper.GetBool("skip-ssl-verify"),
		Debug:         viper.GetBool("debug"),
	}
	if err := target.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitConfig
	}

	modeName := viper.GetString("mode")
	if modeName == "interactive" {
		return cli.RunInteractive(target, logger)
	}

	m, err := runner.ParseMode(modeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitConfig
	}

	cfg := runner.Config{
		Target:      target,
		Mode:        m,
		Interval:    viper.GetDuration("interval"),
		Count:       viper.GetInt("count"),
		Concurrency: viper.GetInt("concurrency"),
	}

	return cli.Start(cfg, viper.GetString("out"), logger)
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// --- Dummy Subcommand ---
var dummyCmd = &cobra.Command{
	Use:   "dummy",
	Short: "Run a local WebSocket test server",
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		dummy.Start(dummy.ServerConfig{Port: port})
		select {}
	},
}

func init() {
	dummyCmd.Flags().IntP("port", "p", 8080, "Port to run the dummy server on")
}
