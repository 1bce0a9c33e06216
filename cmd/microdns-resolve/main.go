// microdns-resolve is a command-line driver for dns.Socket: it loads a
// resolver list (from flags or a config file), wires internal/transport and
// internal/security underneath the socket, and resolves one or more names.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/quartzstack/microdns/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		resolvers  []string
		hopLimit   int
		logLevel   string
		aaaa       bool
	)

	cmd := &cobra.Command{
		Use:   "microdns-resolve [names...]",
		Short: "Resolve DNS names using microdns's client socket",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.New()

			cfg, err := loadConfig(configPath, resolvers, hopLimit, logLevel)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			level, err := logrus.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("parsing log_level: %w", err)
			}
			log.SetLevel(level)

			return runResolve(cmd.OutOrStdout(), log, cfg, args, aaaa)
		},
	}

	flags := cmd.Flags()
	flags.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		// Accept "hoplimit" as an alias for "hop-limit" for users coming from
		// tools that don't hyphenate flag names.
		if name == "hoplimit" {
			name = "hop-limit"
		}
		return pflag.NormalizedName(name)
	})
	flags.StringVar(&configPath, "config", "", "path to a YAML config file (overrides --resolver/--hop-limit/--log-level when set)")
	flags.StringSliceVar(&resolvers, "resolver", nil, "resolver IP address (repeatable, up to 4)")
	flags.IntVar(&hopLimit, "hop-limit", config.DefaultHopLimit, "IP TTL/hop-limit applied to outgoing queries")
	flags.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "logrus log level (debug, info, warn, error)")
	flags.BoolVar(&aaaa, "aaaa", false, "resolve AAAA records instead of A records")

	return cmd
}

// loadConfig builds a config.Config either from a file at path, or from the
// given flag values when path is empty.
func loadConfig(path string, resolvers []string, hopLimit int, logLevel string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	return config.New(&config.Config{
		Resolvers: resolvers,
		HopLimit:  hopLimit,
		LogLevel:  logLevel,
	})
}
