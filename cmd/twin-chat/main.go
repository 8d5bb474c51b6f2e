package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Sternrassler/twin-client/pkg/cache"
	"github.com/Sternrassler/twin-client/pkg/client"
	"github.com/Sternrassler/twin-client/pkg/config"
	"github.com/Sternrassler/twin-client/pkg/logging"
	"github.com/Sternrassler/twin-client/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath  string
	baseURL     string
	logLevel    string
	pretty      bool
	metricsAddr string

	cfg    *config.Config
	logger zerolog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "twin-chat",
		Short:         "Talk to a digital twin backend from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&opts.baseURL, "base-url", "", "API base URL including the version prefix")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.pretty, "pretty", false, "human readable log output")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	root.AddCommand(
		newChatCmd(opts),
		newHealthCmd(opts),
		newMemoriesCmd(opts),
	)

	return root
}

// load resolves the configuration: defaults, then the config file, then flags.
func (o *options) load(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = o.baseURL
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("pretty") {
		cfg.Log.Pretty = o.pretty
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logging.Setup(logging.Config{
		Level:  level,
		Pretty: cfg.Log.Pretty,
		Output: cmd.ErrOrStderr(),
	})
	o.logger = logging.NewLogger(logging.ComponentCLI)
	o.cfg = cfg

	if o.metricsAddr != "" {
		go func() {
			if err := metrics.Serve(context.Background(), o.metricsAddr); err != nil {
				o.logger.Error().Err(err).Str("addr", o.metricsAddr).Msg("Metrics server failed")
			}
		}()
	}

	o.logger.Debug().
		Str("base_url", cfg.BaseURL).
		Str("cache_backend", cfg.Cache.Backend).
		Msg("Configuration loaded")
	return nil
}

// newClient builds the API client and its response cache. The returned
// release func closes both and must be called when the command is done.
func (o *options) newClient(ctx context.Context) (*client.Client, func(), error) {
	respCache, closeCache, err := o.newCache(ctx)
	if err != nil {
		return nil, nil, err
	}

	cfg := client.DefaultConfig(o.cfg.BaseURL)
	cfg.Timeout = o.cfg.Timeout
	cfg.UserAgent = o.cfg.UserAgent
	cfg.Cache = respCache

	c, err := client.New(cfg)
	if err != nil {
		closeCache()
		return nil, nil, err
	}

	release := func() {
		c.Close()
		closeCache()
	}
	return c, release, nil
}

func (o *options) newCache(ctx context.Context) (cache.Cache, func(), error) {
	ttl := cache.WithTTL(o.cfg.Cache.TTL)

	if o.cfg.Cache.Backend != config.CacheRedis {
		return cache.NewMemory(ttl), func() {}, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: o.cfg.Cache.RedisAddr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", o.cfg.Cache.RedisAddr, err)
	}
	o.logger.Debug().Str("addr", o.cfg.Cache.RedisAddr).Msg("Connected to Redis")

	closeRedis := func() {
		if err := redisClient.Close(); err != nil {
			o.logger.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	return cache.NewRedis(redisClient, ttl), closeRedis, nil
}
