// Command dashboard serves the studio dashboard: sign-in, the role-guarded
// pages and the small JSON API behind them.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/upb/studio-dashboard/app"
	"github.com/upb/studio-dashboard/config"
	"github.com/upb/studio-dashboard/routes"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// options are the command line overrides applied on top of the environment
type options struct {
	envFiles   []string
	addr       string
	accessFile string
	enforce    bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (*pflag.FlagSet, *options, error) {
	opts := &options{}
	flagSet := pflag.NewFlagSet("dashboard", pflag.ContinueOnError)
	flagSet.StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")
	flagSet.StringVar(&opts.addr, "addr", "", "listen address, overrides SERVER_HOST and PORT")
	flagSet.StringVar(&opts.accessFile, "access-file", "", "YAML file overriding route allow-lists, overrides ACCESS_POLICY_FILE")
	flagSet.BoolVar(&opts.enforce, "enforce-auth", false, "redirect unauthenticated requests at the edge, overrides EDGE_ENFORCE_AUTH")

	if err := flagSet.Parse(args); err != nil {
		return nil, nil, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return flagSet, opts, nil
}

// apply copies the flags that were set explicitly onto cfg
func (o *options) apply(flagSet *pflag.FlagSet, cfg *config.Config) {
	if o.accessFile != "" {
		cfg.Access.PolicyFile = o.accessFile
	}
	if flagSet.Changed("enforce-auth") {
		cfg.Edge.EnforceAuth = o.enforce
	}
}

func (o *options) listenAddr(cfg *config.Config) string {
	if o.addr != "" {
		return o.addr
	}
	return cfg.Server.Address()
}

func run(args []string) error {
	flagSet, opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New(ctx, opts.envFiles...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts.apply(flagSet, cfg)

	logger, err := initLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", zap.Error(err))
		return err
	}

	srv := &http.Server{
		Addr:         opts.listenAddr(cfg),
		Handler:      routes.SetupRoutes(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     zap.NewStdLog(logger),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.Environment),
			zap.Bool("edge_enforce_auth", cfg.Edge.EnforceAuth))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			_ = deps.Close(context.Background())
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	return deps.Close(shutdownCtx)
}

// initLogger builds the process logger. format is "json" (default) or "console".
func initLogger(level, format string) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var zcfg zap.Config
	switch strings.ToLower(format) {
	case "console":
		zcfg = zap.NewDevelopmentConfig()
	case "", "json":
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "timestamp"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	return zcfg.Build()
}
