package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmosdump/internal/di"
	"cosmosdump/internal/dump/config"
	apperrors "cosmosdump/internal/shared/errors"
	"cosmosdump/internal/shared/logger"
	"cosmosdump/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// rootFlags mirrors the environment configuration. Only flags the user set
// explicitly override the environment.
type rootFlags struct {
	connectionString string
	account          string
	key              string
	source           string
	mongoDBURI       string
	region           string
	format           string
	pageSize         int
	timeout          time.Duration
	logLevel         string
	logFormat        string
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "cosmosdump [flags] <out>",
		Short: "Export every database, collection and document of an account to one file",
		Long: "cosmosdump walks a Cosmos DB account (or a MongoDB deployment or DynamoDB region) " +
			"and writes all of its databases, collections and documents to a single JSON or YAML file. " +
			"<out> may be a local path or an s3://bucket/key URL.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags, args)
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), cfg, stderr)
		},
	}

	bindFlags(cmd, flags)
	return cmd
}

func bindFlags(cmd *cobra.Command, flags *rootFlags) {
	f := cmd.Flags()
	f.StringVarP(&flags.connectionString, "connection-string", "c", "", "account connection string (AccountEndpoint=...;AccountKey=...)")
	f.StringVarP(&flags.account, "account", "a", "", "account name or endpoint")
	f.StringVarP(&flags.key, "key", "k", "", "account master key")
	f.StringVar(&flags.source, "source", config.SourceCosmos, "account type: cosmos, mongodb or dynamodb")
	f.StringVar(&flags.mongoDBURI, "mongodb-uri", "", "MongoDB connection URI for --source mongodb")
	f.StringVar(&flags.region, "region", "", "AWS region for --source dynamodb and s3:// outputs")
	f.StringVar(&flags.format, "format", config.FormatJSON, "output format: json or yaml")
	f.IntVar(&flags.pageSize, "page-size", 100, "documents requested per page")
	f.DurationVar(&flags.timeout, "timeout", 0, "abort the export after this long (0 disables)")
	f.StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	f.StringVar(&flags.logFormat, "log-format", "text", "log format: text or json")
}

// loadConfig reads .env and the environment, then applies flags and the
// positional output argument
func loadConfig(cmd *cobra.Command, flags *rootFlags, args []string) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, apperrors.NewConfigurationError("failed to load .env").WithCause(err).WithComponent("config")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	applyFlags(cmd, flags, cfg)
	if len(args) == 1 {
		cfg.Output = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, flags *rootFlags, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("connection-string") {
		cfg.ConnectionString = flags.connectionString
	}
	if set("account") {
		cfg.Account = flags.account
	}
	if set("key") {
		cfg.Key = flags.key
	}
	if set("source") {
		cfg.Source = flags.source
	}
	if set("mongodb-uri") {
		cfg.MongoDBURI = flags.mongoDBURI
	}
	if set("region") {
		cfg.Region = flags.region
	}
	if set("format") {
		cfg.Format = flags.format
	}
	if set("page-size") {
		cfg.PageSize = flags.pageSize
	}
	if set("timeout") {
		cfg.Timeout = flags.timeout
	}
	if set("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if set("log-format") {
		cfg.LogFormat = flags.logFormat
	}
}

// runExport performs one export. Logs go to stderr so stdout stays clean.
func runExport(parent context.Context, cfg *config.Config, stderr io.Writer) error {
	log := logger.NewLoggerWithWriter(cfg.LogLevel, cfg.LogFormat, stderr)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	exportID := uuid.NewString()
	ctx = utils.WithExportID(ctx, exportID)
	ctx = utils.WithOperation(ctx, "export")

	container := di.NewContainer(cfg, log)
	defer func() {
		if err := container.Close(); err != nil {
			log.WithError(err).Warn("Failed to close container")
		}
	}()

	if err := container.InitializeDump(ctx); err != nil {
		log.WithContext(ctx).WithError(err).Error("Failed to initialize export")
		return err
	}

	_, err := container.GetDumpModule().Run(ctx)
	return err
}
