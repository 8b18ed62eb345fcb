package di

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cosmosdump/internal/dump"
	"cosmosdump/internal/dump/config"
	apperrors "cosmosdump/internal/shared/errors"
	"cosmosdump/internal/shared/logger"
)

// Container owns the components of one run and their shutdown order
type Container struct {
	mu sync.RWMutex
	// Module instances
	DumpModule *dump.DumpModule
	// Configuration
	Config *config.Config
	// Logger
	Logger logger.Logger
}

// NewContainer creates a container for a validated configuration
func NewContainer(cfg *config.Config, log logger.Logger) *Container {
	return &Container{
		Config: cfg,
		Logger: log,
	}
}

// InitializeDump connects the configured source and prepares the writer
func (c *Container) InitializeDump(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Config == nil {
		return apperrors.NewInternalError("configuration must be loaded before the dump module").WithComponent("di")
	}
	if c.Logger == nil {
		c.Logger = logger.NewLoggerWithConfig(c.Config.LogLevel, c.Config.LogFormat)
	}

	dumpModule, err := dump.NewDumpModule(ctx, c.Config, c.Logger)
	if err != nil {
		return err
	}

	c.DumpModule = dumpModule
	return nil
}

// GetDumpModule returns the dump module instance
func (c *Container) GetDumpModule() *dump.DumpModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.DumpModule
}

// Cleanup stops modules in reverse order of initialization
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.DumpModule != nil {
		if err := c.DumpModule.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop dump module: %w", err)
		}
		c.DumpModule = nil
	}
	return nil
}

// Close shuts the container down, bounded by a timeout so a stuck
// disconnect cannot hang the process
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		if c.Logger != nil {
			c.Logger.WithError(err).Warn("Cleanup errors occurred")
		}
		return err
	}
	return nil
}
