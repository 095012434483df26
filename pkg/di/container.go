// Package di provides dependency injection container
package di

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/haxelion/fbx3d/pkg/api"     //nolint:depguard
	"github.com/haxelion/fbx3d/pkg/catalog" //nolint:depguard
	"github.com/haxelion/fbx3d/pkg/config"
	"github.com/haxelion/fbx3d/pkg/fbx"
)

// Container holds all the dependencies for the application
type Container struct {
	config        *config.Config
	logger        *zap.Logger
	registry      prometheus.Registerer
	catalog       *catalog.Catalog
	metrics       *api.Metrics
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container with the default
// configuration and a no-op logger
func NewContainer() *Container {
	return &Container{
		config:        config.DefaultConfig(),
		logger:        zap.NewNop(),
		registry:      prometheus.DefaultRegisterer,
		serverFactory: api.NewServerFactory(),
	}
}

// Configure replaces the configuration and logger. Nil arguments leave the current
// value in place.
func (c *Container) Configure(cfg *config.Config, logger *zap.Logger) {
	if cfg != nil {
		c.config = cfg
	}
	if logger != nil {
		c.logger = logger
	}
}

// Config returns the active configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the application logger
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Decoder returns a decoder configured from the decoder section
func (c *Container) Decoder() *fbx.Decoder {
	return fbx.NewDecoder(c.config.Decoder.Options()...)
}

// Catalog opens the report catalog on first use
func (c *Container) Catalog() (*catalog.Catalog, error) {
	if c.catalog != nil {
		return c.catalog, nil
	}
	cat, err := catalog.Open(c.config.Catalog.Dir, catalog.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}
	c.catalog = cat
	return cat, nil
}

// Metrics creates the API metrics on first use
func (c *Container) Metrics() *api.Metrics {
	if c.metrics == nil {
		c.metrics = api.NewMetrics(c.registry)
	}
	return c.metrics
}

// SetRegistry sets where metrics are registered (for testing). It must be called
// before Metrics.
func (c *Container) SetRegistry(reg prometheus.Registerer) {
	c.registry = reg
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// Close releases resources opened by the container
func (c *Container) Close() error {
	_ = c.logger.Sync()
	if c.catalog == nil {
		return nil
	}
	err := c.catalog.Close()
	c.catalog = nil
	if err != nil {
		return fmt.Errorf("failed to close catalog: %w", err)
	}
	return nil
}
