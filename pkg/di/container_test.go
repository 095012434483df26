package di

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haxelion/fbx3d/pkg/api"
	"github.com/haxelion/fbx3d/pkg/config"
)

func TestNewContainer_Defaults(t *testing.T) {
	c := NewContainer()

	assert.Equal(t, config.DefaultConfig(), c.Config())
	assert.NotNil(t, c.Logger())
	assert.NotNil(t, c.Decoder())
	assert.IsType(t, &api.DefaultServerFactory{}, c.GetServerFactory())
}

func TestContainer_Configure(t *testing.T) {
	c := NewContainer()
	cfg := config.DefaultConfig()
	cfg.Server.Port = 9999
	logger := zap.NewExample()

	c.Configure(cfg, logger)
	assert.Same(t, cfg, c.Config())
	assert.Same(t, logger, c.Logger())

	c.Configure(nil, nil)
	assert.Same(t, cfg, c.Config())
	assert.Same(t, logger, c.Logger())
}

func TestContainer_Catalog(t *testing.T) {
	c := NewContainer()
	cfg := config.DefaultConfig()
	cfg.Catalog.Dir = filepath.Join(t.TempDir(), "catalog")
	c.Configure(cfg, nil)

	first, err := c.Catalog()
	require.NoError(t, err)
	second, err := c.Catalog()
	require.NoError(t, err)
	assert.Same(t, first, second)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	reopened, err := c.Catalog()
	require.NoError(t, err)
	assert.NotSame(t, first, reopened)
	require.NoError(t, c.Close())
}

func TestContainer_Metrics(t *testing.T) {
	c := NewContainer()
	c.SetRegistry(prometheus.NewRegistry())

	m := c.Metrics()
	assert.NotNil(t, m)
	assert.Same(t, m, c.Metrics())
}

type stubFactory struct{}

func (stubFactory) CreateServerStarter() api.ServerStarter { return nil }

func TestContainer_SetServerFactory(t *testing.T) {
	c := NewContainer()
	c.SetServerFactory(stubFactory{})
	assert.IsType(t, stubFactory{}, c.GetServerFactory())
}
