package api

import (
	"context"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/haxelion/fbx3d/pkg/catalog"
)

// ReportStore defines the catalog operations used by the server
type ReportStore interface {
	Put(r *catalog.Report) (ksuid.KSUID, error)
	Get(id ksuid.KSUID) (*catalog.Report, error)
	List(limit int) ([]*catalog.Report, error)
	FindBySource(source string) ([]*catalog.Report, error)
	Delete(id ksuid.KSUID) error
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is cancelled or the listener fails
	StartServer(ctx context.Context, store ReportStore, config ServerConfig, metrics *Metrics, logger *zap.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
