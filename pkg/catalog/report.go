package catalog

import (
	"time"

	"github.com/segmentio/ksuid"

	"github.com/haxelion/fbx3d/pkg/fbx"
	"github.com/haxelion/fbx3d/pkg/query"
)

// TopNames is the number of most frequent node names kept in a report.
const TopNames = 10

// Report describes one decoded file.
type Report struct {
	ID         ksuid.KSUID   `json:"id" yaml:"id"`
	Source     string        `json:"source" yaml:"source"`
	Size       int64         `json:"size" yaml:"size"`
	Version    uint32        `json:"version" yaml:"version"`
	Stats      query.Stats   `json:"stats" yaml:"stats"`
	DecodeTime time.Duration `json:"decode_time_ns" yaml:"decode_time"`
	CreatedAt  time.Time     `json:"created_at" yaml:"created_at"`
}

// NewReport builds an unsaved report for doc.
func NewReport(source string, size int64, doc *fbx.Document, elapsed time.Duration) *Report {
	return &Report{
		Source:     source,
		Size:       size,
		Version:    doc.Version,
		Stats:      query.Summarize(doc.Nodes, TopNames),
		DecodeTime: elapsed,
	}
}
