package api

import (
	"github.com/haxelion/fbx3d/pkg/catalog"
	"github.com/haxelion/fbx3d/pkg/fbx"
	"github.com/haxelion/fbx3d/pkg/query"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// DecodeResponse is returned by the decode endpoint
type DecodeResponse struct {
	Report *catalog.Report  `json:"report"`
	Stored bool             `json:"stored"`
	Tree   []query.TreeNode `json:"tree,omitempty"`
}

// DecodeFailure describes why an upload could not be decoded
type DecodeFailure struct {
	Kind   string `json:"kind"`
	Field  string `json:"field,omitempty"`
	Offset int64  `json:"offset"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind           string
	Port           int
	MaxUploadBytes int64
	APIKey         string // Empty disables authentication
	DecoderOptions []fbx.Option
}
