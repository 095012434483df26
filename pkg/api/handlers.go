package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/haxelion/fbx3d/pkg/catalog"
	"github.com/haxelion/fbx3d/pkg/fbx"
	"github.com/haxelion/fbx3d/pkg/logging"
	"github.com/haxelion/fbx3d/pkg/query"
)

const (
	defaultListLimit = 50
	defaultSource    = "upload"
)

// Server holds the API server state
type Server struct {
	store   ReportStore
	decoder *fbx.Decoder
	config  ServerConfig
	metrics *Metrics
	logger  *zap.Logger
}

// NewServer creates a new API server. store may be nil, in which case report
// endpoints answer 503 and decoded reports are never stored.
func NewServer(store ReportStore, config ServerConfig, metrics *Metrics, logger *zap.Logger) *Server {
	return &Server{
		store:   store,
		decoder: fbx.NewDecoder(config.DecoderOptions...),
		config:  config,
		metrics: metrics,
		logger:  logging.OrNop(logger).With(zap.String("component", "api")),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]interface{}{
		"status":  "healthy",
		"catalog": s.store != nil,
	})
}

// handleDecode decodes the request body.
//
// Query parameters:
//   - name: source name recorded in the report (default "upload")
//   - store: persist the report in the catalog
//   - tree: include the node tree in the response
//   - path: restrict the tree to nodes matching a slash separated path
//   - max_array: array elements kept per property in the tree (0 keeps all)
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	store, err := boolParam(params.Get("store"))
	if err != nil {
		sendError(w, "Invalid store parameter", http.StatusBadRequest)
		return
	}
	withTree, err := boolParam(params.Get("tree"))
	if err != nil {
		sendError(w, "Invalid tree parameter", http.StatusBadRequest)
		return
	}
	maxArray := 0
	if v := params.Get("max_array"); v != "" {
		if maxArray, err = strconv.Atoi(v); err != nil || maxArray < 0 {
			sendError(w, "Invalid max_array parameter", http.StatusBadRequest)
			return
		}
	}
	var path query.Path
	if v := params.Get("path"); v != "" {
		if path, err = query.ParsePath(v); err != nil {
			sendError(w, fmt.Sprintf("Invalid path: %v", err), http.StatusBadRequest)
			return
		}
	}
	source := params.Get("name")
	if source == "" {
		source = defaultSource
	}
	if err := catalog.ValidateSource(source); err != nil {
		sendError(w, fmt.Sprintf("Invalid name: %v", err), http.StatusBadRequest)
		return
	}
	if store && s.store == nil {
		sendError(w, "Catalog is not configured", http.StatusServiceUnavailable)
		return
	}

	body := r.Body
	if s.config.MaxUploadBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	start := time.Now()
	doc, err := s.decoder.DecodeDocument(bytes.NewReader(data))
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.RecordDecode(err, 0, 0, elapsed)
		s.logger.Info("decode failed", zap.String("source", source), zap.Int("size", len(data)), zap.Error(err))
		sendDecodeError(w, err)
		return
	}

	report := catalog.NewReport(source, int64(len(data)), doc, elapsed)
	s.metrics.RecordDecode(nil, report.Stats.Nodes, report.Size, elapsed)

	resp := DecodeResponse{Report: report}
	if store {
		if _, err := s.store.Put(report); err != nil {
			s.metrics.RecordCatalogOperation("put", false)
			s.logger.Error("failed to store report", zap.Error(err))
			sendError(w, fmt.Sprintf("Failed to store report: %v", err), http.StatusInternalServerError)
			return
		}
		s.metrics.RecordCatalogOperation("put", true)
		resp.Stored = true
	}
	if withTree {
		nodes := doc.Nodes
		if path != nil {
			matches := query.Select(doc.Nodes, path)
			nodes = make([]fbx.Node, 0, len(matches))
			for _, n := range matches {
				nodes = append(nodes, *n)
			}
		}
		resp.Tree = query.BuildTree(nodes, query.TreeOptions{MaxArray: maxArray})
	}

	sendSuccess(w, resp)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		sendError(w, "Catalog is not configured", http.StatusServiceUnavailable)
		return
	}

	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			sendError(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	var reports []*catalog.Report
	var err error
	if source := r.URL.Query().Get("source"); source != "" {
		reports, err = s.store.FindBySource(source)
		if limit > 0 && len(reports) > limit {
			reports = reports[:limit]
		}
	} else {
		reports, err = s.store.List(limit)
	}
	if err != nil {
		s.metrics.RecordCatalogOperation("list", false)
		sendCatalogError(w, err)
		return
	}
	s.metrics.RecordCatalogOperation("list", true)
	if reports == nil {
		reports = []*catalog.Report{}
	}
	sendSuccess(w, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.reportID(w, r)
	if !ok {
		return
	}

	report, err := s.store.Get(id)
	if err != nil {
		s.metrics.RecordCatalogOperation("get", false)
		sendCatalogError(w, err)
		return
	}
	s.metrics.RecordCatalogOperation("get", true)
	sendSuccess(w, report)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.reportID(w, r)
	if !ok {
		return
	}

	if err := s.store.Delete(id); err != nil {
		s.metrics.RecordCatalogOperation("delete", false)
		sendCatalogError(w, err)
		return
	}
	s.metrics.RecordCatalogOperation("delete", true)
	sendSuccess(w, map[string]string{"id": id.String(), "status": "deleted"})
}

// reportID parses the {id} URL parameter, writing the error response on failure
func (s *Server) reportID(w http.ResponseWriter, r *http.Request) (ksuid.KSUID, bool) {
	if s.store == nil {
		sendError(w, "Catalog is not configured", http.StatusServiceUnavailable)
		return ksuid.Nil, false
	}
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid report id", http.StatusBadRequest)
		return ksuid.Nil, false
	}
	return id, true
}

func sendDecodeError(w http.ResponseWriter, err error) {
	failure := DecodeFailure{Kind: errorKind(err)}
	var de *fbx.DecodeError
	if errors.As(err, &de) {
		failure.Field = de.Field
		failure.Offset = de.Offset
	}
	sendResponse(w, http.StatusUnprocessableEntity, APIResponse{
		Success: false,
		Data:    failure,
		Error:   err.Error(),
	})
}

func sendCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		sendError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, catalog.ErrInvalidSource):
		sendError(w, err.Error(), http.StatusBadRequest)
	default:
		sendError(w, err.Error(), http.StatusInternalServerError)
	}
}

func boolParam(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
