package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/matzehuels/genealogy/pkg/buildinfo"
	"github.com/matzehuels/genealogy/pkg/errors"
	"github.com/matzehuels/genealogy/pkg/lineage"
	"github.com/matzehuels/genealogy/pkg/pipeline"
)

// contentTypes maps output formats to response media types.
var contentTypes = map[string]string{
	pipeline.FormatPNG:      "image/png",
	pipeline.FormatSVG:      "image/svg+xml",
	pipeline.FormatJSON:     "application/json",
	pipeline.FormatDOT:      "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatNodelink: "image/svg+xml",
}

// RenderResponse is the body of a multi-format render.
type RenderResponse struct {
	RequestID   string            `json:"request_id"`
	HistoryHash string            `json:"history_hash"`
	Epochs      int               `json:"epochs"`
	Nodes       int               `json:"nodes"`
	Curves      int               `json:"curves"`
	Cached      bool              `json:"cached"`
	Artifacts   map[string][]byte `json:"artifacts"`
}

// LayoutResponse is the body of a layout request.
type LayoutResponse struct {
	RequestID   string          `json:"request_id"`
	HistoryHash string          `json:"history_hash"`
	Drawing     lineage.Drawing `json:"drawing"`
}

type errorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := decodeOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Logger = s.logger

	ctx := r.Context()
	st, err := s.runner.Load(ctx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := st.Index().RequireEpochs(); err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.runner.Draw(ctx, st, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{
		RequestID:   RequestID(ctx),
		HistoryHash: pipeline.HashHistory(st),
		Drawing:     d,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := decodeOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("X-History-Hash", result.HistoryHash)
	w.Header().Set("X-Cache", cacheStatus(result.CacheInfo))

	if len(opts.Formats) == 1 {
		format := opts.Formats[0]
		data := result.Artifacts[format]
		w.Header().Set("Content-Type", contentTypes[format])
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	writeJSON(w, http.StatusOK, RenderResponse{
		RequestID:   RequestID(r.Context()),
		HistoryHash: result.HistoryHash,
		Epochs:      result.Stats.Epochs,
		Nodes:       result.Stats.Nodes,
		Curves:      result.Stats.Curves,
		Cached:      result.CacheInfo.RenderHit,
		Artifacts:   result.Artifacts,
	})
}

// decodeOptions reads the request body. Formats are defaulted here so the
// handler knows how to answer before the runner sees them.
func decodeOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	if opts.History == "" {
		return opts, errors.New(errors.ErrCodeInvalidInput, "history is required")
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{pipeline.FormatPNG}
	}
	return opts, nil
}

func cacheStatus(ci pipeline.CacheInfo) string {
	switch {
	case ci.RenderHit:
		return "hit"
	case ci.DrawingHit:
		return "partial"
	default:
		return "miss"
	}
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	if errors.IsInputError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		if errors.IsContractViolation(err) {
			s.logger.Error("layout stages ran out of order", "id", RequestID(r.Context()), "err", err)
		} else {
			s.logger.Error("request failed", "id", RequestID(r.Context()), "err", err)
		}
		msg = fmt.Sprintf("internal error (request %s)", RequestID(r.Context()))
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, RequestID: RequestID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
