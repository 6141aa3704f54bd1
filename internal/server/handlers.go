package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/food-label-mcp/internal/analysis"
	"github.com/ironsheep/food-label-mcp/internal/imaging"
	"github.com/ironsheep/food-label-mcp/internal/labeler"
	"github.com/ironsheep/food-label-mcp/internal/layout"
	"github.com/ironsheep/food-label-mcp/internal/lexicon"
	"github.com/ironsheep/food-label-mcp/internal/ocr"
)

// errInvalidArgs marks argument errors, reported as JSON-RPC invalid params.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "label_extract_text").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed arguments return -32602; tool execution errors return -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	callID := uuid.NewString()
	start := time.Now()
	log := s.log.With().Str("call_id", callID).Str("tool", params.Name).Logger()
	log.Debug().Msg("Tool call")

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		log.Warn().Err(err).Int64("elapsed_ms", time.Since(start).Milliseconds()).Msg("Tool call failed")
		if errors.Is(err, errInvalidArgs) {
			return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	log.Debug().Int64("elapsed_ms", time.Since(start).Milliseconds()).Msg("Tool call done")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image
	case ToolLoad:
		return s.handleLoad(args)
	case ToolPreprocess:
		return s.handlePreprocess(args)

	// OCR
	case ToolOCRFragments:
		return s.handleOCRFragments(ctx, args)
	case ToolExtractText:
		return s.handleExtractText(ctx, args)

	// Text
	case ToolReconstruct:
		return s.handleReconstruct(args)
	case ToolNormalizeText:
		return s.handleNormalizeText(args)

	// Analysis
	case ToolAnalyzeText:
		return s.handleAnalyzeText(ctx, args)
	case ToolAnalyze:
		return s.handleAnalyze(ctx, args)

	case ToolHealth:
		return s.handleHealth(), nil

	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArgs, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments, tagging failures as invalid params.
// Empty arguments leave v untouched.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

// === Image Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (a pathArgs) validate() error {
	if strings.TrimSpace(a.Path) == "" {
		return fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	return nil
}

type photoArgs struct {
	Path        string          `json:"path"`
	Region      *imaging.Region `json:"region,omitempty"`
	SkipEnhance bool            `json:"skip_enhance"`
}

func (a photoArgs) extractOptions() labeler.ExtractOptions {
	opts := labeler.ExtractOptions{SkipEnhance: a.SkipEnhance}
	if a.Region != nil {
		opts.Region = *a.Region
	}
	return opts
}

func decodePhotoArgs(args json.RawMessage) (photoArgs, error) {
	var a photoArgs
	if err := decodeArgs(args, &a); err != nil {
		return a, err
	}
	return a, pathArgs{Path: a.Path}.validate()
}

func (s *Server) handleLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.svc.Cache(), a.Path)
}

type preprocessResult struct {
	*imaging.EncodedImage
	Enhanced bool `json:"enhanced"`
}

func (s *Server) handlePreprocess(args json.RawMessage) (interface{}, error) {
	a, err := decodePhotoArgs(args)
	if err != nil {
		return nil, err
	}
	img, enhanced, err := s.svc.Preprocess(a.Path, a.extractOptions())
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNGBase64(img)
	if err != nil {
		return nil, err
	}
	return &preprocessResult{EncodedImage: encoded, Enhanced: enhanced}, nil
}

// === OCR Handlers ===

type fragmentsResult struct {
	Engine    string            `json:"engine"`
	Enhanced  bool              `json:"enhanced"`
	Count     int               `json:"count"`
	Fragments []layout.Fragment `json:"fragments"`
}

func (s *Server) handleOCRFragments(ctx context.Context, args json.RawMessage) (interface{}, error) {
	a, err := decodePhotoArgs(args)
	if err != nil {
		return nil, err
	}
	fragments, enhanced, err := s.svc.Recognize(ctx, a.Path, a.extractOptions())
	if err != nil {
		return nil, err
	}
	if fragments == nil {
		fragments = []layout.Fragment{}
	}
	return &fragmentsResult{
		Engine:    s.svc.EngineName(),
		Enhanced:  enhanced,
		Count:     len(fragments),
		Fragments: fragments,
	}, nil
}

func (s *Server) handleExtractText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	a, err := decodePhotoArgs(args)
	if err != nil {
		return nil, err
	}
	ext, err := s.svc.ExtractText(ctx, a.Path, a.extractOptions())
	if errors.Is(err, labeler.ErrUnreadableLabel) {
		return nil, errors.New(labeler.UnreadableMessage)
	}
	return ext, err
}

// === Text Handlers ===

type reconstructArgs struct {
	Fragments json.RawMessage `json:"fragments"`
}

type reconstructResult struct {
	Found bool     `json:"found"`
	Text  string   `json:"text"`
	Lines []string `json:"lines"`
}

func (s *Server) handleReconstruct(args json.RawMessage) (interface{}, error) {
	var a reconstructArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Fragments) == 0 {
		return nil, fmt.Errorf("%w: fragments is required", errInvalidArgs)
	}

	fragments, err := layout.ParseFragmentsJSON(a.Fragments)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}

	doc := s.svc.Reconstruct(fragments)
	if doc == nil {
		return &reconstructResult{Lines: []string{}}, nil
	}
	return &reconstructResult{Found: true, Text: doc.String(), Lines: doc.Lines}, nil
}

type textArgs struct {
	Text string `json:"text"`
}

type normalizeResult struct {
	Text         string               `json:"text"`
	Changed      bool                 `json:"changed"`
	Plausibility lexicon.Plausibility `json:"plausibility"`
}

func (s *Server) handleNormalizeText(args json.RawMessage) (interface{}, error) {
	var a textArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	text := s.svc.Normalize(a.Text)
	return &normalizeResult{
		Text:         text,
		Changed:      text != a.Text,
		Plausibility: s.svc.Assess(text),
	}, nil
}

// === Analysis Handlers ===

type analyzeTextResult struct {
	Analysis string           `json:"analysis"`
	Report   *analysis.Report `json:"report"`
}

func (s *Server) handleAnalyzeText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a textArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	report, err := s.svc.AnalyzeText(ctx, a.Text)
	if err != nil {
		return nil, err
	}
	return &analyzeTextResult{Analysis: report.String(), Report: report}, nil
}

func (s *Server) handleAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	a, err := decodePhotoArgs(args)
	if err != nil {
		return nil, err
	}
	return s.svc.AnalyzeLabel(ctx, a.Path, a.extractOptions()), nil
}

// === Health ===

type healthResult struct {
	Status          string   `json:"status"`
	Version         string   `json:"version"`
	OCR             ocr.Info `json:"ocr"`
	AnalysisEnabled bool     `json:"analysis_enabled"`
	CachedImages    int      `json:"cached_images"`
}

func (s *Server) handleHealth() *healthResult {
	info := ocr.Info{Available: true, Engine: s.svc.EngineName()}
	if s.ocrInfo != nil {
		info = s.ocrInfo()
	}

	status := "ok"
	if !info.Available {
		status = "degraded"
	}

	return &healthResult{
		Status:          status,
		Version:         s.version,
		OCR:             info,
		AnalysisEnabled: s.svc.AnalysisEnabled(),
		CachedImages:    s.svc.Cache().Len(),
	}
}
