package server

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ironsheep/subpic-mcp/internal/detection"
	"github.com/ironsheep/subpic-mcp/internal/imaging"
	"github.com/ironsheep/subpic-mcp/internal/storage"
	"github.com/ironsheep/subpic-mcp/internal/subpic"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "subpic_extract").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.WithError(err).WithField("tool", params.Name).Warn("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Runs the pipeline or an imaging helper
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_crop":
		return s.handleImageCrop(args)

	// Sub-picture Extraction
	case "subpic_extract":
		return s.handleSubpicExtract(args)
	case "subpic_save":
		return s.handleSubpicSave(args)

	// Diagnostics
	case "subpic_edge_map":
		return s.handleSubpicEdgeMap(args)
	case "subpic_outline":
		return s.handleSubpicOutline(args)
	case "subpic_config":
		return s.handleSubpicConfig(args)
	case "image_edge_detect":
		return s.handleEdgeDetect(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments. Missing arguments decode as the
// zero value so that tools without required fields can be called bare.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imageCropArgs struct {
	Path  string  `json:"path"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(src.Color, a.X1, a.Y1, a.X2, a.Y2, a.Scale)
}

// === Sub-picture Extraction Handlers ===

// configArgs are the pipeline overrides shared by the subpic tools. Omitted
// fields keep their defaults; an explicit zero is passed through.
type configArgs struct {
	ThresholdLow     *float64 `json:"threshold_low"`
	ThresholdHigh    *float64 `json:"threshold_high"`
	BlurRadius       *float64 `json:"blur_radius"`
	CloseKernel      *int     `json:"close_kernel"`
	MinArea          *float64 `json:"min_area"`
	Epsilon          *float64 `json:"epsilon"`
	SortReadingOrder bool     `json:"sort_reading_order"`
}

func (a configArgs) config() subpic.Config {
	cfg := subpic.DefaultConfig()
	if a.ThresholdLow != nil {
		cfg.LowThreshold = *a.ThresholdLow
	}
	if a.ThresholdHigh != nil {
		cfg.HighThreshold = *a.ThresholdHigh
	}
	if a.BlurRadius != nil {
		cfg.BlurRadius = *a.BlurRadius
	}
	if a.CloseKernel != nil {
		cfg.CloseKernel = *a.CloseKernel
	}
	if a.MinArea != nil {
		cfg.MinArea = *a.MinArea
	}
	if a.Epsilon != nil {
		cfg.Epsilon = *a.Epsilon
	}
	cfg.SortReadingOrder = a.SortReadingOrder
	return cfg
}

// extract loads path through the cache and runs the pipeline on it.
func (s *Server) extract(path string, cfg subpic.Config) (*subpic.Result, error) {
	src, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return subpic.NewExtractor(cfg, s.log).Extract(src)
}

// SubPicInfo describes one extracted sub-picture.
type SubPicInfo struct {
	Index   int                   `json:"index"`
	Bounds  detection.Bounds      `json:"bounds"`
	Width   int                   `json:"width"`
	Height  int                   `json:"height"`
	Corners []detection.Point     `json:"corners"`
	Image   *imaging.EncodedImage `json:"image,omitempty"`
}

// RejectedInfo describes a region that was large enough but not a
// quadrilateral.
type RejectedInfo struct {
	Bounds   detection.Bounds `json:"bounds"`
	Vertices int              `json:"vertices"`
	Reason   string           `json:"reason"`
}

// ExtractResult is the subpic_extract response.
type ExtractResult struct {
	Count    int            `json:"count"`
	SubPics  []SubPicInfo   `json:"subpics"`
	Rejected []RejectedInfo `json:"rejected,omitempty"`
	Backend  string         `json:"backend"`
}

type subpicExtractArgs struct {
	Path string `json:"path"`
	configArgs
	IncludeImages bool    `json:"include_images"`
	Scale         float64 `json:"scale"`
}

func (s *Server) handleSubpicExtract(args json.RawMessage) (interface{}, error) {
	var a subpicExtractArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	res, err := s.extract(a.Path, a.config())
	if err != nil {
		return nil, err
	}

	out := &ExtractResult{
		Count:   len(res.SubImages),
		SubPics: make([]SubPicInfo, 0, len(res.SubImages)),
		Backend: subpic.Backend,
	}
	for _, sub := range res.SubImages {
		info := SubPicInfo{
			Index:   sub.Index,
			Bounds:  detection.BoundsOf(sub.Bounds),
			Width:   sub.Bounds.Dx(),
			Height:  sub.Bounds.Dy(),
			Corners: detection.PointsOf(sub.Quad.Points()),
		}
		if a.IncludeImages {
			enc, err := imaging.EncodeScaled(sub.Image, a.Scale)
			if err != nil {
				return nil, err
			}
			info.Image = enc
		}
		out.SubPics = append(out.SubPics, info)
	}
	for _, c := range res.Candidates {
		if !c.Accepted {
			out.Rejected = append(out.Rejected, RejectedInfo{
				Bounds:   detection.BoundsOf(c.Boundary.Bounds()),
				Vertices: len(c.Polygon),
				Reason:   c.Reason,
			})
		}
	}
	return out, nil
}

type subpicSaveArgs struct {
	Path string `json:"path"`
	configArgs
	Directory       string `json:"directory"`
	FileName        string `json:"filename"`
	Format          string `json:"format"`
	CreateDirectory bool   `json:"create_directory"`
	JPEGQuality     int    `json:"jpeg_quality"`
	Bucket          string `json:"bucket"`
	Prefix          string `json:"prefix"`
	Region          string `json:"region"`
}

func (s *Server) handleSubpicSave(args json.RawMessage) (interface{}, error) {
	var a subpicSaveArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Format == "" {
		a.Format = "jpg"
	}
	if a.FileName == "" {
		base := filepath.Base(a.Path)
		a.FileName = strings.TrimSuffix(base, filepath.Ext(base)) + "_"
	}
	format, err := storage.ParseFormat(a.Format)
	if err != nil {
		return nil, err
	}

	opts := storage.Options{
		Directory:       a.Directory,
		FileName:        a.FileName,
		Format:          format,
		CreateDirectory: a.CreateDirectory,
		JPEGQuality:     a.JPEGQuality,
	}

	var store storage.Store
	if a.Bucket != "" {
		store, err = s.newS3Store(a.Region, a.Bucket)
		if err != nil {
			return nil, err
		}
		opts.Directory = a.Prefix
	} else {
		if a.Directory == "" {
			return nil, fmt.Errorf("directory is required unless bucket is set")
		}
		store = storage.NewLocalStore(s.log)
	}

	res, err := s.extract(a.Path, a.config())
	if err != nil {
		return nil, err
	}
	return res.Save(store, opts)
}

// === Diagnostic Handlers ===

type subpicEdgeMapArgs struct {
	Path string `json:"path"`
	configArgs
}

func (s *Server) handleSubpicEdgeMap(args json.RawMessage) (interface{}, error) {
	var a subpicEdgeMapArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	edges, err := subpic.NewExtractor(a.config(), s.log).EdgeMap(src)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(edges)
}

type subpicOutlineArgs struct {
	Path string `json:"path"`
	configArgs
	Color     string `json:"color"`
	Thickness int    `json:"thickness"`
}

// OutlineResult is the subpic_outline response: the source with every
// accepted quadrilateral drawn on it.
type OutlineResult struct {
	Count int `json:"count"`
	*imaging.EncodedImage
}

func (s *Server) handleSubpicOutline(args json.RawMessage) (interface{}, error) {
	var a subpicOutlineArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	res, err := s.extract(a.Path, a.config())
	if err != nil {
		return nil, err
	}
	annotated, err := imaging.DrawOutlines(res.Source.Color, res.Quads(), a.Color, a.Thickness)
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodePNG(annotated)
	if err != nil {
		return nil, err
	}
	return &OutlineResult{Count: len(res.SubImages), EncodedImage: enc}, nil
}

type edgeDetectArgs struct {
	Path          string `json:"path"`
	ThresholdLow  int    `json:"threshold_low"`
	ThresholdHigh int    `json:"threshold_high"`
}

// handleEdgeDetect returns the unshaped Canny edge map.
func (s *Server) handleEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a edgeDetectArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.ThresholdLow == 0 {
		a.ThresholdLow = imaging.DefaultLowThreshold
	}
	if a.ThresholdHigh == 0 {
		a.ThresholdHigh = imaging.DefaultHighThreshold
	}
	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(src.Color, a.ThresholdLow, a.ThresholdHigh)
}

// ConfigResult is the subpic_config response.
type ConfigResult struct {
	Defaults subpic.Config `json:"defaults"`
	Backend  string        `json:"backend"`
	Formats  []string      `json:"formats"`
}

func (s *Server) handleSubpicConfig(_ json.RawMessage) (interface{}, error) {
	return &ConfigResult{
		Defaults: subpic.DefaultConfig(),
		Backend:  subpic.Backend,
		Formats:  []string{"jpg", "jpeg", "png", "bmp", "gif", "tiff"},
	}, nil
}
