package server

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/cone-finder/internal/finder"
	"github.com/ironsheep/cone-finder/internal/imaging"
	"github.com/ironsheep/cone-finder/internal/profile"
)

// defaultPadding is the context kept around a detection by cone_crop.
const defaultPadding = 10

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "cone_detect_image").
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
		s.logger.Debugw("tool failed", "tool", params.Name, "error", err)
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	case "cone_profiles":
		return s.handleProfiles()
	case "cone_load":
		return s.handleLoad(args)
	case "cone_detect_image":
		return s.handleDetectImage(args)
	case "cone_mask":
		return s.handleMask(args)
	case "cone_crop":
		return s.handleCrop(args)
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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// resolveProfile resolves a color name, falling back to the configured default.
func (s *Server) resolveProfile(name string) (profile.Profile, error) {
	if name == "" {
		name = s.cfg.Server.DefaultColor
	}
	return profile.Lookup(name)
}

// analyze loads path and runs it through the detection pipeline.
func (s *Server) analyze(path, color string, opts finder.Options) (image.Image, profile.Profile, *finder.Analysis, error) {
	p, err := s.resolveProfile(color)
	if err != nil {
		return nil, profile.Profile{}, nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, p, nil, err
	}
	a, err := finder.Analyze(img, p, opts)
	if err != nil {
		return nil, p, nil, err
	}
	return img, p, a, nil
}

type profilesResult struct {
	Default  string            `json:"default"`
	Profiles []profile.Profile `json:"profiles"`
}

func (s *Server) handleProfiles() (interface{}, error) {
	return &profilesResult{
		Default:  s.cfg.Server.DefaultColor,
		Profiles: profile.All(),
	}, nil
}

type loadArgs struct {
	Path string `json:"path"`
}

type loadResult struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleLoad(args json.RawMessage) (interface{}, error) {
	var a loadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if !imaging.IsSupported(a.Path) {
		return nil, fmt.Errorf("unsupported image format: %s", a.Path)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &loadResult{Path: a.Path, Width: b.Dx(), Height: b.Dy()}, nil
}

type detectArgs struct {
	Path      string   `json:"path"`
	Color     string   `json:"color"`
	Selection string   `json:"selection"`
	MinArea   *float64 `json:"min_area"`
	Annotate  bool     `json:"annotate"`
}

type detectResult struct {
	Profile profile.Profile `json:"profile"`
	*finder.Analysis
	AnnotatedBase64 string `json:"annotated_base64,omitempty"`
	MimeType        string `json:"mime_type,omitempty"`
}

func (s *Server) handleDetectImage(args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := s.cfg.LoopOptions()
	if a.Selection != "" {
		sel, err := finder.ParseSelection(a.Selection)
		if err != nil {
			return nil, err
		}
		opts.Selection = sel
	}
	if a.MinArea != nil {
		if *a.MinArea < 0 {
			return nil, fmt.Errorf("min_area must not be negative, got %v", *a.MinArea)
		}
		opts.Filter.MinArea = *a.MinArea
	}

	img, p, analysis, err := s.analyze(a.Path, a.Color, opts)
	if err != nil {
		return nil, err
	}

	res := &detectResult{Profile: p, Analysis: analysis}
	if a.Annotate {
		encoded, err := imaging.EncodePNGBase64(finder.Annotate(img, analysis.Detections, opts.OutlineColor, opts.OutlineThickness))
		if err != nil {
			return nil, err
		}
		res.AnnotatedBase64 = encoded
		res.MimeType = "image/png"
	}
	return res, nil
}

type maskArgs struct {
	Path  string `json:"path"`
	Color string `json:"color"`
}

type maskResult struct {
	Profile     string `json:"profile"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Foreground  int    `json:"foreground"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

func (s *Server) handleMask(args json.RawMessage) (interface{}, error) {
	var a maskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	_, p, analysis, err := s.analyze(a.Path, a.Color, s.cfg.LoopOptions())
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNGBase64(analysis.Mask.Image())
	if err != nil {
		return nil, err
	}
	return &maskResult{
		Profile:     p.Name,
		Width:       analysis.Width,
		Height:      analysis.Height,
		Foreground:  analysis.Foreground,
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

type cropArgs struct {
	Path    string  `json:"path"`
	Color   string  `json:"color"`
	Index   *int    `json:"index"`
	Padding *int    `json:"padding"`
	Scale   float64 `json:"scale"`
}

func (s *Server) handleCrop(args json.RawMessage) (interface{}, error) {
	var a cropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	padding := defaultPadding
	if a.Padding != nil {
		padding = *a.Padding
	}
	if padding < 0 {
		return nil, fmt.Errorf("padding must not be negative, got %d", padding)
	}

	img, p, analysis, err := s.analyze(a.Path, a.Color, s.cfg.LoopOptions())
	if err != nil {
		return nil, err
	}
	if len(analysis.Detections) == 0 {
		return nil, fmt.Errorf("no %s cone detected in %s", p.Name, a.Path)
	}

	idx := analysis.Selected
	if a.Index != nil {
		idx = *a.Index
	}
	if idx < 0 || idx >= len(analysis.Detections) {
		return nil, fmt.Errorf("detection index %d out of range [0, %d)", idx, len(analysis.Detections))
	}

	// Mask coordinates are 0-based; shift them back onto the frame.
	origin := img.Bounds().Min
	outline := analysis.Detections[idx].Outline()
	for i := range outline {
		outline[i] = outline[i].Add(origin)
	}
	return imaging.Crop(img, imaging.Around(outline, padding, img.Bounds()), a.Scale)
}
