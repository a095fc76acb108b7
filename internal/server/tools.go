package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func colorProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Color profile name (see cone_profiles). Defaults to the server's configured color.",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "cone_profiles",
			Description: "List the color profiles the cone finder can search for, with their HSV ranges (H 0-179, S and V 0-255).",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "cone_load",
			Description: "Load a still image and return its dimensions. The image is cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "cone_detect_image",
			Description: "Run cone detection on a still image. Returns the verdict for every contour, all accepted detections, and the selected cone with its anchor and horizontal offset.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty(),
					"color": colorProperty(),
					"selection": map[string]interface{}{
						"type":        "string",
						"description": "How to pick among several detections: 'first' (contour order) or 'largest'",
						"enum":        []string{"first", "largest"},
					},
					"min_area": map[string]interface{}{
						"type":        "number",
						"description": "Exclusive area threshold in square pixels (default 400)",
					},
					"annotate": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the frame with accepted outlines drawn, as base64 PNG",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "cone_mask",
			Description: "Return the eroded color mask for a profile as a black and white base64 PNG. Use this to check whether a profile's range covers the cone.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty(),
					"color": colorProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "cone_crop",
			Description: "Crop the image around a detection and return it as base64 PNG for close inspection.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty(),
					"color": colorProperty(),
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Index into the accepted detections. Defaults to the selected one.",
					},
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels of context around the outline (default 10)",
						"default":     10,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
