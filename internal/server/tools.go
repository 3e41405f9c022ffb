package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema of the "path" argument every tool takes.
func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// withConfigProperties adds the pipeline tuning arguments to props.
func withConfigProperties(props map[string]interface{}) map[string]interface{} {
	props["threshold_low"] = map[string]interface{}{
		"type":        "number",
		"description": "Low hysteresis threshold for Canny edge detection (default 50). An explicit 0 is honoured",
		"default":     50,
	}
	props["threshold_high"] = map[string]interface{}{
		"type":        "number",
		"description": "High hysteresis threshold for Canny edge detection (default 200)",
		"default":     200,
	}
	props["blur_radius"] = map[string]interface{}{
		"type":        "number",
		"description": "Gaussian blur sigma applied before edge detection. 0 disables it (default 0)",
		"default":     0,
	}
	props["close_kernel"] = map[string]interface{}{
		"type":        "integer",
		"description": "Side of the square closing kernel, odd (default 3)",
		"default":     3,
	}
	props["min_area"] = map[string]interface{}{
		"type":        "number",
		"description": "Boundaries enclosing this many pixels or fewer are ignored (default 1000). 0 keeps every boundary",
		"default":     1000,
	}
	props["epsilon"] = map[string]interface{}{
		"type":        "number",
		"description": "Polygon simplification tolerance as a fraction of the perimeter (default 0.02)",
		"default":     0.02,
	}
	props["sort_reading_order"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Order results top-to-bottom, left-to-right instead of discovery order",
		"default":     false,
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Crop a rectangular region from an image and return it as base64-encoded PNG. Use this to inspect a region by hand.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},

		// Sub-picture Extraction
		{
			Name:        "subpic_extract",
			Description: "Find the rectangular sub-pictures (photos, panels, scanned prints) inside an image. Returns the bounding box and corners of each, optionally with the cropped image as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withConfigProperties(map[string]interface{}{
					"path": pathProperty(),
					"include_images": map[string]interface{}{
						"type":        "boolean",
						"description": "Whether to return each sub-picture as base64-encoded PNG",
						"default":     false,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor for returned images. Default 1.0",
						"default":     1.0,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "subpic_save",
			Description: "Extract the sub-pictures of an image and write each to its own file, numbered after the files already present (name1.jpg, name2.jpg, ...). Writes to a local directory, or to an S3 bucket when bucket is set.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withConfigProperties(map[string]interface{}{
					"path": pathProperty(),
					"directory": map[string]interface{}{
						"type":        "string",
						"description": "Destination directory. Required unless bucket is set",
					},
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "Base file name the counter is appended to (default: source name followed by '_')",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"jpg", "jpeg", "png", "bmp", "gif", "tiff"},
						"description": "Output format (default jpg)",
						"default":     "jpg",
					},
					"create_directory": map[string]interface{}{
						"type":        "boolean",
						"description": "Create the destination directory if it does not exist",
						"default":     false,
					},
					"jpeg_quality": map[string]interface{}{
						"type":        "integer",
						"description": "JPEG quality 1-100 (default 95)",
						"default":     95,
					},
					"bucket": map[string]interface{}{
						"type":        "string",
						"description": "S3 bucket to write to instead of the local filesystem",
					},
					"prefix": map[string]interface{}{
						"type":        "string",
						"description": "Key prefix inside the bucket",
					},
					"region": map[string]interface{}{
						"type":        "string",
						"description": "AWS region of the bucket (default from the environment)",
					},
				}),
				"required": []string{"path"},
			},
		},

		// Diagnostics
		{
			Name:        "subpic_edge_map",
			Description: "Return the shaped edge map the sub-picture boundaries are traced from, as base64 PNG. Useful for tuning thresholds when extraction misses a picture.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": withConfigProperties(map[string]interface{}{"path": pathProperty()}),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "subpic_outline",
			Description: "Return the source image with every detected sub-picture outlined, as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withConfigProperties(map[string]interface{}{
					"path": pathProperty(),
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color as hex (default #00FF00)",
						"default":     "#00FF00",
					},
					"thickness": map[string]interface{}{
						"type":        "integer",
						"description": "Outline thickness in pixels (default 2)",
						"default":     2,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Return the raw Canny edge map of the image, before dilation and closing, as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"threshold_low": map[string]interface{}{
						"type":        "integer",
						"description": "Low threshold for Canny edge detection (default 50)",
						"default":     50,
					},
					"threshold_high": map[string]interface{}{
						"type":        "integer",
						"description": "High threshold for Canny edge detection (default 200)",
						"default":     200,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "subpic_config",
			Description: "Report the default pipeline settings, the active detection backend and the supported output formats.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
