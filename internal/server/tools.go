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
		"description": "Absolute path to the page image",
	}
}

// coordsSchema describes a detection.Coords object.
func coordsSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"left":   map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (0-based)"},
			"top":    map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (0-based)"},
			"width":  map[string]interface{}{"type": "integer", "description": "Width in pixels"},
			"height": map[string]interface{}{"type": "integer", "description": "Height in pixels"},
		},
		"required": []string{"left", "top", "width", "height"},
	}
}

// detectionsSchema describes a list of detection.Detection objects.
func detectionsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "OCR words in crop coordinates. When omitted, Tesseract is run on the crop.",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"text":       map[string]interface{}{"type": "string"},
				"confidence": map[string]interface{}{"type": "number", "description": "0-100"},
				"bbox": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"x0": map[string]interface{}{"type": "integer"},
						"y0": map[string]interface{}{"type": "integer"},
						"x1": map[string]interface{}{"type": "integer"},
						"y1": map[string]interface{}{"type": "integer"},
					},
				},
			},
			"required": []string{"text", "confidence", "bbox"},
		},
	}
}

func kindProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"bubble", "text"},
		"description": "Crop kind: a speech bubble or a tight free-text rectangle. Default bubble",
		"default":     "bubble",
	}
}

func strategyProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"auto", "blocks", "polygon"},
		"description": "Mask strategy: blocks from OCR words, or a polygon traced around binarized ink. Default from configuration",
	}
}

// cropProperties returns the properties shared by text_mask and text_clean.
func cropProperties() map[string]interface{} {
	return map[string]interface{}{
		"path":       pathProperty(),
		"region":     coordsSchema("Crop position on the page. Omit to use the whole image"),
		"crop_id":    map[string]interface{}{"type": "string", "description": "Identifier echoed in the result. Generated when empty"},
		"kind":       kindProperty(),
		"strategy":   strategyProperty(),
		"detections": detectionsSchema(),
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	maskProps := cropProperties()
	maskProps["output_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional file to write the mask PNG to instead of returning it inline",
	}

	cleanProps := cropProperties()
	cleanProps["output_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional file to write the cleaned crop to (PNG, or JPEG for .jpg)",
	}
	cleanProps["mask_output_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional file to write the mask preview to",
	}

	return []Tool{
		// Page Information
		{
			Name:        "image_load",
			Description: "Load a page image and return its dimensions and format. The page stays cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ocr_status",
			Description: "Report whether Tesseract is available, its version and the configured language.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Detection
		{
			Name:        "text_detect",
			Description: "Run word-level OCR on a region and return every detection in crop coordinates, plus which ones survive the confidence and text filters.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": coordsSchema("Region to recognize. Omit to use the whole image"),
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code. Default from configuration",
					},
				},
				"required": []string{"path"},
			},
		},

		// Cleanup
		{
			Name:        "text_mask",
			Description: "Build the text mask of one crop without painting. Returns the mask as a white-on-transparent PNG with the filtered detections and clusters.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": maskProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "text_clean",
			Description: "Remove the lettering from one crop. Bubbles are painted under the mask with the surrounding color; flat text crops are filled whole. Failures that leave the crop untouched are reported in the error field.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": cleanProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "page_clean",
			Description: "Clean several regions of one page and paste the results back. Regions enclosing another region are skipped. Regions without detections are recognized with Tesseract.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"regions": map[string]interface{}{
						"type":        "array",
						"description": "Regions to clean",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"id":         map[string]interface{}{"type": "string"},
								"coords":     coordsSchema("Region position on the page"),
								"kind":       kindProperty(),
								"detections": detectionsSchema(),
							},
							"required": []string{"coords"},
						},
					},
					"strategy": strategyProperty(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional file to write the cleaned page to",
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the cleaned page inline even when output_path is set",
						"default":     false,
					},
				},
				"required": []string{"path", "regions"},
			},
		},

		// Analysis Helpers
		{
			Name:        "color_analyze",
			Description: "Report the approximate dominant color of a region and its most frequent exact colors. is_flat tells whether a text crop this flat would be filled whole.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": coordsSchema("Region to analyze. Omit to use the whole image"),
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of exact colors to return. Default 5",
						"default":     5,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "background_analyze",
			Description: "Split a region into background and text with Otsu's threshold, report representative colors and locate the lettering block.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": coordsSchema("Region to analyze. Omit to use the whole image"),
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
