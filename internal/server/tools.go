package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pointsSchema describes an ink sample list.
var pointsSchema = map[string]interface{}{
	"type":        "array",
	"description": "Ink samples in drawing order. Set end_of_stroke on the last sample of each stroke.",
	"items": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x":             map[string]interface{}{"type": "number"},
			"y":             map[string]interface{}{"type": "number"},
			"end_of_stroke": map[string]interface{}{"type": "boolean"},
		},
		"required": []string{"x", "y"},
	},
}

// inkProperties returns the properties shared by every tool that accepts an
// unknown shape, either as points or as a bitmap file.
func inkProperties() map[string]interface{} {
	return map[string]interface{}{
		"points": pointsSchema,
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to a PNG, JPEG or BMP image to read ink from instead of points",
		},
		"threshold": map[string]interface{}{
			"type":        "integer",
			"description": "Luminance (0-255) below which a pixel is ink. Default 128",
			"default":     128,
		},
		"region": map[string]interface{}{
			"type":        "object",
			"description": "Optional pixel region of the image that holds the symbol",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer"},
				"y1": map[string]interface{}{"type": "integer"},
				"x2": map[string]interface{}{"type": "integer"},
				"y2": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
	}
}

// withProperties merges extra into base and returns base.
func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Template Library
		{
			Name:        "symbol_add_template",
			Description: "Add a labeled reference template drawn as ink points. Several templates may share a label to cover drawing variations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"label": map[string]interface{}{
						"type":        "string",
						"description": "Name of the symbol, e.g. AND",
					},
					"class": map[string]interface{}{
						"type":        "string",
						"description": "Symbol family, e.g. Gate or Label",
					},
					"platform": map[string]interface{}{
						"type":        "string",
						"description": "Optional drawing convention or source the template belongs to",
					},
					"author": map[string]interface{}{
						"type":        "string",
						"description": "Optional author of the drawing",
					},
					"points": pointsSchema,
				},
				"required": []string{"label", "points"},
			},
		},
		{
			Name:        "symbol_import_image",
			Description: "Add a labeled reference template from a bitmap. Each connected ink blob becomes one stroke.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(inkProperties(), map[string]interface{}{
					"label":    map[string]interface{}{"type": "string", "description": "Name of the symbol"},
					"class":    map[string]interface{}{"type": "string", "description": "Symbol family"},
					"platform": map[string]interface{}{"type": "string"},
					"author":   map[string]interface{}{"type": "string"},
				}),
				"required": []string{"label", "path"},
			},
		},
		{
			Name:        "symbol_list_templates",
			Description: "List the reference templates, optionally filtered by class and platform.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"class":    map[string]interface{}{"type": "string", "description": "Only templates of this class"},
					"platform": map[string]interface{}{"type": "string", "description": "Only templates of this platform"},
				},
			},
		},
		{
			Name:        "symbol_remove_template",
			Description: "Remove a reference template by id.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": map[string]interface{}{"type": "string", "description": "Template id"},
				},
				"required": []string{"id"},
			},
		},

		// Recognition
		{
			Name:        "symbol_recognize",
			Description: "Rank reference templates against an unknown shape. Candidates are pre-ranked by rotation-aligned polar distance, then the best top_k are re-ranked by fusing four screen metrics. Lower score is better.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(inkProperties(), map[string]interface{}{
					"class":    map[string]interface{}{"type": "string", "description": "Only match templates of this class"},
					"platform": map[string]interface{}{"type": "string", "description": "Only match templates of this platform"},
					"top_k": map[string]interface{}{
						"type":        "integer",
						"description": "Candidates carried into metric fusion. Default from settings (5)",
					},
					"allowed_rotation": map[string]interface{}{
						"type":        "number",
						"description": "Rotation tolerance in degrees around each origin. 180 allows any rotation",
					},
				}),
			},
		},
		{
			Name:        "symbol_compare",
			Description: "Compute every distance between one template and an unknown shape: polar alignment, rotation, Hausdorff, mean pixel, Tanimoto and Yule.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(inkProperties(), map[string]interface{}{
					"template_id": map[string]interface{}{"type": "string", "description": "Template id"},
					"allowed_rotation": map[string]interface{}{
						"type":        "number",
						"description": "Rotation tolerance in degrees around each origin",
					},
				}),
				"required": []string{"template_id"},
			},
		},

		// Cluster Tree
		{
			Name:        "symbol_build_tree",
			Description: "Build the hierarchical cluster tree over the templates used by symbol_tree_recognize. Adding or removing templates discards the tree.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"class":    map[string]interface{}{"type": "string", "description": "Only cluster templates of this class"},
					"platform": map[string]interface{}{"type": "string", "description": "Only cluster templates of this platform"},
					"linkage": map[string]interface{}{
						"type":        "string",
						"description": "Cluster distance: complete, single or average",
						"enum":        []string{"complete", "single", "average"},
					},
				},
			},
		},
		{
			Name:        "symbol_tree_recognize",
			Description: "Search the cluster tree for the template most similar to an unknown shape. Scores are similarities in (0, 1]; higher is better.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(inkProperties(), map[string]interface{}{
					"strategy": map[string]interface{}{
						"type":        "string",
						"description": "depth_first (default), best_first or n_best",
						"enum":        []string{"depth_first", "best_first", "n_best"},
					},
					"n": map[string]interface{}{
						"type":        "integer",
						"description": "Results returned by n_best. Default 3",
					},
					"start_depth": map[string]interface{}{
						"type":        "integer",
						"description": "Depth whose nodes seed best_first",
					},
					"max_depth": map[string]interface{}{
						"type":        "integer",
						"description": "Skip nodes deeper than this; -1 for unlimited",
					},
					"score_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Stop as soon as a score exceeds this",
					},
					"radius_ratio": map[string]interface{}{
						"type":        "number",
						"description": "Scales node radii into pruning bounds",
					},
				}),
			},
		},

		// Inspection
		{
			Name:        "symbol_render_raster",
			Description: "Render the quantized screen or polar grid of a template or unknown shape as a base64 PNG, either as cell occupancy or as its distance field.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(inkProperties(), map[string]interface{}{
					"template_id": map[string]interface{}{"type": "string", "description": "Template to render instead of points"},
					"grid": map[string]interface{}{
						"type":        "string",
						"description": "screen (default) or polar",
						"enum":        []string{"screen", "polar"},
					},
					"layer": map[string]interface{}{
						"type":        "string",
						"description": "occupancy (default) or field",
						"enum":        []string{"occupancy", "field"},
					},
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels per grid cell. Default 12",
					},
				}),
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
