package server

import (
	"testing"
)

func toolsByName() map[string]Tool {
	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}
	return toolMap
}

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"symbol_add_template",
		"symbol_import_image",
		"symbol_list_templates",
		"symbol_remove_template",
		"symbol_recognize",
		"symbol_compare",
		"symbol_build_tree",
		"symbol_tree_recognize",
		"symbol_render_raster",
	}

	toolMap := toolsByName()
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}

			if schemaType := tool.InputSchema["type"]; schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || props == nil {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required parameter must be described.
			required, _ := tool.InputSchema["required"].([]string)
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required parameter %q has no property", r)
				}
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tests := map[string][]string{
		"symbol_add_template":    {"label", "points"},
		"symbol_import_image":    {"label", "path"},
		"symbol_remove_template": {"id"},
		"symbol_compare":         {"template_id"},
	}

	toolMap := toolsByName()
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			required, ok := toolMap[name].InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			if len(required) != len(want) {
				t.Fatalf("required: got %v, want %v", required, want)
			}
			for i := range want {
				if required[i] != want[i] {
					t.Errorf("required[%d]: got %s, want %s", i, required[i], want[i])
				}
			}
		})
	}
}

func TestToolDefinitions_InkSource(t *testing.T) {
	for _, name := range []string{"symbol_recognize", "symbol_compare", "symbol_tree_recognize", "symbol_render_raster", "symbol_import_image"} {
		t.Run(name, func(t *testing.T) {
			props := toolsByName()[name].InputSchema["properties"].(map[string]interface{})
			for _, p := range []string{"points", "path", "threshold", "region"} {
				if _, ok := props[p]; !ok {
					t.Errorf("missing ink property %q", p)
				}
			}
		})
	}
}

func TestToolDefinitions_StrategyEnum(t *testing.T) {
	props := toolsByName()["symbol_tree_recognize"].InputSchema["properties"].(map[string]interface{})

	strategy, ok := props["strategy"].(map[string]interface{})
	if !ok {
		t.Fatal("strategy property should exist and be a map")
	}
	enum, ok := strategy["enum"].([]string)
	if !ok {
		t.Fatal("strategy should have enum")
	}

	want := map[string]bool{"depth_first": true, "best_first": true, "n_best": true}
	for _, e := range enum {
		delete(want, e)
	}
	for missing := range want {
		t.Errorf("Expected strategy '%s' not in enum", missing)
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
