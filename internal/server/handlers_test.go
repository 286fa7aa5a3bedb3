package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/symbol-tools-mcp/internal/config"
	"github.com/ironsheep/symbol-tools-mcp/internal/library"
	"github.com/ironsheep/symbol-tools-mcp/internal/raster"
	"github.com/ironsheep/symbol-tools-mcp/internal/testutil"
)

// callTool runs a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// mustCall runs a tool that must succeed and decodes its text content
// into out.
func mustCall(t *testing.T, s *Server, name string, args interface{}, out interface{}) {
	t.Helper()

	resp := callTool(t, s, name, args)
	if resp.Error != nil {
		t.Fatalf("%s: unexpected error: %v (%v)", name, resp.Error.Message, resp.Error.Data)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content should hold one entry, got %v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}

	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("%s: failed to decode result %q: %v", name, text, err)
	}
}

// expectToolError runs a tool that must fail and returns the error detail.
func expectToolError(t *testing.T, s *Server, name string, args interface{}) string {
	t.Helper()

	resp := callTool(t, s, name, args)
	if resp.Error == nil {
		t.Fatalf("%s: expected error", name)
	}
	if resp.Error.Code != -32000 {
		t.Errorf("%s: error code: got %d, want -32000", name, resp.Error.Code)
	}
	detail, _ := resp.Error.Data.(string)
	return detail
}

type addResult struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Points      int    `json:"points"`
	ScreenCells int    `json:"screen_cells"`
	PolarCells  int    `json:"polar_cells"`
	Persisted   bool   `json:"persisted"`
}

func addGate(t *testing.T, s *Server, label string, pts []raster.Point) addResult {
	t.Helper()
	var r addResult
	mustCall(t, s, "symbol_add_template", map[string]interface{}{
		"label":  label,
		"class":  "Gate",
		"points": pts,
	}, &r)
	return r
}

// gateServer returns a server holding the AND, OR and NOT gates.
func gateServer(t *testing.T) (*Server, map[string]string) {
	t.Helper()
	s := newTestServer(t)
	ids := map[string]string{
		"AND": addGate(t, s, "AND", testutil.AndGate()).ID,
		"OR":  addGate(t, s, "OR", testutil.OrGate()).ID,
		"NOT": addGate(t, s, "NOT", testutil.NotGate()).ID,
	}
	return s, ids
}

// createInkFile writes a white PNG with black rectangles and returns its path.
func createInkFile(t *testing.T, width, height int, rects ...image.Rectangle) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
	for _, r := range rects {
		draw.Draw(img, r, &image.Uniform{color.Black}, image.Point{}, draw.Src)
	}

	path := filepath.Join(t.TempDir(), "ink.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestHandleToolsCall_AddTemplate(t *testing.T) {
	s := newTestServer(t)
	r := addGate(t, s, "AND", testutil.AndGate())

	if r.Label != "AND" {
		t.Errorf("label: got %s, want AND", r.Label)
	}
	if r.Points != len(testutil.AndGate()) {
		t.Errorf("points: got %d, want %d", r.Points, len(testutil.AndGate()))
	}
	if r.ScreenCells == 0 || r.PolarCells == 0 {
		t.Errorf("expected occupied cells, got screen %d polar %d", r.ScreenCells, r.PolarCells)
	}
	if r.Persisted {
		t.Error("template should not be persisted without a store")
	}
	if s.library.Len() != 1 {
		t.Errorf("library size: got %d, want 1", s.library.Len())
	}
}

func TestHandleToolsCall_AddTemplateErrors(t *testing.T) {
	s := newTestServer(t)

	detail := expectToolError(t, s, "symbol_add_template", map[string]interface{}{
		"label":  "  ",
		"points": testutil.Square(),
	})
	if !strings.Contains(detail, "label") {
		t.Errorf("error should mention the label, got %q", detail)
	}

	expectToolError(t, s, "symbol_add_template", map[string]interface{}{"label": "empty"})
}

func TestHandleToolsCall_ListTemplates(t *testing.T) {
	s, _ := gateServer(t)
	mustCall(t, s, "symbol_add_template", map[string]interface{}{
		"label":    "box",
		"class":    "Shape",
		"platform": "ansi",
		"points":   testutil.Square(),
	}, &addResult{})

	var all listTemplatesResult
	mustCall(t, s, "symbol_list_templates", map[string]interface{}{}, &all)
	if all.Count != 4 {
		t.Errorf("count: got %d, want 4", all.Count)
	}
	if len(all.Classes) != 2 || all.Classes[0] != "Gate" || all.Classes[1] != "Shape" {
		t.Errorf("classes: got %v, want [Gate Shape]", all.Classes)
	}
	if all.Templates[0].Label != "AND" {
		t.Errorf("templates should keep insertion order, got %s first", all.Templates[0].Label)
	}

	var gates listTemplatesResult
	mustCall(t, s, "symbol_list_templates", map[string]interface{}{"class": "Gate"}, &gates)
	if gates.Count != 3 {
		t.Errorf("gate count: got %d, want 3", gates.Count)
	}

	var ansi listTemplatesResult
	mustCall(t, s, "symbol_list_templates", map[string]interface{}{"platform": "ansi"}, &ansi)
	if ansi.Count != 1 || ansi.Templates[0].Label != "box" {
		t.Errorf("platform filter: got %+v", ansi.Templates)
	}
}

func TestHandleToolsCall_RemoveTemplate(t *testing.T) {
	s, ids := gateServer(t)
	mustCall(t, s, "symbol_build_tree", map[string]interface{}{}, &buildTreeResult{})

	var removed map[string]interface{}
	mustCall(t, s, "symbol_remove_template", map[string]interface{}{"id": ids["OR"]}, &removed)
	if removed["remaining"] != float64(2) {
		t.Errorf("remaining: got %v, want 2", removed["remaining"])
	}
	if s.currentTree() != nil {
		t.Error("removing a template should drop the tree")
	}

	expectToolError(t, s, "symbol_remove_template", map[string]interface{}{"id": ids["OR"]})
	expectToolError(t, s, "symbol_remove_template", map[string]interface{}{"id": "not-a-uuid"})
}

func TestHandleToolsCall_Recognize(t *testing.T) {
	s, ids := gateServer(t)

	var r recognizeResult
	mustCall(t, s, "symbol_recognize", map[string]interface{}{
		"points": testutil.Transform(testutil.AndGate(), 1.5, 40, -10),
	}, &r)

	if r.Candidates != 3 {
		t.Errorf("candidates: got %d, want 3", r.Candidates)
	}
	if len(r.Results) != 3 {
		t.Fatalf("results: got %d, want 3", len(r.Results))
	}
	if r.Results[0].Label != "AND" || r.Results[0].TemplateID.String() != ids["AND"] {
		t.Errorf("best match: got %s %s, want AND %s", r.Results[0].Label, r.Results[0].TemplateID, ids["AND"])
	}
	for i := 1; i < len(r.Results); i++ {
		if r.Results[i].Score < r.Results[i-1].Score {
			t.Errorf("results not sorted by score at %d", i)
		}
	}

	var top1 recognizeResult
	mustCall(t, s, "symbol_recognize", map[string]interface{}{
		"points": testutil.NotGate(),
		"top_k":  1,
	}, &top1)
	if len(top1.Results) != 1 || top1.Results[0].Label != "NOT" {
		t.Errorf("top_k 1: got %+v", top1.Results)
	}

	var none recognizeResult
	mustCall(t, s, "symbol_recognize", map[string]interface{}{
		"points": testutil.NotGate(),
		"class":  "Label",
	}, &none)
	if none.Candidates != 0 || len(none.Results) != 0 {
		t.Errorf("class filter: got %d candidates, %d results", none.Candidates, len(none.Results))
	}
}

func TestHandleToolsCall_RecognizeInsufficientInk(t *testing.T) {
	s, _ := gateServer(t)

	detail := expectToolError(t, s, "symbol_recognize", map[string]interface{}{
		"points": testutil.Line(0, 0, 10, 10, 5),
	})
	if !strings.Contains(detail, "insufficient") {
		t.Errorf("error should report insufficient ink, got %q", detail)
	}

	detail = expectToolError(t, s, "symbol_recognize", map[string]interface{}{})
	if !strings.Contains(detail, "points or path") {
		t.Errorf("error should ask for ink, got %q", detail)
	}
}

func TestHandleToolsCall_Compare(t *testing.T) {
	s, ids := gateServer(t)

	var self compareResult
	mustCall(t, s, "symbol_compare", map[string]interface{}{
		"template_id": ids["AND"],
		"points":      testutil.AndGate(),
	}, &self)
	if self.Comparison.Polar != 0 || self.Comparison.MeanPixel != 0 {
		t.Errorf("self comparison should be zero, got %+v", self.Comparison)
	}
	if self.Similarity != 1 {
		t.Errorf("self similarity: got %v, want 1", self.Similarity)
	}

	var other compareResult
	mustCall(t, s, "symbol_compare", map[string]interface{}{
		"template_id": ids["AND"],
		"points":      testutil.NotGate(),
	}, &other)
	if other.Similarity >= 1 || other.Similarity <= 0 {
		t.Errorf("other similarity: got %v, want in (0,1)", other.Similarity)
	}

	expectToolError(t, s, "symbol_compare", map[string]interface{}{
		"template_id": "00000000-0000-0000-0000-000000000000",
		"points":      testutil.AndGate(),
	})
}

func TestHandleToolsCall_TreeRecognize(t *testing.T) {
	s, _ := gateServer(t)

	detail := expectToolError(t, s, "symbol_tree_recognize", map[string]interface{}{
		"points": testutil.AndGate(),
	})
	if !strings.Contains(detail, "symbol_build_tree") {
		t.Errorf("error should point at symbol_build_tree, got %q", detail)
	}

	var built buildTreeResult
	mustCall(t, s, "symbol_build_tree", map[string]interface{}{"linkage": "average"}, &built)
	if built.Templates != 3 || built.Nodes != 5 {
		t.Errorf("tree: got %d templates %d nodes, want 3 and 5", built.Templates, built.Nodes)
	}
	if built.Linkage != "average" {
		t.Errorf("linkage: got %s, want average", built.Linkage)
	}

	for _, strategy := range []string{"", "depth_first", "best_first", "n_best"} {
		t.Run(strategy, func(t *testing.T) {
			var r treeRecognizeResult
			mustCall(t, s, "symbol_tree_recognize", map[string]interface{}{
				"points":          testutil.AndGate(),
				"strategy":        strategy,
				"score_threshold": 2,
				"radius_ratio":    1000,
			}, &r)

			if !r.Found || len(r.Results) == 0 {
				t.Fatalf("expected a match, got %+v", r)
			}
			if r.Results[0].Label != "AND" {
				t.Errorf("best: got %s, want AND", r.Results[0].Label)
			}
			if r.Results[0].Score != 1 {
				t.Errorf("score: got %v, want 1", r.Results[0].Score)
			}
			if strategy == "n_best" && len(r.Results) != 3 {
				t.Errorf("n_best results: got %d, want 3", len(r.Results))
			}
		})
	}

	expectToolError(t, s, "symbol_tree_recognize", map[string]interface{}{
		"points":   testutil.AndGate(),
		"strategy": "breadth_first",
	})
}

func TestHandleToolsCall_BuildTreeErrors(t *testing.T) {
	s := newTestServer(t)
	expectToolError(t, s, "symbol_build_tree", map[string]interface{}{})

	s, _ = gateServer(t)
	expectToolError(t, s, "symbol_build_tree", map[string]interface{}{"linkage": "ward"})
}

func TestHandleToolsCall_ImportImage(t *testing.T) {
	s := newTestServer(t)
	path := createInkFile(t, 120, 80,
		image.Rect(10, 10, 60, 14),
		image.Rect(10, 10, 14, 60),
		image.Rect(90, 40, 110, 60),
	)

	var r addResult
	mustCall(t, s, "symbol_import_image", map[string]interface{}{
		"label":  "corner",
		"path":   path,
		"region": map[string]int{"x1": 0, "y1": 0, "x2": 70, "y2": 70},
	}, &r)

	// Two overlapping bars form one component of 50*4 + 4*50 - 16 pixels.
	if r.Points != 384 {
		t.Errorf("points: got %d, want 384", r.Points)
	}

	var rec recognizeResult
	mustCall(t, s, "symbol_recognize", map[string]interface{}{
		"path":   path,
		"region": map[string]int{"x1": 0, "y1": 0, "x2": 70, "y2": 70},
	}, &rec)
	if len(rec.Results) != 1 || rec.Results[0].Label != "corner" || rec.Results[0].Polar != 0 {
		t.Errorf("recognize from image: got %+v", rec.Results)
	}

	expectToolError(t, s, "symbol_import_image", map[string]interface{}{"label": "x", "path": "/nonexistent/ink.png"})
	expectToolError(t, s, "symbol_import_image", map[string]interface{}{"label": "x", "path": path, "threshold": 300})
	expectToolError(t, s, "symbol_import_image", map[string]interface{}{
		"label":  "x",
		"path":   path,
		"region": map[string]int{"x1": 0, "y1": 0, "x2": 500, "y2": 70},
	})
}

func TestHandleToolsCall_RenderRaster(t *testing.T) {
	s, ids := gateServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"template occupancy", map[string]interface{}{"template_id": ids["AND"], "scale": 2}},
		{"template polar field", map[string]interface{}{"template_id": ids["OR"], "grid": "polar", "layer": "field", "scale": 2}},
		{"points", map[string]interface{}{"points": testutil.Circle(), "scale": 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r map[string]interface{}
			mustCall(t, s, "symbol_render_raster", tt.args, &r)

			if r["width"] != float64(raster.GridSize*2) {
				t.Errorf("width: got %v, want %d", r["width"], raster.GridSize*2)
			}
			if r["mime_type"] != "image/png" {
				t.Errorf("mime_type: got %v", r["mime_type"])
			}
			if b64, _ := r["image_base64"].(string); b64 == "" {
				t.Error("image_base64 is empty")
			}
		})
	}

	expectToolError(t, s, "symbol_render_raster", map[string]interface{}{"template_id": ids["AND"], "grid": "hex"})
	expectToolError(t, s, "symbol_render_raster", map[string]interface{}{"template_id": ids["AND"], "layer": "edges"})
}

func TestHandleToolsCall_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "templates.db")

	store, err := library.OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	s := New(config.Default(), nil, store)

	r := addGate(t, s, "AND", testutil.AndGate())
	if !r.Persisted {
		t.Error("template should be persisted")
	}
	or := addGate(t, s, "OR", testutil.OrGate())
	mustCall(t, s, "symbol_remove_template", map[string]interface{}{"id": or.ID}, &map[string]interface{}{})
	store.Close()

	lib, reopened, err := library.Load(ctx, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()

	all := lib.All()
	if len(all) != 1 || all[0].ID.String() != r.ID {
		t.Fatalf("reloaded templates: got %v, want only AND", all)
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := newTestServer(t)
	detail := expectToolError(t, s, "image_crop", map[string]interface{}{})
	if !strings.Contains(detail, "unknown tool") {
		t.Errorf("got %q", detail)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleToolsCall(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`{"name": 5}`),
	})

	if resp.Error == nil {
		t.Fatal("expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}
