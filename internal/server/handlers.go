package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/symbol-tools-mcp/internal/cluster"
	"github.com/ironsheep/symbol-tools-mcp/internal/imaging"
	"github.com/ironsheep/symbol-tools-mcp/internal/match"
	"github.com/ironsheep/symbol-tools-mcp/internal/raster"
	"github.com/ironsheep/symbol-tools-mcp/internal/symbol"
)

var (
	errNoInkSource = errors.New("either points or path is required")
	errNoTree      = errors.New("no cluster tree built; call symbol_build_tree first")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "symbol_recognize").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if s.settings.Debug() {
			log.Printf("tool %s failed: %v", params.Name, err)
		}
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Template Library
	case "symbol_add_template":
		return s.handleAddTemplate(ctx, args)
	case "symbol_import_image":
		return s.handleImportImage(ctx, args)
	case "symbol_list_templates":
		return s.handleListTemplates(args)
	case "symbol_remove_template":
		return s.handleRemoveTemplate(ctx, args)

	// Recognition
	case "symbol_recognize":
		return s.handleRecognize(args)
	case "symbol_compare":
		return s.handleCompare(args)

	// Cluster Tree
	case "symbol_build_tree":
		return s.handleBuildTree(ctx, args)
	case "symbol_tree_recognize":
		return s.handleTreeRecognize(args)

	// Inspection
	case "symbol_render_raster":
		return s.handleRenderRaster(args)

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
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared Arguments ===

type regionArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// inkArgs names an unknown shape by its points or by an image file.
type inkArgs struct {
	Points    []raster.Point `json:"points"`
	Path      string         `json:"path"`
	Threshold *int           `json:"threshold"`
	Region    *regionArgs    `json:"region"`
}

// ink returns the points, reading them from the image when none were given.
func (a inkArgs) ink() ([]raster.Point, error) {
	if len(a.Points) > 0 {
		return a.Points, nil
	}
	if a.Path == "" {
		return nil, errNoInkSource
	}

	threshold := imaging.DefaultThreshold
	if a.Threshold != nil {
		if *a.Threshold < 0 || *a.Threshold > 255 {
			return nil, fmt.Errorf("threshold %d outside 0-255", *a.Threshold)
		}
		threshold = *a.Threshold
	}

	img, err := imaging.Open(a.Path)
	if err != nil {
		return nil, err
	}
	if r := a.Region; r != nil {
		img, err = imaging.Crop(img, image.Rect(r.X1, r.Y1, r.X2, r.Y2))
		if err != nil {
			return nil, err
		}
	}
	return imaging.ExtractInk(img, uint8(threshold))
}

// unknownTemplate wraps the ink in a template so it can be compared with
// library entries. Too little ink is rejected the same way FindBestMatches
// rejects it.
func (a inkArgs) unknownTemplate() (*symbol.Template, error) {
	pts, err := a.ink()
	if err != nil {
		return nil, err
	}
	if len(pts) <= match.MinInkPoints {
		return nil, &match.InsufficientDataError{Points: len(pts)}
	}
	return symbol.New(symbol.Info{Label: "unknown"}, pts)
}

type templateInfoArgs struct {
	Label    string `json:"label"`
	Class    string `json:"class"`
	Platform string `json:"platform"`
	Author   string `json:"author"`
}

func (a templateInfoArgs) info() symbol.Info {
	return symbol.Info{Label: a.Label, Class: a.Class, Platform: a.Platform, Author: a.Author}
}

// templateSummary is the listing form of a template.
type templateSummary struct {
	ID       uuid.UUID `json:"id"`
	Label    string    `json:"label"`
	Class    string    `json:"class,omitempty"`
	Platform string    `json:"platform,omitempty"`
	Author   string    `json:"author,omitempty"`
	Points   int       `json:"points"`
}

func summarize(t *symbol.Template) templateSummary {
	return templateSummary{
		ID:       t.ID,
		Label:    t.Label,
		Class:    t.Class,
		Platform: t.Platform,
		Author:   t.Author,
		Points:   len(t.Points),
	}
}

func (s *Server) lookupTemplate(id string) (*symbol.Template, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid template id %q: %w", id, err)
	}
	return s.library.Get(uid)
}

// === Template Library Handlers ===

type addTemplateArgs struct {
	templateInfoArgs
	Points []raster.Point `json:"points"`
}

type addTemplateResult struct {
	templateSummary
	ScreenCells int  `json:"screen_cells"`
	PolarCells  int  `json:"polar_cells"`
	Persisted   bool `json:"persisted"`
}

func (s *Server) handleAddTemplate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a addTemplateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	t, err := symbol.New(a.info(), a.Points)
	if err != nil {
		return nil, err
	}
	return s.addTemplate(ctx, t)
}

type importImageArgs struct {
	templateInfoArgs
	inkArgs
}

func (s *Server) handleImportImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a importImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	pts, err := a.ink()
	if err != nil {
		return nil, err
	}
	t, err := symbol.New(a.info(), pts)
	if err != nil {
		return nil, err
	}
	return s.addTemplate(ctx, t)
}

// addTemplate persists t when a store is configured, then adds it to the
// library.
func (s *Server) addTemplate(ctx context.Context, t *symbol.Template) (*addTemplateResult, error) {
	if s.store != nil {
		if err := s.store.Save(ctx, t); err != nil {
			return nil, err
		}
	}
	if err := s.library.Add(t); err != nil {
		return nil, err
	}
	s.invalidateTree()

	if s.settings.Debug() {
		log.Printf("added template %s %s (%d points)", t.ID, t, len(t.Points))
	}

	r := t.Raster()
	return &addTemplateResult{
		templateSummary: summarize(t),
		ScreenCells:     len(r.ScreenCells),
		PolarCells:      len(r.PolarCells),
		Persisted:       s.store != nil,
	}, nil
}

type listTemplatesArgs struct {
	Class    string `json:"class"`
	Platform string `json:"platform"`
}

type listTemplatesResult struct {
	Count     int               `json:"count"`
	Classes   []string          `json:"classes"`
	Templates []templateSummary `json:"templates"`
}

func (s *Server) handleListTemplates(args json.RawMessage) (interface{}, error) {
	var a listTemplatesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	templates := s.library.Filter(a.Class, a.Platform)
	result := &listTemplatesResult{
		Count:     len(templates),
		Classes:   s.library.Classes(),
		Templates: make([]templateSummary, len(templates)),
	}
	for i, t := range templates {
		result.Templates[i] = summarize(t)
	}
	return result, nil
}

type removeTemplateArgs struct {
	ID string `json:"id"`
}

func (s *Server) handleRemoveTemplate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a removeTemplateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	t, err := s.lookupTemplate(a.ID)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Delete(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	if err := s.library.Remove(t.ID); err != nil {
		return nil, err
	}
	s.invalidateTree()

	return map[string]interface{}{
		"removed":   summarize(t),
		"remaining": s.library.Len(),
	}, nil
}

// === Recognition Handlers ===

type recognizeArgs struct {
	inkArgs
	Class           string   `json:"class"`
	Platform        string   `json:"platform"`
	TopK            *int     `json:"top_k"`
	AllowedRotation *float64 `json:"allowed_rotation"`
}

type recognizeResult struct {
	Candidates int            `json:"candidates"`
	Results    []match.Result `json:"results"`
}

func (s *Server) handleRecognize(args json.RawMessage) (interface{}, error) {
	var a recognizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	pts, err := a.ink()
	if err != nil {
		return nil, err
	}

	opts := s.settings.MatchOptions()
	if a.TopK != nil {
		opts.TopK = *a.TopK
	}
	if a.AllowedRotation != nil {
		opts.AllowedRotation = *a.AllowedRotation
	}
	opts = opts.ForClass(a.Class, s.settings.UprightClasses)

	candidates := s.library.Filter(a.Class, a.Platform)
	results, err := match.FindBestMatches(pts, candidates, opts)
	if err != nil {
		return nil, err
	}
	return &recognizeResult{Candidates: len(candidates), Results: results}, nil
}

type compareArgs struct {
	inkArgs
	TemplateID      string   `json:"template_id"`
	AllowedRotation *float64 `json:"allowed_rotation"`
}

type compareResult struct {
	Template   templateSummary  `json:"template"`
	Comparison match.Comparison `json:"comparison"`
	Similarity float64          `json:"similarity"`
}

func (s *Server) handleCompare(args json.RawMessage) (interface{}, error) {
	var a compareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	t, err := s.lookupTemplate(a.TemplateID)
	if err != nil {
		return nil, err
	}
	unknown, err := a.unknownTemplate()
	if err != nil {
		return nil, err
	}

	opts := s.settings.MatchOptions().ForClass(t.Class, s.settings.UprightClasses)
	if a.AllowedRotation != nil {
		opts.AllowedRotation = *a.AllowedRotation
	}

	return &compareResult{
		Template:   summarize(t),
		Comparison: match.Compare(t, unknown.Points, opts),
		Similarity: match.NewComparator().Similarity(t, unknown),
	}, nil
}

// === Cluster Tree Handlers ===

type buildTreeArgs struct {
	Class    string `json:"class"`
	Platform string `json:"platform"`
	Linkage  string `json:"linkage"`
}

type buildTreeResult struct {
	Templates  int    `json:"templates"`
	Nodes      int    `json:"nodes"`
	Depth      int    `json:"depth"`
	Linkage    string `json:"linkage"`
	Class      string `json:"class,omitempty"`
	Platform   string `json:"platform,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

func (s *Server) handleBuildTree(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a buildTreeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := s.settings.BuildOptions()
	if a.Linkage != "" {
		linkage, err := cluster.ParseLinkage(a.Linkage)
		if err != nil {
			return nil, err
		}
		opts.Linkage = linkage
	}

	templates := s.library.Filter(a.Class, a.Platform)
	start := time.Now()
	tree, err := cluster.BuildTree(ctx, templates, match.NewComparator(), opts)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	s.setTree(tree)
	if s.settings.Debug() {
		log.Printf("built %s tree over %d templates in %v", opts.Linkage, len(templates), elapsed)
	}

	return &buildTreeResult{
		Templates:  len(templates),
		Nodes:      tree.Len(),
		Depth:      tree.Depth(),
		Linkage:    tree.Linkage().String(),
		Class:      a.Class,
		Platform:   a.Platform,
		DurationMs: elapsed.Milliseconds(),
	}, nil
}

type treeRecognizeArgs struct {
	inkArgs
	Strategy       string   `json:"strategy"`
	N              *int     `json:"n"`
	StartDepth     *int     `json:"start_depth"`
	MaxDepth       *int     `json:"max_depth"`
	ScoreThreshold *float64 `json:"score_threshold"`
	RadiusRatio    *float64 `json:"radius_ratio"`
}

// treeMatch is one template found by a tree search.
type treeMatch struct {
	templateSummary
	Score float64 `json:"score"`
}

type treeRecognizeResult struct {
	Strategy string      `json:"strategy"`
	Found    bool        `json:"found"`
	Compared int         `json:"compared,omitempty"`
	Results  []treeMatch `json:"results"`
}

func (s *Server) handleTreeRecognize(args json.RawMessage) (interface{}, error) {
	var a treeRecognizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	tree := s.currentTree()
	if tree == nil {
		return nil, errNoTree
	}
	unknown, err := a.unknownTemplate()
	if err != nil {
		return nil, err
	}

	opts := s.settings.SearchOptions()
	if a.MaxDepth != nil {
		opts.MaxDepth = *a.MaxDepth
	}
	if a.ScoreThreshold != nil {
		opts.ScoreThreshold = *a.ScoreThreshold
	}
	if a.RadiusRatio != nil {
		opts.RadiusRatio = *a.RadiusRatio
	}

	result := &treeRecognizeResult{Strategy: a.Strategy, Results: []treeMatch{}}
	switch a.Strategy {
	case "", "depth_first":
		result.Strategy = "depth_first"
		result.add(tree.Recognize(unknown, opts))
	case "best_first":
		depth := s.settings.StartDepth
		if a.StartDepth != nil {
			depth = *a.StartDepth
		}
		result.add(tree.RecognizeBestFirst(tree.NodesAtDepth(depth), unknown, opts))
	case "n_best":
		n := 3
		if a.N != nil {
			n = *a.N
		}
		for _, r := range tree.RecognizeNBest(unknown, n, opts) {
			result.Results = append(result.Results, treeMatch{templateSummary: summarize(r.Item), Score: r.Score})
		}
		result.Found = len(result.Results) > 0
	default:
		return nil, fmt.Errorf("unknown strategy: %s", a.Strategy)
	}
	return result, nil
}

func (r *treeRecognizeResult) add(m cluster.Match[*symbol.Template]) {
	r.Compared = m.Compared
	if !m.Found() {
		return
	}
	r.Found = true
	r.Results = append(r.Results, treeMatch{templateSummary: summarize(m.Item), Score: m.Score})
}

// === Inspection Handlers ===

type renderRasterArgs struct {
	inkArgs
	TemplateID string `json:"template_id"`
	Grid       string `json:"grid"`
	Layer      string `json:"layer"`
	Scale      int    `json:"scale"`
}

func (s *Server) handleRenderRaster(args json.RawMessage) (interface{}, error) {
	var a renderRasterArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var r *raster.Raster
	if a.TemplateID != "" {
		t, err := s.lookupTemplate(a.TemplateID)
		if err != nil {
			return nil, err
		}
		r = t.Raster()
	} else {
		pts, err := a.ink()
		if err != nil {
			return nil, err
		}
		r = raster.Rasterize(pts)
	}

	var (
		grid  *raster.Grid
		field *raster.Field
	)
	switch a.Grid {
	case "", "screen":
		grid, field = &r.Screen, &r.ScreenField
	case "polar":
		grid, field = &r.Polar, &r.PolarField
	default:
		return nil, fmt.Errorf("unknown grid: %s", a.Grid)
	}

	switch a.Layer {
	case "", "occupancy":
		return imaging.RenderOccupancy(grid, a.Scale)
	case "field":
		return imaging.RenderField(field, a.Scale)
	default:
		return nil, fmt.Errorf("unknown layer: %s", a.Layer)
	}
}
