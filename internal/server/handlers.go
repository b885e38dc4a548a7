package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/textclean/internal/cleanup"
	"github.com/ironsheep/textclean/internal/detection"
	"github.com/ironsheep/textclean/internal/imaging"
	"github.com/ironsheep/textclean/internal/mask"
	"github.com/ironsheep/textclean/internal/ocr"
	"github.com/ironsheep/textclean/internal/page"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "text_clean", "page_clean").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token of long-running calls.
	Meta *struct {
		ProgressToken interface{} `json:"progressToken,omitempty"`
	} `json:"_meta,omitempty"`
}

type progressTokenKey struct{}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// Per-crop cleanup failures are not tool errors; they are reported in the
// result's "error" field.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if params.Meta != nil && params.Meta.ProgressToken != nil {
		ctx = context.WithValue(ctx, progressTokenKey{}, params.Meta.ProgressToken)
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.log.Debug("tool finished", "tool", params.Name, "elapsed", time.Since(start))

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
//  3. Loads the page from cache and crops the requested region
//  4. Calls the cleanup pipeline, OCR engine or analysis function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Page Information
	case "image_load":
		return s.handleImageLoad(args)
	case "ocr_status":
		return s.engine.Info(), nil

	// Detection
	case "text_detect":
		return s.handleTextDetect(ctx, args)

	// Cleanup
	case "text_mask":
		return s.handleTextMask(ctx, args)
	case "text_clean":
		return s.handleTextClean(ctx, args)
	case "page_clean":
		return s.handlePageClean(ctx, args)

	// Analysis Helpers
	case "color_analyze":
		return s.handleColorAnalyze(args)
	case "background_analyze":
		return s.handleBackgroundAnalyze(args)

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

// errorDetails converts a per-crop error to its JSON form.
func errorDetails(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var ce *cleanup.CleanError
	if errors.As(err, &ce) {
		return ce.ToMap()
	}
	return map[string]interface{}{"message": err.Error()}
}

// === Shared Helpers ===

// cropArgs selects a region of a page. A missing or empty region selects
// the whole page.
type cropArgs struct {
	Path   string            `json:"path"`
	Region *detection.Coords `json:"region,omitempty"`
}

// loadRegion loads the page and crops the region. Pixels is nil when the
// region does not fit the page.
func (s *Server) loadRegion(a cropArgs) (pg image.Image, coords detection.Coords, pixels image.Image, err error) {
	if a.Path == "" {
		return nil, coords, nil, errors.New("path is required")
	}
	pg, err = s.cache.Load(a.Path)
	if err != nil {
		return nil, coords, nil, err
	}

	coords = detection.CoordsFromRect(pg.Bounds())
	if a.Region != nil && a.Region.Width != 0 && a.Region.Height != 0 {
		coords = *a.Region
	}

	if px, cropErr := imaging.CropRegion(pg, coords.Rect()); cropErr == nil {
		pixels = px
	} else {
		s.log.Debug("region does not fit page", "path", a.Path, "region", coords, "error", cropErr)
	}
	return pg, coords, pixels, nil
}

// pipelineFor returns the server pipeline, or a copy forced to strategy.
func (s *Server) pipelineFor(strategy string) (*cleanup.Pipeline, error) {
	if strategy == "" {
		return s.pipeline, nil
	}
	st, err := mask.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	opts := s.pipeline.Options()
	if st == opts.Strategy {
		return s.pipeline, nil
	}
	opts.Strategy = st
	return cleanup.NewPipeline(opts, s.log), nil
}

// detectionsFor returns the caller's detections, or runs OCR on pixels when
// none were given and the pipeline needs them.
func (s *Server) detectionsFor(ctx context.Context, p *cleanup.Pipeline, pixels image.Image, given []detection.Detection) ([]detection.Detection, error) {
	if given != nil || pixels == nil || p.Options().Strategy == mask.StrategyPolygon {
		return given, nil
	}
	dets, err := s.engine.Recognize(ctx, pixels)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	return dets, nil
}

// === Page Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Detection Handlers ===

type textDetectArgs struct {
	cropArgs
	Language string `json:"language"`
}

type textDetectResult struct {
	Coords     detection.Coords       `json:"coords"`
	Count      int                    `json:"count"`
	Detections []detection.Detection  `json:"detections"`
	Filtered   detection.FilterResult `json:"filtered"`
}

func (s *Server) handleTextDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a textDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	_, coords, pixels, err := s.loadRegion(a.cropArgs)
	if err != nil {
		return nil, err
	}
	if pixels == nil {
		return nil, fmt.Errorf("region %+v outside image", coords)
	}

	engine := s.engine
	if a.Language != "" && a.Language != engine.Options().Language {
		opts := engine.Options()
		opts.Language = a.Language
		engine = ocr.NewEngine(opts)
	}

	dets, err := engine.Recognize(ctx, pixels)
	if err != nil {
		return nil, err
	}
	if dets == nil {
		dets = []detection.Detection{}
	}
	return &textDetectResult{
		Coords:     coords,
		Count:      len(dets),
		Detections: dets,
		Filtered:   detection.Filter(dets, s.pipeline.Options().Filter),
	}, nil
}

// === Cleanup Handlers ===

type textCropArgs struct {
	cropArgs
	CropID     string                `json:"crop_id"`
	Kind       cleanup.CropKind      `json:"kind"`
	Strategy   string                `json:"strategy"`
	Detections []detection.Detection `json:"detections"`
}

// crop builds the pipeline input for the arguments and picks the pipeline
// and detections to use.
func (s *Server) crop(ctx context.Context, a textCropArgs) (cleanup.Crop, *cleanup.Pipeline, []detection.Detection, error) {
	p, err := s.pipelineFor(a.Strategy)
	if err != nil {
		return cleanup.Crop{}, nil, nil, err
	}
	pg, coords, pixels, err := s.loadRegion(a.cropArgs)
	if err != nil {
		return cleanup.Crop{}, nil, nil, err
	}
	dets, err := s.detectionsFor(ctx, p, pixels, a.Detections)
	if err != nil {
		return cleanup.Crop{}, nil, nil, err
	}

	c := cleanup.Crop{
		ID:     a.CropID,
		Coords: coords,
		Pixels: pixels,
		Kind:   a.Kind,
		Page:   pg,
	}
	return c, p, dets, nil
}

type textMaskArgs struct {
	textCropArgs
	OutputPath string `json:"output_path"`
}

type textMaskResult struct {
	CropID        string                  `json:"crop_id"`
	Coords        detection.Coords        `json:"coords"`
	Strategy      mask.Strategy           `json:"strategy"`
	CoveredPixels int                     `json:"covered_pixels"`
	Mask          *imaging.EncodedImage   `json:"mask,omitempty"`
	OutputPath    string                  `json:"output_path,omitempty"`
	Detections    detection.FilterResult  `json:"detections"`
	Clusters      detection.ClusterResult `json:"clusters"`
	Error         map[string]interface{}  `json:"error,omitempty"`
}

func (s *Server) handleTextMask(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a textMaskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c, p, dets, err := s.crop(ctx, a.textCropArgs)
	if err != nil {
		return nil, err
	}

	res, maskErr := p.Mask(c, dets)
	out := &textMaskResult{
		CropID:     res.CropID,
		Coords:     res.Coords,
		Detections: res.Detections,
		Clusters:   res.Clusters,
		Error:      errorDetails(maskErr),
	}
	if res.Mask == nil {
		return out, nil
	}

	out.Strategy = res.Mask.Strategy
	out.CoveredPixels = res.Mask.Covered()
	img := res.Mask.Image()
	if a.OutputPath != "" {
		if err := imaging.Save(a.OutputPath, img); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
		return out, nil
	}
	if out.Mask, err = imaging.EncodeBase64(img); err != nil {
		return nil, err
	}
	return out, nil
}

type textCleanArgs struct {
	textCropArgs
	OutputPath     string `json:"output_path"`
	MaskOutputPath string `json:"mask_output_path"`
}

type textCleanResult struct {
	CropID            string                  `json:"crop_id"`
	Coords            detection.Coords        `json:"coords"`
	Fill              cleanup.FillMode        `json:"fill"`
	FillColor         *imaging.ColorResult    `json:"fill_color,omitempty"`
	IsSolidBackground bool                    `json:"is_solid_background"`
	Strategy          mask.Strategy           `json:"strategy"`
	Image             *imaging.EncodedImage   `json:"image,omitempty"`
	Mask              *imaging.EncodedImage   `json:"mask,omitempty"`
	OutputPath        string                  `json:"output_path,omitempty"`
	MaskOutputPath    string                  `json:"mask_output_path,omitempty"`
	Detections        detection.FilterResult  `json:"detections"`
	Clusters          detection.ClusterResult `json:"clusters"`
	Error             map[string]interface{}  `json:"error,omitempty"`
}

func (s *Server) handleTextClean(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a textCleanArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c, p, dets, err := s.crop(ctx, a.textCropArgs)
	if err != nil {
		return nil, err
	}

	res, cleanErr := p.Clean(c, dets)
	out := &textCleanResult{
		CropID:            res.CropID,
		Coords:            res.Coords,
		Fill:              res.Fill,
		IsSolidBackground: res.IsSolidBackground,
		Strategy:          res.Strategy,
		Detections:        res.Detections,
		Clusters:          res.Clusters,
		Error:             errorDetails(cleanErr),
	}
	if res.Fill != cleanup.FillNone {
		fc := imaging.DescribeColor(res.FillColor)
		out.FillColor = &fc
	}

	if res.Image != nil {
		if a.OutputPath != "" {
			if err := imaging.Save(a.OutputPath, res.Image); err != nil {
				return nil, err
			}
			out.OutputPath = a.OutputPath
		} else if out.Image, err = imaging.EncodeBase64(res.Image); err != nil {
			return nil, err
		}
	}

	if res.MaskImage != nil {
		if a.MaskOutputPath != "" {
			if err := imaging.Save(a.MaskOutputPath, res.MaskImage); err != nil {
				return nil, err
			}
			out.MaskOutputPath = a.MaskOutputPath
		} else if out.Mask, err = imaging.EncodeBase64(res.MaskImage); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type pageCleanArgs struct {
	Path         string        `json:"path"`
	Regions      []page.Region `json:"regions"`
	Strategy     string        `json:"strategy"`
	OutputPath   string        `json:"output_path"`
	IncludeImage bool          `json:"include_image"`
}

type pageCropResult struct {
	CropID string                 `json:"crop_id"`
	Coords detection.Coords       `json:"coords"`
	Fill   cleanup.FillMode       `json:"fill"`
	Error  map[string]interface{} `json:"error,omitempty"`
}

type pageCleanResult struct {
	Summary    page.Summary          `json:"summary"`
	Crops      []pageCropResult      `json:"crops"`
	Dropped    []detection.Coords    `json:"dropped,omitempty"`
	OutputPath string                `json:"output_path,omitempty"`
	Image      *imaging.EncodedImage `json:"image,omitempty"`
}

func (s *Server) handlePageClean(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pageCleanArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if len(a.Regions) == 0 {
		return nil, errors.New("at least one region is required")
	}
	pg, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	cleaner := s.pages
	if a.Strategy != "" {
		p, err := s.pipelineFor(a.Strategy)
		if err != nil {
			return nil, err
		}
		cleaner = page.NewCleaner(p, s.engine, s.log)
	}

	var progress ocr.Progress
	stop := s.reportProgress(ctx, &progress)
	res, err := cleaner.Clean(ctx, pg, a.Regions, &progress)
	stop()
	if err != nil {
		return nil, err
	}

	out := &pageCleanResult{
		Summary: res.Summarize(),
		Crops:   make([]pageCropResult, len(res.Crops)),
		Dropped: res.Dropped,
	}
	for i, cr := range res.Crops {
		out.Crops[i] = pageCropResult{
			CropID: cr.CropID,
			Coords: cr.Coords,
			Fill:   cr.Fill,
			Error:  errorDetails(res.Errors[i]),
		}
	}
	s.log.Info("cleaned page", "path", a.Path, "summary", out.Summary.String())

	if a.OutputPath != "" {
		if err := imaging.Save(a.OutputPath, res.Page); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
	}
	if a.IncludeImage || a.OutputPath == "" {
		if out.Image, err = imaging.EncodeBase64(res.Page); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// reportProgress sends notifications/progress for the call's progress
// token until the returned stop function is called. Without a token it does
// nothing.
func (s *Server) reportProgress(ctx context.Context, p *ocr.Progress) (stop func()) {
	token := ctx.Value(progressTokenKey{})
	if token == nil {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, total := p.Snapshot()
				if total == 0 {
					continue
				}
				s.notify("notifications/progress", map[string]interface{}{
					"progressToken": token,
					"progress":      n,
					"total":         total,
				})
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

// === Analysis Helper Handlers ===

type colorAnalyzeArgs struct {
	cropArgs
	Count int `json:"count"`
}

type colorEntry struct {
	imaging.ColorResult
	Count      int     `json:"count,omitempty"`
	Percentage float64 `json:"percentage"`
}

type colorAnalyzeResult struct {
	Coords   detection.Coords `json:"coords"`
	Dominant colorEntry       `json:"dominant"`

	// Buckets counts the approximate color groups behind Dominant.
	Buckets      int          `json:"buckets"`
	Colors       []colorEntry `json:"colors"`
	UniqueColors int          `json:"unique_colors"`
	TotalPixels  int          `json:"total_pixels"`

	// IsFlat reports whether a text crop this flat would be filled whole.
	IsFlat bool `json:"is_flat"`
}

func (s *Server) handleColorAnalyze(args json.RawMessage) (interface{}, error) {
	var a colorAnalyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Count <= 0 {
		a.Count = 5
	}
	_, coords, pixels, err := s.loadRegion(a.cropArgs)
	if err != nil {
		return nil, err
	}
	if pixels == nil {
		return nil, fmt.Errorf("region %+v outside image", coords)
	}
	buf := imaging.WorkingCopy(pixels)

	dom := imaging.DominantColor(buf, nil)
	hist := imaging.AnalyzeMaskedColors(buf, nil)
	out := &colorAnalyzeResult{
		Coords: coords,
		Dominant: colorEntry{
			ColorResult: imaging.DescribeColor(dom.Color),
			Percentage:  dom.Percentage,
		},
		Buckets:      dom.UniqueColors,
		UniqueColors: hist.UniqueColors,
		TotalPixels:  hist.TotalPixels,
		IsFlat:       s.classifier.Coarse(buf, nil).IsSolidBackground,
	}

	n := a.Count
	if n > len(hist.Colors) {
		n = len(hist.Colors)
	}
	out.Colors = make([]colorEntry, n)
	for i, c := range hist.Colors[:n] {
		out.Colors[i] = colorEntry{
			ColorResult: imaging.DescribeColor(c.Color),
			Count:       c.Count,
			Percentage:  float64(c.Count) / float64(hist.TotalPixels) * 100,
		}
	}
	return out, nil
}

type backgroundAnalyzeResult struct {
	Coords             detection.Coords    `json:"coords"`
	Threshold          uint8               `json:"threshold"`
	DarkBackground     bool                `json:"dark_background"`
	Background         imaging.ColorResult `json:"background"`
	BackgroundPosition image.Point         `json:"background_position"`
	Text               imaging.ColorResult `json:"text"`
	TextPosition       image.Point         `json:"text_position"`
	TextFound          bool                `json:"text_found"`
	TextBounds         *detection.BBox     `json:"text_bounds,omitempty"`
}

func (s *Server) handleBackgroundAnalyze(args json.RawMessage) (interface{}, error) {
	var a cropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	_, coords, pixels, err := s.loadRegion(a)
	if err != nil {
		return nil, err
	}
	if pixels == nil {
		return nil, fmt.Errorf("region %+v outside image", coords)
	}

	loc := imaging.LocateText(imaging.WorkingCopy(pixels), s.pipeline.Options().Binarize)
	out := &backgroundAnalyzeResult{
		Coords:             coords,
		Threshold:          loc.Analysis.Threshold,
		DarkBackground:     loc.Analysis.DarkBackground,
		Background:         imaging.DescribeColor(loc.Analysis.Background),
		BackgroundPosition: loc.Analysis.BackgroundPosition,
		Text:               imaging.DescribeColor(loc.Analysis.Text),
		TextPosition:       loc.Analysis.TextPosition,
		TextFound:          loc.Found,
	}
	if loc.Found {
		b := detection.BBoxFromRect(loc.Bounds)
		out.TextBounds = &b
	}
	return out, nil
}
