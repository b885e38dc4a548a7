package cleanup

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/ironsheep/textclean/internal/detection"
	raster "github.com/ironsheep/textclean/internal/imaging"
	"github.com/ironsheep/textclean/internal/mask"
)

// Crop is one region of a page to clean.
type Crop struct {
	// ID names the crop in results and logs. A random ID is assigned when
	// empty.
	ID string

	// Coords place the crop on its page. Width and Height must match Pixels.
	Coords detection.Coords

	// Pixels is the crop itself. It is never modified.
	Pixels image.Image

	Kind CropKind

	// Page, when set, lets text crops grow by Options.TextPadding.
	Page image.Image
}

// CleanResult is the outcome of cleaning one crop.
type CleanResult struct {
	CropID string

	// Image is the cleaned crop, or the untouched crop when no fill was
	// applied. It is nil only when the input had no pixels.
	Image *image.RGBA

	// MaskImage previews what was painted: the recolored mask for a masked
	// fill, the whole cleaned crop for a solid fill, nil otherwise.
	MaskImage *image.NRGBA

	// Coords locate Image on the page; they differ from the input for
	// extended text crops.
	Coords detection.Coords

	// IsSolidBackground is true only when the whole crop was repainted.
	IsSolidBackground bool
	Fill              FillMode
	FillColor         color.RGBA
	Strategy          mask.Strategy

	Detections detection.FilterResult
	Clusters   detection.ClusterResult
}

// EncodeImage encodes the cleaned crop as PNG.
func (r *CleanResult) EncodeImage() ([]byte, error) {
	if r.Image == nil {
		return nil, errors.New("result has no image")
	}
	return raster.EncodePNG(r.Image)
}

// EncodeMask encodes the mask preview as PNG. It returns nil, nil when no
// mask was painted.
func (r *CleanResult) EncodeMask() ([]byte, error) {
	if r.MaskImage == nil {
		return nil, nil
	}
	return raster.EncodePNG(r.MaskImage)
}

// Options configures a Pipeline.
type Options struct {
	Filter   detection.FilterOptions
	Cluster  detection.ClusterOptions
	Mask     mask.Options
	Binarize raster.BinarizeOptions
	Classify ClassifyOptions

	// Strategy forces a mask strategy. StrategyNone uses the OCR blocks.
	Strategy mask.Strategy

	// TextPadding grows text crops on every side, clamped to the page.
	TextPadding int
}

// DefaultOptions returns the defaults of every stage.
func DefaultOptions() Options {
	return Options{
		Filter:      detection.DefaultFilterOptions(),
		Cluster:     detection.DefaultClusterOptions(),
		Mask:        mask.DefaultOptions(),
		Binarize:    raster.DefaultBinarizeOptions(),
		Classify:    DefaultClassifyOptions(),
		TextPadding: 2,
	}
}

// Pipeline cleans crops. It holds only immutable options and is safe for
// concurrent use on different crops.
type Pipeline struct {
	opts       Options
	classifier *Classifier
	log        *slog.Logger
}

// NewPipeline creates a pipeline.
//
// Parameters:
//   - opts: Thresholds of every stage; start from DefaultOptions.
//   - log: Receives per-crop debug decisions and warn-level fallbacks. A nil
//     logger uses slog.Default().
func NewPipeline(opts Options, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		opts:       opts,
		classifier: NewClassifier(opts.Classify),
		log:        log,
	}
}

// Options returns the pipeline's options.
func (p *Pipeline) Options() Options {
	return p.opts
}

// workspace is the per-call state of one crop.
type workspace struct {
	id     string
	kind   CropKind
	coords detection.Coords
	buf    *image.RGBA

	// offset moves crop coordinates into buf coordinates.
	offset image.Point
	crop   detection.Coords
}

// MaskResult is the outcome of Mask.
type MaskResult struct {
	CropID     string
	Mask       *mask.Mask
	Coords     detection.Coords
	Detections detection.FilterResult
	Clusters   detection.ClusterResult
}

// Mask runs the pipeline up to the text mask without painting anything.
func (p *Pipeline) Mask(crop Crop, dets []detection.Detection) (*MaskResult, error) {
	ws, err := p.prepare(crop)
	if err != nil {
		return &MaskResult{CropID: ws.id, Coords: ws.coords}, err
	}
	res := &MaskResult{CropID: ws.id, Coords: ws.coords}
	res.Mask, res.Detections, res.Clusters, err = p.buildMask(ws, dets)
	return res, err
}

// Clean removes the text from one crop.
//
// It always returns a usable result. The error, if any, is a *CleanError
// describing why the crop was left (partly) untouched; it concerns this
// crop only.
func (p *Pipeline) Clean(crop Crop, dets []detection.Detection) (*CleanResult, error) {
	ws, err := p.prepare(crop)
	result := &CleanResult{
		CropID: ws.id,
		Image:  ws.buf,
		Coords: ws.coords,
	}
	if err != nil {
		return result, err
	}

	m, filtered, clusters, maskErr := p.buildMask(ws, dets)
	result.Detections = filtered
	result.Clusters = clusters

	var alpha *image.Alpha
	if m != nil {
		alpha = m.Alpha
		result.Strategy = m.Strategy
	}

	// Bubbles need a mask. Text crops may still be flat enough to fill whole.
	if maskErr != nil && ws.kind != KindText {
		return result, maskErr
	}

	d := p.classifier.Classify(ws.buf, alpha, ws.kind)
	result.IsSolidBackground = d.IsSolidBackground
	p.log.Debug("classified crop",
		"crop", ws.id,
		"fill", d.Fill,
		"coverage", d.Coverage,
		"unique_colors", d.UniqueColors)

	switch d.Fill {
	case FillMasked:
		preview, err := CompositeMasked(ws.buf, alpha, d.Color)
		if err != nil {
			p.log.Warn("compositing failed", "crop", ws.id, "error", err)
			return result, newCompositingError(ws.id, err)
		}
		result.MaskImage = preview
	case FillSolid:
		if err := CompositeSolid(ws.buf, d.Color); err != nil {
			p.log.Warn("compositing failed", "crop", ws.id, "error", err)
			return result, newCompositingError(ws.id, err)
		}
		result.MaskImage = imaging.Clone(ws.buf)
	default:
		return result, maskErr
	}

	result.Fill = d.Fill
	result.FillColor = d.Color
	return result, nil
}

// prepare validates the crop and builds its working buffer.
func (p *Pipeline) prepare(crop Crop) (*workspace, error) {
	ws := &workspace{
		id:     crop.ID,
		kind:   crop.Kind,
		coords: crop.Coords,
		crop:   crop.Coords,
	}
	if ws.id == "" {
		ws.id = uuid.NewString()
	}

	if crop.Pixels == nil {
		return ws, newInvalidCropError(ws.id, "missing pixel buffer")
	}
	b := crop.Pixels.Bounds()
	if b.Empty() {
		return ws, newInvalidCropError(ws.id, "zero-size pixel buffer")
	}
	ws.buf = raster.WorkingCopy(crop.Pixels)
	if b.Dx() != crop.Coords.Width || b.Dy() != crop.Coords.Height {
		return ws, newInvalidCropError(ws.id,
			fmt.Sprintf("coords are %dx%d but pixels are %dx%d",
				crop.Coords.Width, crop.Coords.Height, b.Dx(), b.Dy()))
	}

	if crop.Kind == KindText && crop.Page != nil && p.opts.TextPadding > 0 {
		r := crop.Coords.Rect()
		ext := raster.ExtendRegion(r, p.opts.TextPadding, crop.Page.Bounds())
		buf, err := raster.CropRegion(crop.Page, ext)
		if err != nil {
			p.log.Warn("cannot extend text crop", "crop", ws.id, "error", err)
			return ws, nil
		}
		ws.buf = buf
		ws.coords = detection.CoordsFromRect(ext)
		ws.offset = r.Min.Sub(ext.Min)
		p.log.Debug("extended text crop", "crop", ws.id, "from", r, "to", ext)
	}
	return ws, nil
}

// buildMask filters and clusters detections, or locates ink for the
// polygon strategy, and builds the mask over the working buffer.
func (p *Pipeline) buildMask(ws *workspace, dets []detection.Detection) (*mask.Mask, detection.FilterResult, detection.ClusterResult, error) {
	var (
		filtered detection.FilterResult
		clusters detection.ClusterResult
	)
	w, h := ws.buf.Rect.Dx(), ws.buf.Rect.Dy()

	if p.opts.Strategy == mask.StrategyPolygon {
		loc := raster.LocateText(ws.buf, p.opts.Binarize)
		if !loc.Found {
			return nil, filtered, clusters, newNoValidClustersError(ws.id, 0, mask.ErrEmptyMask)
		}
		m, err := mask.Build(mask.Source{Binarized: loc.Binarized, Rect: loc.Bounds}, w, h, p.opts.Mask)
		if err != nil {
			return nil, filtered, clusters, newNoValidClustersError(ws.id, 0, err)
		}
		p.log.Debug("built polygon mask", "crop", ws.id, "bounds", loc.Bounds, "covered", m.Covered())
		return m, filtered, clusters, nil
	}

	filtered = detection.Filter(dets, p.opts.Filter)
	p.log.Debug("filtered detections",
		"crop", ws.id,
		"kept", len(filtered.Kept),
		"rejected", len(filtered.Rejected))
	if len(filtered.Kept) == 0 {
		return nil, filtered, clusters, newNoDetectionsError(ws.id, len(dets))
	}

	clusters = detection.ClusterDetections(filtered.Kept, ws.crop.Width, ws.crop.Height, p.opts.Cluster)
	p.log.Debug("clustered detections",
		"crop", ws.id,
		"accepted", len(clusters.Accepted),
		"rejected", len(clusters.Rejected))
	if len(clusters.Accepted) == 0 {
		return nil, filtered, clusters, newNoValidClustersError(ws.id, len(clusters.Rejected), nil)
	}

	m, err := mask.Build(mask.Source{Clusters: clusters.Accepted, Offset: ws.offset}, w, h, p.opts.Mask)
	if err != nil {
		return nil, filtered, clusters, newNoValidClustersError(ws.id, len(clusters.Rejected), err)
	}
	return m, filtered, clusters, nil
}
