package page

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"sync"

	"github.com/ironsheep/textclean/internal/cleanup"
	"github.com/ironsheep/textclean/internal/detection"
	"github.com/ironsheep/textclean/internal/imaging"
	"github.com/ironsheep/textclean/internal/mask"
	"github.com/ironsheep/textclean/internal/ocr"
)

// Region is one area of the page to clean.
type Region struct {
	ID     string           `json:"id,omitempty"`
	Coords detection.Coords `json:"coords"`
	Kind   cleanup.CropKind `json:"kind"`

	// Detections are OCR words in region coordinates. When nil the region
	// is sent to the OCR engine.
	Detections []detection.Detection `json:"detections,omitempty"`
}

// Result is the outcome of cleaning a page.
type Result struct {
	// Page is a copy of the input page with every filled crop pasted in.
	Page *image.RGBA

	// Crops holds one result per cleaned region, in region order.
	Crops []*cleanup.CleanResult

	// Errors is aligned with Crops; nil entries mean success.
	Errors []error

	// Dropped lists regions skipped because they enclose another region.
	Dropped []detection.Coords
}

// Cleaner cleans pages with a shared pipeline and OCR engine. It is safe for
// concurrent use.
type Cleaner struct {
	pipeline *cleanup.Pipeline
	engine   *ocr.Engine
	log      *slog.Logger
}

// NewCleaner creates a cleaner. engine may be nil when every region brings
// its own detections or the pipeline uses the polygon strategy.
func NewCleaner(pipeline *cleanup.Pipeline, engine *ocr.Engine, log *slog.Logger) *Cleaner {
	if log == nil {
		log = slog.Default()
	}
	return &Cleaner{pipeline: pipeline, engine: engine, log: log}
}

// Clean cleans regions of pg and pastes the filled crops onto a copy of it.
//
// Parameters:
//   - ctx: Cancelling it stops OCR between groups.
//   - pg: The page; it is never modified and may have a non-zero origin.
//   - regions: Areas to clean, in page coordinates.
//   - progress: Optional. Reset to the number of crops sent to OCR and
//     advanced as they finish.
//
// Returns:
//   - *Result: One entry per kept region in Crops and Errors, plus the
//     regions dropped for enclosing another.
//   - error: ctx.Err() when cancelled during OCR, nil otherwise.
//
// # Errors
//
// Per-crop failures are never returned; they are *cleanup.CleanError values
// in Result.Errors. OCR failures are logged and leave the affected crops
// without detections.
func (c *Cleaner) Clean(ctx context.Context, pg image.Image, regions []Region, progress *ocr.Progress) (*Result, error) {
	regions, dropped := dropEnclosing(regions)
	result := &Result{
		Page:    imaging.WorkingCopy(pg),
		Crops:   make([]*cleanup.CleanResult, len(regions)),
		Errors:  make([]error, len(regions)),
		Dropped: dropped,
	}
	if len(dropped) > 0 {
		c.log.Debug("dropped enclosing regions", "count", len(dropped))
	}

	crops := make([]cleanup.Crop, len(regions))
	for i, r := range regions {
		crops[i] = cleanup.Crop{
			ID:     r.ID,
			Coords: r.Coords,
			Kind:   r.Kind,
			Page:   pg,
		}
		// Out-of-page regions keep nil pixels and fail as invalid crops.
		if px, err := imaging.CropRegion(pg, r.Coords.Rect()); err == nil {
			crops[i].Pixels = px
		} else {
			c.log.Warn("region outside page", "region", r.Coords, "error", err)
		}
	}

	dets, err := c.recognize(ctx, regions, crops, progress)
	if err != nil {
		return result, err
	}

	var wg sync.WaitGroup
	for i := range crops {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result.Crops[i], result.Errors[i] = c.pipeline.Clean(crops[i], dets[i])
		}(i)
	}
	wg.Wait()

	origin := pg.Bounds().Min
	for i, res := range result.Crops {
		if res.Fill == cleanup.FillNone || res.Image == nil {
			continue
		}
		dst := res.Coords.Rect().Sub(origin)
		draw.Draw(result.Page, dst, res.Image, image.Point{}, draw.Src)
		c.log.Debug("pasted crop", "index", i, "crop", res.CropID, "fill", res.Fill)
	}
	return result, nil
}

// recognize returns the detections of every crop, running OCR on the crops
// that did not bring their own.
func (c *Cleaner) recognize(ctx context.Context, regions []Region, crops []cleanup.Crop, progress *ocr.Progress) ([][]detection.Detection, error) {
	dets := make([][]detection.Detection, len(regions))
	var (
		pending []int
		images  []image.Image
	)
	for i, r := range regions {
		if r.Detections != nil {
			dets[i] = r.Detections
			continue
		}
		if crops[i].Pixels != nil {
			pending = append(pending, i)
			images = append(images, crops[i].Pixels)
		}
	}

	if len(pending) == 0 || c.engine == nil || c.pipeline.Options().Strategy == mask.StrategyPolygon {
		return dets, nil
	}

	if progress != nil {
		progress.Reset(len(images))
	}
	found, err := c.engine.RecognizeCrops(ctx, images, progress)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return dets, ctxErr
	}
	if err != nil {
		c.log.Warn("OCR failed for some crops", "error", err)
	}
	for k, i := range pending {
		dets[i] = found[k]
	}
	return dets, nil
}

func dropEnclosing(regions []Region) (kept []Region, dropped []detection.Coords) {
	coords := make([]detection.Coords, len(regions))
	for i, r := range regions {
		coords[i] = r.Coords
	}

	survivors := make(map[detection.Coords]bool)
	for _, c := range detection.DropEnclosing(coords) {
		survivors[c] = true
	}

	kept = make([]Region, 0, len(regions))
	for _, r := range regions {
		if survivors[r.Coords] {
			kept = append(kept, r)
		} else {
			dropped = append(dropped, r.Coords)
		}
	}
	return kept, dropped
}

// Summary counts crops by outcome.
type Summary struct {
	Total   int `json:"total"`
	Masked  int `json:"masked"`
	Solid   int `json:"solid"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Dropped int `json:"dropped"`
}

// Summarize counts the outcomes in r.
func (r *Result) Summarize() Summary {
	s := Summary{Total: len(r.Crops), Dropped: len(r.Dropped)}
	for i, res := range r.Crops {
		switch {
		case res.Fill == cleanup.FillMasked:
			s.Masked++
		case res.Fill == cleanup.FillSolid:
			s.Solid++
		case r.Errors[i] != nil:
			s.Failed++
		default:
			s.Skipped++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d crops: %d masked, %d solid, %d skipped, %d failed, %d dropped",
		s.Total, s.Masked, s.Solid, s.Skipped, s.Failed, s.Dropped)
}
