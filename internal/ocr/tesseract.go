package ocr

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/textclean/internal/detection"
	"github.com/ironsheep/textclean/internal/imaging"
)

// Options configures the Tesseract engine.
type Options struct {
	// Language is a Tesseract language code such as "eng" or "jpn".
	Language string `toml:"language"`

	// TessdataPrefix overrides the directory holding *.traineddata.
	TessdataPrefix string `toml:"tessdata_prefix"`

	// PageSegMode is a Tesseract page segmentation mode (3 = automatic,
	// 11 = sparse text).
	PageSegMode int `toml:"page_seg_mode"`

	// GroupSize is how many crops RecognizeCrops runs at once.
	GroupSize int `toml:"group_size"`
}

// DefaultOptions returns English, automatic segmentation, two crops at a
// time.
func DefaultOptions() Options {
	return Options{
		Language:    "eng",
		PageSegMode: int(gosseract.PSM_AUTO),
		GroupSize:   2,
	}
}

// Engine runs word-level OCR. A Tesseract client is created per call, so an
// Engine is safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine creates an engine. Zero-valued options take their defaults.
func NewEngine(opts Options) *Engine {
	def := DefaultOptions()
	if opts.Language == "" {
		opts.Language = def.Language
	}
	if opts.GroupSize <= 0 {
		opts.GroupSize = def.GroupSize
	}
	return &Engine{opts: opts}
}

// Options returns the engine settings with defaults applied.
func (e *Engine) Options() Options {
	return e.opts
}

func (e *Engine) newClient() (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if e.opts.TessdataPrefix != "" {
		client.TessdataPrefix = e.opts.TessdataPrefix
	}
	if err := client.SetLanguage(e.opts.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(e.opts.PageSegMode)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return client, nil
}

// Recognize performs word-level OCR on img.
//
// Boxes are relative to img's Min corner, so a crop yields detections in
// crop coordinates ready for the cleanup pipeline. Confidence is Tesseract's
// 0-100 score. Empty words are dropped; surrounding whitespace is kept.
func (e *Engine) Recognize(ctx context.Context, img image.Image) ([]detection.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := imaging.EncodePNG(imaging.WorkingCopy(img))
	if err != nil {
		return nil, err
	}

	client, err := e.newClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	dets := make([]detection.Detection, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		dets = append(dets, detection.Detection{
			Text:       box.Word,
			Confidence: box.Confidence,
			BBox:       detection.BBoxFromRect(box.Box),
		})
	}
	return dets, nil
}

// RecognizeCrops runs Recognize over crops, GroupSize crops at a time, and
// returns one detection list per crop in input order.
//
// progress, when non-nil, is advanced after each finished crop; the caller
// owns it and resets it between batches. Cancelling ctx stops scheduling
// further groups. A failed crop gets a nil list and its error is returned
// with the first failure's message once the batch finishes.
func (e *Engine) RecognizeCrops(ctx context.Context, crops []image.Image, progress *Progress) ([][]detection.Detection, error) {
	results := make([][]detection.Detection, len(crops))
	errs := make([]error, len(crops))

	for start := 0; start < len(crops); start += e.opts.GroupSize {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		end := start + e.opts.GroupSize
		if end > len(crops) {
			end = len(crops)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = e.Recognize(ctx, crops[i])
				if progress != nil {
					progress.Add(1)
				}
			}(i)
		}
		wg.Wait()
	}

	for i, err := range errs {
		if err != nil {
			return results, fmt.Errorf("crop %d: %w", i, err)
		}
	}
	return results, nil
}

// Info describes the OCR backend.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Language  string `json:"language"`
	Error     string `json:"error,omitempty"`
}

// Info reports whether Tesseract can be initialised with the engine's
// language.
func (e *Engine) Info() Info {
	info := Info{Language: e.opts.Language}
	client, err := e.newClient()
	if err != nil {
		info.Error = err.Error()
		return info
	}
	defer client.Close()

	info.Available = true
	info.Version = client.Version()
	return info
}
