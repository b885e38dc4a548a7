// Package cleanup removes lettering from one comic crop.
//
// A Pipeline takes a Crop (the pixels of a speech bubble or caption and
// where they sit on the page) plus the OCR words found in it, and returns a
// CleanResult with the text painted over in the surrounding background
// color. Crops are independent: a Pipeline is safe for concurrent use and a
// failing crop never affects another.
//
// # Stages
//
//  1. prepare: validate the crop and copy its pixels into a working buffer.
//     Text crops grow by Options.TextPadding on every side when the page is
//     known.
//  2. mask: filter and cluster the detections and build a blocks mask, or
//     binarize the crop and trace a polygon mask (see package mask).
//  3. classify: a Classifier reads the colors around the mask and picks a
//     FillMode and fill color.
//  4. composite: CompositeMasked paints masked pixels only; CompositeSolid
//     paints the whole crop.
//
// # Fill Modes
//
//   - FillMasked: the pixels under the mask take the count-weighted mean of
//     the background colors near the most common one. Art outside the mask
//     is kept and IsSolidBackground is false.
//   - FillSolid: text crops that are flat enough are repainted whole with
//     their dominant color, and IsSolidBackground is true.
//   - FillNone: the crop is returned untouched, with coordinates possibly
//     extended.
//
// # Error Handling
//
// Clean always returns a usable *CleanResult. When it also returns an
// error, that error is a *CleanError whose Code says why the crop was left
// alone:
//
//	INVALID_CROP         missing or zero-size pixels, or mismatched coords
//	NO_DETECTIONS        nothing survived the detection filter
//	NO_VALID_CLUSTERS    every cluster was rejected, or no ink block found
//	COMPOSITING_FAILURE  the fill could not be applied
//
// Use errors.Is with ErrInvalidCrop, ErrNoDetections, ErrNoValidClusters or
// ErrCompositing to test for a code, and CleanError.ToMap for a JSON form.
//
// # Usage
//
//	p := cleanup.NewPipeline(cleanup.DefaultOptions(), logger)
//	res, err := p.Clean(cleanup.Crop{
//	    ID:     "p12-b3",
//	    Coords: coords,
//	    Pixels: pixels,
//	    Kind:   cleanup.KindBubble,
//	}, words)
//	if err != nil {
//	    logger.Warn("crop left as is", "crop", res.CropID, "error", err)
//	}
package cleanup
