// Package page cleans every text region of one page.
//
// It is the glue between the OCR collaborator and the per-crop pipeline:
// regions that enclose other regions are dropped, the remaining crops are
// recognized in small groups, each crop is cleaned independently, and the
// cleaned crops are pasted back onto a copy of the page. A failure in one
// crop never affects the others.
//
// # Regions
//
// A Region names its page coordinates and kind. Regions that bring their
// own Detections skip OCR; a non-nil empty slice means "no text found" and
// is not sent to the engine. Regions outside the page fail with
// INVALID_CROP.
//
// # Concurrency
//
// OCR runs ocr.Options.GroupSize crops at a time and advances the caller's
// ocr.Progress. Cleaning then runs every crop in its own goroutine. Only
// cancellation of the context aborts Clean; per-crop failures are reported
// in Result.Errors, aligned with Result.Crops.
//
// # Usage
//
//	cleaner := page.NewCleaner(pipeline, engine, logger)
//	res, err := cleaner.Clean(ctx, pg, regions, nil)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Summarize())
package page
