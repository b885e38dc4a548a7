// Package imaging provides the pixel-level analysis used to clean text out of
// comic crops.
//
// All functions work on standard Go image types. Buffers that the cleanup
// pipeline modifies are *image.RGBA values anchored at the origin; use
// WorkingCopy or CropRegion to obtain one. Masks are *image.Alpha values of
// the same size where alpha > 0 marks text.
//
// # Color Analysis
//
// Two histograms are offered:
//
//   - AnalyzeMaskedColors: exact RGBA counts of the unmasked, non-transparent
//     pixels, sorted by frequency. Used to pick a fill color around text.
//   - DominantColor: approximate buckets (RGB distance below 20, first match
//     wins, never re-centered). Used to decide whether a crop is flat.
//
// Both skip masked pixels. Neither mutates its input.
//
// # Otsu Threshold
//
// OtsuThreshold splits luminance into two classes by maximizing the
// between-class variance. AnalyzeBackground builds on it: the larger class is
// the background, and representative background and text pixels are picked
// near the crop center.
//
// Luminance everywhere is ITU-R BT.601: 0.299*R + 0.587*G + 0.114*B.
//
// # Binarization
//
// Binarize, RemoveBorderInk and GrowTextBlock turn a bubble crop into black
// ink on white paper and locate the lettering block inside it. LocateText
// chains them. The output feeds the polygon mask strategy.
//
// # Coordinate System
//
// (0,0) is the top-left corner, X grows right and Y grows down. Rectangles
// have an inclusive Min and exclusive Max.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Every other function is stateless
// and may run concurrently on different buffers.
package imaging
