// Package ocr turns crops into word detections with Tesseract.
//
// It is the OCR collaborator of the cleanup pipeline: Recognize returns
// detection.Detection values in crop coordinates with Tesseract's 0-100
// confidence, which is exactly what cleanup.Pipeline.Clean consumes.
//
// # Prerequisites
//
// Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Comic scans often need other languages ("jpn", "jpn_vert", "spa"); set
// Options.Language and install the matching data. Options.TessdataPrefix
// points at a custom tessdata directory.
//
// # Batches
//
// RecognizeCrops processes crops in small groups, waiting for each group
// before starting the next. A caller-owned Progress reports how many crops
// have finished; there is no global state.
//
// # Thread Safety
//
// Each call creates and closes its own Tesseract client, so Engine values
// may be shared between goroutines.
package ocr
