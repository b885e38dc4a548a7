// Package mask builds text masks for comic crops.
//
// A mask is an *image.Alpha the size of the crop: 255 marks text to paint
// over, 0 marks pixels to keep. Two strategies exist and Source picks one:
//
//   - Blocks: padded rectangles around the accepted OCR clusters plus one
//     bridging rectangle over the whole text block. Coarse but robust.
//   - Polygon: a Bézier-smoothed outline around the ink rows of a binarized
//     crop. Tighter, and needs no OCR boxes.
//
// Both are pure functions of their inputs.
package mask
