// Package detection turns raw OCR word boxes into text blocks.
//
// The package is the first stage of the cleanup pipeline. It knows nothing
// about pixels; it works on Detection values (text, confidence and a box in
// crop-local coordinates) and on the size of the crop they came from.
//
// # Filtering
//
// Filter drops detections that are unlikely to be lettering: low confidence,
// blank text, and short fragments such as "|", "Il" or "3" that OCR engines
// produce on screentone, panel borders and speed lines.
//
// # Clustering
//
// ClusterDetections groups the surviving detections with a greedy forward
// sweep. Two boxes join when they are close on either axis. Clusters that
// touch the crop margins or consist of a single weak word are rejected but
// still reported, so callers can account for every input detection.
//
// The sweep is order-dependent: a seed absorbs its neighbours
// and absorbed members never seed further absorption. Reordering the input
// can change the result.
//
// # Regions
//
// DropEnclosing removes page regions that fully contain another region, so
// nested selections are only cleaned once.
//
// # Coordinate System
//
// Boxes use the standard image convention: origin at the top-left corner,
// inclusive minimum and exclusive maximum edges.
package detection
