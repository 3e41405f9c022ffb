// Package detection finds rectangular regions in binary edge maps.
//
// It works on the output of the imaging package's edge and morphology
// stages and turns foreground regions into geometry:
//
//   - Boundaries: outer borders of foreground regions, traced with the
//     Suzuki-Abe border following algorithm (external borders only)
//   - Polygons: Douglas-Peucker simplifications of those borders
//   - Quads: simplified polygons with exactly four vertices that are convex
//
// # Algorithm Overview
//
//  1. Tracing: FindExternalBoundaries follows the border of every region
//     that touches the background around the image, in raster order
//  2. Area Filter: FilterByArea drops boundaries enclosing too little area
//  3. Simplification: ApproxPolygon with a tolerance proportional to the
//     boundary's perimeter
//  4. Rectangle Filter: FilterRectangles keeps convex four-vertex polygons
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// Boundary points are pixel centres, so a filled w×h block yields a boundary
// enclosing (w-1)×(h-1) square pixels while its bounding rectangle is w×h.
//
// # Limitations
//
// Regions nested inside the hole of another region are not reported, and
// no attempt is made to separate touching or overlapping regions.
package detection
