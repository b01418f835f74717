// Package grid lays a bit string out as a rectangular knitting chart.
//
// # Sizing policies
//
// Layout picks one of three policies from the bit count n and the repeat
// flag:
//
//   - PolicySingle: one copy of the bits. cols = ceil(sqrt(n)),
//     rows = ceil(n/cols), and the tail is padded with '0'.
//   - PolicyRepeat100: repeat requested and the bits fit at least twice
//     into MinArea cells. The chart is ChartSide×ChartSide and the bits are tiled
//     end to end, truncated at the last cell.
//   - PolicyRepeatScaled: repeat requested but the bits are too long for
//     two copies in MinArea. The chart is the smallest square holding two
//     full copies, side = ceil(sqrt(2n)), tiled and truncated the same way.
//
// # Coordinates
//
// Cells are stored row-major with row 0 at the top. Knitters work a chart
// from the bottom up, so KnitRows lists rows in working order: chart row 1
// is the bottom row, odd rows are right-side rows read right to left, and
// even rows are wrong-side rows read left to right.
//
// # Complexity
//
// Layout is O(rows×cols) in time and memory. Everything in this package is
// a pure function of its inputs.
package grid
