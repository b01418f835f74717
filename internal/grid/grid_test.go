package grid_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RowanDark/knitcipher/internal/grid"
)

func bits(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i%3 == 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// TestLayout_Single checks ceil(sqrt(n)) columns and zero padding.
func TestLayout_Single(t *testing.T) {
	cases := []struct {
		name       string
		n          int
		rows, cols int
	}{
		{"OneBit", 1, 1, 1},
		{"TwentyFour", 24, 5, 5},
		{"PerfectSquare", 64, 8, 8},
		{"ShortLastRow", 26, 5, 6},
		{"ThirteenBytes", 104, 10, 11},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := bits(tc.n)
			g, err := grid.Layout(in, false)
			require.NoError(t, err)
			assert.Equal(t, tc.rows, g.Rows)
			assert.Equal(t, tc.cols, g.Cols)
			assert.Equal(t, grid.PolicySingle, g.Policy)
			assert.Equal(t, 1, g.Iterations)
			require.Len(t, g.Cells, g.Rows)
			for _, row := range g.Cells {
				assert.Len(t, row, g.Cols)
			}

			flat := strings.Join(g.Cells, "")
			assert.True(t, strings.HasPrefix(flat, in))
			assert.Equal(t, strings.Repeat("0", g.Rows*g.Cols-tc.n), flat[tc.n:])
		})
	}
}

func TestLayout_SinglePadsOneCell(t *testing.T) {
	g, err := grid.Layout(strings.Repeat("1", 24), false)
	require.NoError(t, err)
	assert.Equal(t, "11110", g.Cells[4])
	assert.Equal(t, byte('0'), g.At(4, 4))
}

func TestLayout_Repeat100(t *testing.T) {
	in := bits(40)
	g, err := grid.Layout(in, true)
	require.NoError(t, err)
	assert.Equal(t, grid.ChartSide, g.Rows)
	assert.Equal(t, grid.ChartSide, g.Cols)
	assert.Equal(t, grid.PolicyRepeat100, g.Policy)
	assert.Equal(t, 250, g.Iterations)

	flat := strings.Join(g.Cells, "")
	require.Len(t, flat, grid.MinArea)
	assert.Equal(t, strings.Repeat(in, 250), flat)
}

func TestLayout_Repeat100Boundary(t *testing.T) {
	g, err := grid.Layout(bits(5000), true)
	require.NoError(t, err)
	assert.Equal(t, grid.PolicyRepeat100, g.Policy)
	assert.Equal(t, 2, g.Iterations)

	g, err = grid.Layout(bits(5001), true)
	require.NoError(t, err)
	assert.Equal(t, grid.PolicyRepeatScaled, g.Policy)
}

func TestLayout_RepeatScaled(t *testing.T) {
	in := bits(6000)
	g, err := grid.Layout(in, true)
	require.NoError(t, err)
	assert.Equal(t, 110, g.Rows)
	assert.Equal(t, 110, g.Cols)
	assert.Equal(t, grid.PolicyRepeatScaled, g.Policy)
	assert.Equal(t, 2, g.Iterations)

	flat := strings.Join(g.Cells, "")
	require.Len(t, flat, 110*110)
	assert.Equal(t, in+in, flat[:12000])
	assert.Equal(t, in[:100], flat[12000:])
}

func TestLayout_Errors(t *testing.T) {
	_, err := grid.Layout("", false)
	assert.ErrorIs(t, err, grid.ErrEmptyBinary)

	_, err = grid.Layout("", true)
	assert.ErrorIs(t, err, grid.ErrEmptyBinary)

	_, err = grid.Layout("0102", false)
	assert.ErrorIs(t, err, grid.ErrNotBinary)
}

func TestGrid_Accessors(t *testing.T) {
	g, err := grid.Layout("110100101", false)
	require.NoError(t, err)

	assert.Equal(t, "110\n100\n101", g.String())
	assert.Equal(t, byte('1'), g.At(0, 0))
	assert.Equal(t, byte('0'), g.At(1, 2))
	assert.Equal(t, byte(0), g.At(3, 0))
	assert.Equal(t, byte(0), g.At(0, -1))

	ones, zeros := g.Count()
	assert.Equal(t, 5, ones)
	assert.Equal(t, 4, zeros)
}

func TestGrid_KnitRows(t *testing.T) {
	g, err := grid.Layout("110100101", false)
	require.NoError(t, err)

	rows := g.KnitRows()
	require.Len(t, rows, 3)
	assert.Equal(t, grid.KnitRow{Number: 1, Side: grid.RightSide, Stitches: "101"}, rows[0])
	assert.Equal(t, grid.KnitRow{Number: 2, Side: grid.WrongSide, Stitches: "100"}, rows[1])
	assert.Equal(t, grid.KnitRow{Number: 3, Side: grid.RightSide, Stitches: "011"}, rows[2])
}
