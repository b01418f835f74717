package exporter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RowanDark/knitcipher/internal/grid"
)

func TestEncodeText(t *testing.T) {
	data, err := EncodeText(sampleRequest(t))
	require.NoError(t, err)

	want := strings.Join([]string{
		"Mitten cuff",
		"Cipher: caesar (C1)",
		"Size: 4 rows x 4 stitches, single",
		"Stitches: 8 knit (.), 8 purl (#)",
		"",
		"4 .#..",
		"3 #.##",
		"2 .##.",
		"1 ##..",
		"",
		"Row 1 (RS): k2, p2",
		"Row 2 (WS): k1, p2, k1",
		"Row 3 (RS): p2, k1, p1",
		"Row 4 (WS): k1, p1, k2",
		"",
	}, "\n")
	assert.Equal(t, want, string(data))
}

func TestInstruction(t *testing.T) {
	cases := []struct {
		row  grid.KnitRow
		want string
	}{
		{grid.KnitRow{Number: 1, Side: grid.RightSide, Stitches: "0001101"}, "Row 1 (RS): k3, p2, k1, p1"},
		{grid.KnitRow{Number: 2, Side: grid.WrongSide, Stitches: "1111"}, "Row 2 (WS): p4"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Instruction(tc.row))
	}
}
