package exporter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RowanDark/knitcipher/internal/chartstore"
	"github.com/RowanDark/knitcipher/internal/knit"
)

// sampleRequest returns the 4×4 Caesar chart for "Hi".
func sampleRequest(t *testing.T) Request {
	t.Helper()
	res, err := knit.Encrypt("Hi", "caesar", false)
	require.NoError(t, err)
	chart := chartstore.FromResult(res, "Mitten cuff")
	chart.ID = "01HX0000000000000000000000"

	req, err := NewRequest(chart)
	require.NoError(t, err)
	return req
}

func TestRegisterFormatRejectsDuplicate(t *testing.T) {
	err := RegisterFormat(FormatSpec{Format: FormatJSON, Encode: func(Request) ([]byte, error) { return nil, nil }})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv, json, text")
}

func TestEncodeUsesRegisteredFormat(t *testing.T) {
	formatName := Format("unit-test-format")
	spec := FormatSpec{
		Format:    formatName,
		Extension: "unit",
		Encode: func(req Request) ([]byte, error) {
			return []byte(req.Chart.Code), nil
		},
	}
	require.NoError(t, RegisterFormat(spec))

	req := sampleRequest(t)
	data, err := Encode(formatName, req)
	require.NoError(t, err)
	assert.Equal(t, "C1", string(data))

	path, err := DefaultPath(formatName, req.Chart)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, req.Chart.ID+".unit"), path)

	_, err = Encode(formatName, Request{})
	assert.Error(t, err)
}

func TestDefaultPathWithoutID(t *testing.T) {
	req := sampleRequest(t)
	req.Chart.ID = ""
	path, err := DefaultPath(FormatText, req.Chart)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "chart-c1.txt"), path)
}

func TestFormatsSorted(t *testing.T) {
	specs := Formats()
	for i := 1; i < len(specs); i++ {
		assert.Less(t, string(specs[i-1].Format), string(specs[i].Format))
	}
}
