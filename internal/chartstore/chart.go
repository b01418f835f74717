// Package chartstore keeps a library of generated charts in SQLite.
//
// A chart is stored with everything needed to redraw and decrypt it, but
// never with the plaintext message. Each chart carries a content ID
// (CIDv1, raw codec, sha2-256) computed over its bit string, so the same
// pattern saved twice under the same algorithm and repeat setting is
// stored once.
package chartstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/RowanDark/knitcipher/internal/grid"
	"github.com/RowanDark/knitcipher/internal/knit"
)

var (
	// ErrNotFound indicates no chart has the requested ID.
	ErrNotFound = errors.New("chartstore: chart not found")
	// ErrInvalidChart indicates a chart is missing required fields.
	ErrInvalidChart = errors.New("chartstore: invalid chart")
)

// Chart is a saved chart.
type Chart struct {
	ID         string    `json:"id"`
	CID        string    `json:"cid"`
	Label      string    `json:"label,omitempty"`
	Algorithm  string    `json:"algorithm"`
	Code       string    `json:"code"`
	Repeat     bool      `json:"repeat"`
	Ciphertext string    `json:"ciphertext"`
	Binary     string    `json:"binary"`
	Rows       int       `json:"rows"`
	Cols       int       `json:"cols"`
	CreatedAt  time.Time `json:"created_at"`
}

// FromResult builds an unsaved chart from an encryption result.
func FromResult(res *knit.Result, label string) *Chart {
	return &Chart{
		Label:      strings.TrimSpace(label),
		Algorithm:  res.Algorithm,
		Code:       res.Code,
		Repeat:     res.Repeat,
		Ciphertext: res.Ciphertext,
		Binary:     res.Binary,
		Rows:       res.Rows,
		Cols:       res.Cols,
	}
}

// Grid lays the chart's bits out again with its repeat setting.
func (c *Chart) Grid() (*grid.Grid, error) {
	return grid.Layout(c.Binary, c.Repeat)
}

// Validate checks the fields Save relies on.
func (c *Chart) Validate() error {
	switch {
	case c == nil:
		return fmt.Errorf("%w: nil chart", ErrInvalidChart)
	case c.Algorithm == "":
		return fmt.Errorf("%w: algorithm is required", ErrInvalidChart)
	case c.Code == "":
		return fmt.Errorf("%w: code is required", ErrInvalidChart)
	case c.Binary == "":
		return fmt.Errorf("%w: binary is required", ErrInvalidChart)
	case strings.Trim(c.Binary, "01") != "":
		return fmt.Errorf("%w: binary may only contain 0 and 1", ErrInvalidChart)
	}
	return nil
}

// ContentID returns the CIDv1 (raw, sha2-256) of a bit string.
func ContentID(bits string) (string, error) {
	sum, err := multihash.Sum([]byte(bits), multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("hash chart: %w", err)
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}
