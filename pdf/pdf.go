// Copyright 2021, 2026 Tamas Gulacsi. All rights reserved.

// Package pdf renders the case log as a printable table.
package pdf

import (
	"encoding/hex"
	"fmt"
	"math"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// gridSize is the number of grid units of a line.
const gridSize = 36

// Options of Render.
type Options struct {
	Title          string
	Landscape      bool
	FontSize       float64
	AlternateColor Color
}

// DefaultOptions returns landscape A4 with 8pt font and light grey alternating rows.
func DefaultOptions() Options {
	return Options{
		Landscape:      true,
		FontSize:       8,
		AlternateColor: Color{Red: 230, Green: 230, Blue: 230},
	}
}

// Render renders rows as a table. The first row is the header.
func Render(rows [][]string, opts Options) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows")
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 8
	}
	headers, contents := rows[0], rows[1:]
	sizes := gridSizes(headers, contents)

	cb := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithMaxGridSize(gridSize)
	if opts.Landscape {
		cb = cb.WithOrientation(orientation.Horizontal)
	}
	m := maroto.New(cb.Build())

	if opts.Title != "" {
		m.AddRows(text.NewRow(opts.FontSize*1.5, opts.Title, props.Text{
			Size: opts.FontSize * 1.5, Style: fontstyle.Bold, Align: align.Center,
		}))
	}
	headerProp := props.Text{Size: opts.FontSize * 1.375, Style: fontstyle.Bold, Align: align.Center}
	contentProp := props.Text{Size: opts.FontSize, Family: fontfamily.Courier, Align: align.Left, Top: 0.5}
	m.AddRows(tableRow(opts.FontSize*1.2, headers, sizes, headerProp, nil))

	alternate := &props.Cell{BackgroundColor: &props.Color{
		Red: opts.AlternateColor.Red, Green: opts.AlternateColor.Green, Blue: opts.AlternateColor.Blue,
	}}
	for i, r := range contents {
		var style *props.Cell
		if i%2 == 1 {
			style = alternate
		}
		m.AddRows(tableRow(opts.FontSize*0.75, r, sizes, contentProp, style))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func tableRow(height float64, values []string, sizes []int, prop props.Text, style *props.Cell) core.Row {
	r := row.New(height)
	for i, size := range sizes {
		var s string
		if i < len(values) {
			s = values[i]
		}
		r.Add(text.NewCol(size, s, prop))
	}
	if style != nil {
		r.WithStyle(style)
	}
	return r
}

// gridSizes distributes the grid between the columns proportionally
// to their average text length, each column getting at least one unit.
func gridSizes(headers []string, contents [][]string) []int {
	widths := make([]float64, len(headers))
	for i, s := range headers {
		widths[i] = float64(len(s))
	}
	for _, row := range contents {
		for i, s := range row {
			if i < len(widths) {
				widths[i] += float64(len(s))
			}
		}
	}
	var sum float64
	for _, w := range widths {
		sum += w
	}
	sizes := make([]int, len(widths))
	if sum == 0 {
		sum = 1
	}
	total := 0
	for i, w := range widths {
		sizes[i] = max(1, int(math.Round(w/sum*gridSize)))
		total += sizes[i]
	}
	// shave the widest columns until the line fits
	for total > gridSize {
		widest := 0
		for i, s := range sizes {
			if s > sizes[widest] {
				widest = i
			}
		}
		if sizes[widest] == 1 {
			break
		}
		sizes[widest]--
		total--
	}
	return sizes
}

// Color is an RGB color, printed and parsed as 6 hex digits.
type Color struct {
	Red, Green, Blue int
}

func (c *Color) String() string {
	return fmt.Sprintf("%02x%02x%02x", c.Red, c.Green, c.Blue)
}

// Set implements flag.Value.
func (c *Color) Set(s string) error { return c.Parse(s) }

func (c *Color) Parse(s string) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != 3 {
		return fmt.Errorf("%q: wanted 6 hex digits", s)
	}
	c.Red, c.Green, c.Blue = int(b[0]), int(b[1]), int(b[2])
	return nil
}
