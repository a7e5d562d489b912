// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package costgrid

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// NoData is the value used for cells without data
// when a grid is written.
const NoData = -9999

// ReadFile reads a cost surface from an ESRI ASCII grid file.
func ReadFile(name, crs string) (*Grid, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := ReadASCII(f, crs)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return g, nil
}

// ReadASCII reads a cost surface
// in the ESRI ASCII grid format.
//
// The header is a set of keyword-value pairs:
//
//   - ncols, the number of columns
//   - nrows, the number of rows
//   - xllcorner or xllcenter, the x of the lower-left corner (or cell center)
//   - yllcorner or yllcenter, the y of the lower-left corner (or cell center)
//   - cellsize, or dx and dy, the cell size
//   - nodata_value, optional, the value used for cells without data
//
// followed by the cell values,
// row by row starting from the top row.
// Here is an example file:
//
//	ncols 4
//	nrows 3
//	xllcorner 500000
//	yllcorner 4100000
//	cellsize 1000
//	NODATA_value -9999
//	1 1 2 -9999
//	1 2 5 -9999
//	1 1 1 1
//
// Cells without data will have an infinite cost.
func ReadASCII(r io.Reader, crs string) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	head := make(map[string]float64)
	var first string
	for sc.Scan() {
		tok := sc.Text()
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			first = tok
			break
		}
		key := strings.ToLower(tok)
		if !sc.Scan() {
			return nil, fmt.Errorf("header: expecting value for %q", key)
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("header: field %q: %v", key, err)
		}
		head[key] = v
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	for _, k := range []string{"ncols", "nrows"} {
		if _, ok := head[k]; !ok {
			return nil, fmt.Errorf("header: expecting field %q", k)
		}
	}
	cols := int(head["ncols"])
	rows := int(head["nrows"])

	dx, dy := head["cellsize"], head["cellsize"]
	if v, ok := head["dx"]; ok {
		dx = v
	}
	if v, ok := head["dy"]; ok {
		dy = v
	}
	if dx == 0 || dy == 0 {
		return nil, fmt.Errorf("header: expecting field %q", "cellsize")
	}

	var left, bottom float64
	switch {
	case hasKey(head, "xllcorner"):
		left = head["xllcorner"]
	case hasKey(head, "xllcenter"):
		left = head["xllcenter"] - dx/2
	default:
		return nil, fmt.Errorf("header: expecting field %q", "xllcorner")
	}
	switch {
	case hasKey(head, "yllcorner"):
		bottom = head["yllcorner"]
	case hasKey(head, "yllcenter"):
		bottom = head["yllcenter"] - dy/2
	default:
		return nil, fmt.Errorf("header: expecting field %q", "yllcorner")
	}

	noData, hasNoData := head["nodata_value"]

	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("header: invalid grid size %d x %d", rows, cols)
	}
	values := make([]float64, 0, rows*cols)
	add := func(tok string) error {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return fmt.Errorf("cell %d: %v", len(values), err)
		}
		if (hasNoData && v == noData) || v < 0 {
			v = math.Inf(1)
		}
		values = append(values, v)
		return nil
	}
	if first != "" {
		if err := add(first); err != nil {
			return nil, err
		}
	}
	for sc.Scan() {
		if len(values) == rows*cols {
			return nil, fmt.Errorf("got more than %d cell values", rows*cols)
		}
		if err := add(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	tr := Transform{left, dx, 0, bottom + float64(rows)*dy, 0, -dy}
	return New(rows, cols, tr, crs, values)
}

func hasKey(m map[string]float64, k string) bool {
	_, ok := m[k]
	return ok
}

// WriteASCII writes a grid
// in the ESRI ASCII grid format.
// Only north-up grids can be written.
func WriteASCII(w io.Writer, g *Grid) error {
	tr := g.tr
	if tr[2] != 0 || tr[4] != 0 || tr[1] <= 0 || tr[5] >= 0 {
		return fmt.Errorf("costgrid: only north-up grids can be written")
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", g.cols)
	fmt.Fprintf(bw, "nrows %d\n", g.rows)
	fmt.Fprintf(bw, "xllcorner %s\n", strconv.FormatFloat(tr[0], 'f', -1, 64))
	fmt.Fprintf(bw, "yllcorner %s\n", strconv.FormatFloat(tr[3]+float64(g.rows)*tr[5], 'f', -1, 64))
	fmt.Fprintf(bw, "cellsize %s\n", strconv.FormatFloat(g.size, 'f', -1, 64))
	fmt.Fprintf(bw, "NODATA_value %d\n", NoData)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if c > 0 {
				bw.WriteByte(' ')
			}
			v := g.cost[r*g.cols+c]
			if math.IsInf(v, 1) {
				fmt.Fprintf(bw, "%d", NoData)
				continue
			}
			bw.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
