// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package sensitivity

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Write writes the results of a sensitivity analysis
// as a TSV file.
func Write(w io.Writer, res []Result) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# sensitivity analysis\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tab := csv.NewWriter(bw)
	tab.Comma = '\t'
	tab.UseCRLF = true

	header := []string{
		"threshold",
		"quantile",
		"robust",
		"groups",
		"robust_groups",
		"min_rate",
		"max_rate",
		"avg_rate",
	}
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}
	for _, r := range res {
		row := []string{
			strconv.FormatFloat(r.Threshold, 'f', -1, 64),
			strconv.FormatFloat(r.Quantile, 'f', -1, 64),
			strconv.FormatFloat(r.Robust, 'f', -1, 64),
			strconv.Itoa(r.Groups),
			strconv.Itoa(r.RobustGroups),
			strconv.FormatFloat(r.MinRate, 'f', -1, 64),
			strconv.FormatFloat(r.MaxRate, 'f', -1, 64),
			strconv.FormatFloat(r.AvgRate, 'f', -1, 64),
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("while writing data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}
