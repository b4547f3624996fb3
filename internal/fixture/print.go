package fixture

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// PrintHierarchy writes an indented tree of records, one line per node,
// starting from every root. Children are located by scanning for matching
// parent ids, so the output does not depend on ImmediateChildren.
func PrintHierarchy(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Hierarchical Structure:")
	fmt.Fprintln(bw, strings.Repeat("=", 50))

	for i := range records {
		if records[i].IsRoot() {
			printNode(bw, &records[i], records, 0)
		}
	}
	return bw.Flush()
}

func printNode(w io.Writer, rec *Record, all []Record, depth int) {
	fmt.Fprintf(w, "%s%s (%s...) - %s - %s%%\n",
		strings.Repeat("  ", depth), rec.Kind, shortID(rec.ObjectID), rec.Status, formatPercent(rec.PercentUtilized))

	for i := range all {
		if all[i].Parent() == rec.ObjectID && !all[i].IsRoot() {
			printNode(w, &all[i], all, depth+1)
		}
	}
}

// PrintRecord writes every field of a record on its own line
func PrintRecord(w io.Writer, rec *Record) error {
	parent := "None"
	if rec.ParentID != nil {
		parent = *rec.ParentID
	}
	_, err := fmt.Fprintf(w,
		"  object_id: %s\n  sec_zone: %s\n  config_id: %s\n  parent_id: %s\n  ip_address: %s\n  object_type: %s\n  status: %s\n  percent_utilized: %s\n  immediate_children: [%s]\n",
		rec.ObjectID, rec.SecZone, rec.ConfigID, parent, rec.IPAddress, rec.Kind, rec.Status,
		formatPercent(rec.PercentUtilized), strings.Join(rec.ImmediateChildren, ", "))
	return err
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// formatPercent keeps one decimal for whole numbers (0.0, 50.0)
func formatPercent(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
