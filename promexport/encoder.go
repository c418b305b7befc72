package promexport

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Encode writes every histogram in the projector to w in Prometheus text
// exposition format:
//
//	# HELP <name> <escaped description>
//	# TYPE <name> histogram
//	<name>_bucket{<tags>,le="<bound>"} <count> <ts>
//	...
//	<name>_bucket{<tags>,le="+Inf"} <count> <ts>
//	<name>_sum{<tags>} <sum> <ts>
//	<name>_count{<tags>} <count> <ts>
func Encode(w io.Writer, projector *Projector) error {
	for _, ph := range projector.Histograms() {
		if err := encodeHistogram(w, ph); err != nil {
			return err
		}
	}
	return nil
}

func encodeHistogram(w io.Writer, ph *PrometheusHistogram) error {
	name := ph.Description.Name
	help := ph.Description.Description

	if help != "" {
		if _, err := fmt.Fprintf(w, "# HELP %s %s\n", name, escapeString(help, false)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "# TYPE %s histogram\n", name); err != nil {
		return err
	}

	for _, b := range ph.Buckets() {
		if err := writeSample(w, name+"_bucket", ph.Description.Tags, [][2]string{{"le", formatBound(b.UpperBound)}}, formatUint(b.Count), ph.TimestampMs); err != nil {
			return err
		}
	}
	if err := writeSample(w, name+"_bucket", ph.Description.Tags, [][2]string{{"le", "+Inf"}}, formatUint(ph.Count), ph.TimestampMs); err != nil {
		return err
	}
	if err := writeSample(w, name+"_sum", ph.Description.Tags, nil, formatFloat(ph.Sum), ph.TimestampMs); err != nil {
		return err
	}
	if err := writeSample(w, name+"_count", ph.Description.Tags, nil, formatUint(ph.Count), ph.TimestampMs); err != nil {
		return err
	}
	return nil
}

func writeSample(w io.Writer, name string, tags map[string]string, extra [][2]string, value string, timestampMs uint64) error {
	if _, err := io.WriteString(w, name); err != nil {
		return err
	}
	if err := writeLabels(w, tags, extra); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, " %s %d\n", value, timestampMs); err != nil {
		return err
	}
	return nil
}

func writeLabels(w io.Writer, tags map[string]string, extra [][2]string) error {
	if len(tags) == 0 && len(extra) == 0 {
		return nil
	}

	names := make([]string, 0, len(tags))
	for k := range tags {
		names = append(names, k)
	}
	sort.Strings(names)

	sep := "{"
	for _, k := range names {
		if _, err := fmt.Fprintf(w, `%s%s="%s"`, sep, k, escapeString(tags[k], true)); err != nil {
			return err
		}
		sep = ","
	}
	for _, kv := range extra {
		if _, err := fmt.Fprintf(w, `%s%s="%s"`, sep, kv[0], escapeString(kv[1], true)); err != nil {
			return err
		}
		sep = ","
	}
	_, err := io.WriteString(w, "}")
	return err
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// escapeString replaces '\' with "\\" and '\n' with "\n" always, and '"'
// with "\"" when includeDoubleQuote is set — the same escaping the
// original implementation applies to HELP text and label values.
func escapeString(v string, includeDoubleQuote bool) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, c := range v {
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '"' && includeDoubleQuote:
			b.WriteString(`\"`)
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
