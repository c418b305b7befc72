package metrics

import (
	"hash/fnv"
	"sort"
	"strings"
)

// MetricID identifies one concrete metric: a name plus a specific set of
// tag values.
type MetricID = uint64

// MetricDefinitionHash identifies a metric's dimension: its name,
// description and tag *names* (not values). Two descriptions sharing a name
// but carrying different definition hashes are in conflict.
type MetricDefinitionHash = uint64

// MetricDescription is the immutable identity of a concrete metric.
type MetricDescription struct {
	Name        string
	Description string
	Tags        map[string]string

	TagNames       []string
	ID             MetricID
	DefinitionHash MetricDefinitionHash
}

// NewMetricDescription validates name, tag names and tag values and, if
// valid, computes the derived ID and DefinitionHash. Validation follows
// spec.md §3 exactly (ASCII-only):
//
//	name:      [A-Za-z_:][A-Za-z0-9_:]*
//	tag name:  [A-Za-z_][A-Za-z0-9_]*
//	tag value: [A-Za-z0-9._/\-]*
func NewMetricDescription(name, description string, tags map[string]string) (*MetricDescription, error) {
	if !isValidMetricName(name) {
		return nil, validationErrorf("%q is not a valid metric name; it must match [A-Za-z_:][A-Za-z0-9_:]*", name)
	}
	tagNames := make([]string, 0, len(tags))
	for tagName, tagValue := range tags {
		if !isValidTagName(tagName) {
			return nil, validationErrorf("%q is not a valid tag name; it must match [A-Za-z_][A-Za-z0-9_]*", tagName)
		}
		if !isValidTagValue(tagValue) {
			return nil, validationErrorf("%q is not a valid tag value for tag %q; it must match [A-Za-z0-9._/-]*", tagValue, tagName)
		}
		tagNames = append(tagNames, tagName)
	}
	sort.Strings(tagNames)

	tagValues := make([]string, 0, len(tags))
	for _, v := range tags {
		tagValues = append(tagValues, v)
	}

	return &MetricDescription{
		Name:           name,
		Description:    description,
		Tags:           tags,
		TagNames:       tagNames,
		ID:             computeMetricID(name, tagValues),
		DefinitionHash: computeDefinitionHash(name, description, tagNames),
	}, nil
}

// computeMetricID hashes {name} ∪ values(tags), order-independent: the
// contributing strings are sorted lexicographically before folding, so
// permuting the tag map never changes the result.
func computeMetricID(name string, tagValues []string) uint64 {
	values := make([]string, 0, len(tagValues)+1)
	values = append(values, name)
	values = append(values, tagValues...)
	sort.Strings(values)
	return hashStrings(values)
}

// computeDefinitionHash hashes {name, description} ∪ tag_names, order
// independent in the same way.
func computeDefinitionHash(name, description string, tagNames []string) uint64 {
	values := make([]string, 0, len(tagNames)+2)
	values = append(values, name, description)
	values = append(values, tagNames...)
	sort.Strings(values)
	return hashStrings(values)
}

// hashStrings folds already-sorted strings into a single FNV-1a digest.
// A NUL separator keeps "ab","c" from colliding with "a","bc".
func hashStrings(values []string) uint64 {
	h := fnv.New64a()
	for _, v := range values {
		_, _ = h.Write([]byte(v))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

func isValidMetricName(name string) bool {
	if len(name) == 0 {
		return false
	}
	if !isAsciiNameStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isAsciiNameChar(name[i]) {
			return false
		}
	}
	return true
}

func isAsciiNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == ':'
}

func isAsciiNameChar(c byte) bool {
	return isAsciiNameStart(c) || (c >= '0' && c <= '9')
}

func isValidTagName(name string) bool {
	if len(name) == 0 {
		return false
	}
	if !isAsciiTagNameStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isAsciiTagNameChar(name[i]) {
			return false
		}
	}
	return true
}

func isAsciiTagNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAsciiTagNameChar(c byte) bool {
	return isAsciiTagNameStart(c) || (c >= '0' && c <= '9')
}

// isValidTagValue allows the empty string, matching [A-Za-z0-9._/\-]*.
func isValidTagValue(value string) bool {
	for i := 0; i < len(value); i++ {
		c := value[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			continue
		}
		switch c {
		case '.', '_', '/', '-':
			continue
		}
		return false
	}
	return true
}

// tagsString renders tags as a deterministic, sorted "k=v,k2=v2" fragment.
// Nothing in the module calls it.
func tagsString(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	names := make([]string, 0, len(tags))
	for k := range tags {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, k+"="+tags[k])
	}
	return strings.Join(parts, ",")
}
