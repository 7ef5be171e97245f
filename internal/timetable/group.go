package timetable

import (
	"path/filepath"
	"sort"
	"strings"
)

// GroupMode selects how the merged period set is partitioned into
// output calendars
type GroupMode int

const (
	// GroupSingle puts every period into one group named "All"
	GroupSingle GroupMode = iota
	// GroupByCourse emits one group per course short name
	GroupByCourse
	// GroupByOverrides buckets by the override map, everything else
	// into "Misc"
	GroupByOverrides
)

// AllGroupName names the consolidated group
const AllGroupName = "All"

// MiscGroupName collects the periods no override bucket claims
const MiscGroupName = "Misc"

// Group is one named output partition
type Group struct {
	Name    string
	Periods []*Period
	// Consolidated groups (the single-mode group and the extra "All"
	// group emitted by the all-formats flag) write to the unmodified
	// base path.
	Consolidated bool
}

// SplitGroups partitions periods according to the mode. With allFormats
// set and a splitting mode active, an additional consolidated group
// carrying every period is appended.
func SplitGroups(periods []*Period, mode GroupMode, overrides map[string]string, allFormats bool) []Group {
	if mode == GroupSingle {
		return []Group{{Name: AllGroupName, Periods: periods, Consolidated: true}}
	}

	buckets := make(map[string][]*Period)
	var order []string
	add := func(key string, p *Period) {
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], p)
	}

	for _, p := range periods {
		add(groupKey(p, mode, overrides), p)
	}

	// Stable output: first-seen order would depend on the period sort,
	// which is fine, but named groups sort better for humans scanning
	// a directory of calendars.
	sort.Strings(order)

	groups := make([]Group, 0, len(order)+1)
	for _, key := range order {
		groups = append(groups, Group{Name: key, Periods: buckets[key]})
	}

	if allFormats {
		groups = append(groups, Group{Name: AllGroupName, Periods: periods, Consolidated: true})
	}

	return groups
}

// groupKey computes the partition key of one period
func groupKey(p *Period, mode GroupMode, overrides map[string]string) string {
	course := p.CourseName()

	switch mode {
	case GroupByCourse:
		if course != "" {
			return course
		}
		return p.LessonCode
	case GroupByOverrides:
		if course == "" {
			return p.LessonCode
		}
		if replacement, ok := overrides[course]; ok {
			return firstSegment(replacement)
		}
		return MiscGroupName
	default:
		return AllGroupName
	}
}

// firstSegment returns the part of a replacement value before the first
// comma
func firstSegment(s string) string {
	if idx := strings.Index(s, ","); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// OutputPath derives the file path of a group from the base output
// path. Consolidated groups use the base path as is; split groups get a
// sanitized name suffix inserted before the extension.
func OutputPath(basePath string, group Group) string {
	if group.Consolidated {
		return basePath
	}

	ext := filepath.Ext(basePath)
	stem := strings.TrimSuffix(basePath, ext)
	return stem + "_" + SanitizeName(group.Name) + ext
}

// SanitizeName replaces every non-alphanumeric character with an
// underscore so group names are safe in file names
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
