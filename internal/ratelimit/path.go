package ratelimit

import (
	"regexp"
	"strings"
)

var (
	uuidSegment = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	hexSegment  = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	numSegment  = regexp.MustCompile(`^[0-9]+$`)
)

// CanonicalPath maps equivalent request paths onto one window key.
// Trailing slashes are dropped and id-like segments collapse to {id}, so
// polling two task ids counts against the same window.
func CanonicalPath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}
	path = strings.TrimSuffix(path, "/")
	segs := strings.Split(path, "/")
	for i, seg := range segs {
		if seg == "" {
			continue
		}
		if uuidSegment.MatchString(seg) || hexSegment.MatchString(seg) || numSegment.MatchString(seg) {
			segs[i] = "{id}"
		}
	}
	return strings.Join(segs, "/")
}
