// Package mediaproxy relays drone images and video through the server so clients never
// hit tunnel interstitial pages directly.
package mediaproxy

import (
	"net/url"
	"strings"
)

// ImageRoute is the server path that serves proxied images.
const ImageRoute = "/api/proxy/image"

// Rewriter turns externally hosted image paths into proxy paths at read time.
type Rewriter struct {
	markers []string
}

func NewRewriter(tunnelMarkers []string) *Rewriter {
	markers := make([]string, 0, len(tunnelMarkers))
	for _, m := range tunnelMarkers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			markers = append(markers, m)
		}
	}
	return &Rewriter{markers: markers}
}

// Rewrite returns the proxy path for absolute http(s) URLs and tunnel-hosted paths.
// Tunnel paths stored without a scheme are proxied as https. Relative paths and empty
// values are returned unchanged.
func (r *Rewriter) Rewrite(imagePath string) string {
	target, ok := r.target(imagePath)
	if !ok {
		return imagePath
	}
	return ImageRoute + "?url=" + url.QueryEscape(target)
}

func (r *Rewriter) NeedsProxy(imagePath string) bool {
	_, ok := r.target(imagePath)
	return ok
}

// target resolves the upstream URL the proxy should fetch for imagePath.
func (r *Rewriter) target(imagePath string) (string, bool) {
	if imagePath == "" || strings.HasPrefix(imagePath, ImageRoute+"?") {
		return "", false
	}

	lower := strings.ToLower(imagePath)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return imagePath, true
	}
	if !r.tunnelHosted(lower) {
		return "", false
	}
	switch {
	case strings.HasPrefix(imagePath, "//"):
		return "https:" + imagePath, true
	case strings.HasPrefix(imagePath, "/"), strings.HasPrefix(imagePath, "."):
		return "", false
	}
	return "https://" + imagePath, true
}

func (r *Rewriter) tunnelHosted(lower string) bool {
	for _, m := range r.markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Decode recovers the original path from a proxy path produced by Rewrite.
func Decode(proxied string) (string, bool) {
	raw, ok := strings.CutPrefix(proxied, ImageRoute+"?")
	if !ok {
		return "", false
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return "", false
	}
	target := values.Get("url")
	return target, target != ""
}
