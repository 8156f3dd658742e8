// Package cdn rewrites object-storage URLs to their CDN-served equivalents.
package cdn

import (
	"net/url"
	"strings"
)

// DefaultDomain is the CDN origin used when no domain is configured.
const DefaultDomain = "d31rk6l704xpk7.cloudfront.net"

// originalPrefix is the storage-side convention for the unprocessed
// variant of an object. The CDN serves the copy without it.
const originalPrefix = "original/"

// Canonicalizer maps object-storage URLs to CDN URLs. The zero value is
// not usable; construct with New.
type Canonicalizer struct {
	domain string
}

// New creates a Canonicalizer serving from the given CDN domain.
// An empty domain falls back to DefaultDomain.
func New(domain string) *Canonicalizer {
	if domain == "" {
		domain = DefaultDomain
	}
	return &Canonicalizer{domain: domain}
}

// Domain returns the configured CDN domain.
func (c *Canonicalizer) Domain() string { return c.domain }

// Canonicalize rewrites an S3 URL to its CDN equivalent. It never fails:
// when no object-storage path can be isolated it returns the input with
// its scheme upgraded to https. Canonical URLs pass through unchanged,
// so the function is idempotent.
func (c *Canonicalizer) Canonicalize(raw string) string {
	if raw == "" {
		return raw
	}

	if !strings.Contains(raw, "s3.amazonaws.com") && !strings.Contains(raw, "amazonaws.com") {
		return upgradeScheme(raw)
	}

	// Isolate the object path after the host. The service-specific
	// marker wins over the generic one when both are present.
	var path string
	if i := strings.Index(raw, ".amazonaws.com/"); i >= 0 {
		path = raw[i+len(".amazonaws.com/"):]
	} else if i := strings.Index(raw, ".com/"); i >= 0 {
		path = raw[i+len(".com/"):]
	}

	path = strings.TrimPrefix(path, originalPrefix)
	if path == "" {
		return upgradeScheme(raw)
	}

	// Encode each segment independently so literal slashes in object
	// names never corrupt the path; separators stay literal.
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}

	return "https://" + c.domain + "/" + strings.Join(segments, "/")
}

func upgradeScheme(raw string) string {
	if strings.HasPrefix(raw, "http://") {
		return "https://" + strings.TrimPrefix(raw, "http://")
	}
	return raw
}
