package cms

import (
	"fmt"
	"strings"
)

const defaultCDNHost = "cdn.sanity.io"

// missingSegment is interpolated for absent asset reference segments. Malformed references
// therefore still produce a URL, matching what the site has always emitted.
const missingSegment = "undefined"

// Images builds CDN URLs for image assets of one project dataset.
type Images struct {
	ProjectID string
	Dataset   string
	CDNHost   string
}

// URL maps an image reference onto its CDN URL. A nil reference or one without an asset yields
// "". With both width and height the image is hard-cropped to the box; with only one of them
// it is scaled keeping its aspect ratio.
func (im Images) URL(ref *ImageRef, width, height int) string {
	if ref == nil || ref.Asset == nil || ref.Asset.Ref == "" {
		return ""
	}
	parts := strings.Split(ref.Asset.Ref, "-")
	segment := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return missingSegment
	}
	id, dimensions, format := segment(1), segment(2), segment(3)

	host := im.CDNHost
	if host == "" {
		host = defaultCDNHost
	}
	url := fmt.Sprintf("https://%s/images/%s/%s/%s-%s.%s", host, im.ProjectID, im.Dataset, id, dimensions, format)

	switch {
	case width > 0 && height > 0:
		url += fmt.Sprintf("?w=%d&h=%d&fit=crop", width, height)
	case width > 0:
		url += fmt.Sprintf("?w=%d&fit=min", width)
	case height > 0:
		url += fmt.Sprintf("?h=%d&fit=min", height)
	}
	return url
}
