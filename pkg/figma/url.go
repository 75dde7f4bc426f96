package figma

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidReference indicates that a file key could not be parsed from the
// given URL. The only recovery is for the caller to supply a corrected URL.
var ErrInvalidReference = errors.New("invalid Figma file reference")

// Match patterns like:
// https://www.figma.com/file/ABC123/Design-Name
// https://www.figma.com/design/ABC123/Design-Name
// https://www.figma.com/proto/ABC123/Design-Name
// https://www.figma.com/community/file/1234567890
// Keys may carry a :version suffix which is stripped after matching.
// Anchored to ensure the URL is an actual figma.com URL and prevent bypasses.
var fileKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.)?figma\.com/(?:file|design|proto)/([A-Za-z0-9:]+)(?:[/?#]|$)`),
	regexp.MustCompile(`^https?://(?:www\.)?figma\.com/community/file/(\d+)(?:[/?#]|$)`),
}

// ExtractFileKey extracts the unique file identifier from a Figma URL.
// Supports /file/, /design/, /proto/ and /community/file/ URL shapes, with or
// without a trailing ":version" suffix on the key.
// Returns ErrInvalidReference if the URL doesn't match any known shape.
func ExtractFileKey(figmaURL string) (string, error) {
	for _, re := range fileKeyPatterns {
		matches := re.FindStringSubmatch(figmaURL)
		if len(matches) < 2 {
			continue
		}
		// Strip version suffix if present (e.g. ABC123:45 -> ABC123).
		key, _, _ := strings.Cut(matches[1], ":")
		if key == "" {
			break
		}
		return key, nil
	}

	return "", fmt.Errorf("%w: %q must be a figma.com URL with a /file/, /design/, /proto/ or /community/file/ path", ErrInvalidReference, figmaURL)
}
