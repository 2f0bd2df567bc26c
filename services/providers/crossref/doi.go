package crossref

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/upb/paper-assistant-gateway/services"
)

var doiPattern = regexp.MustCompile(`(?i)10\.\d{4,9}/[-._;()/:A-Z0-9]+`)

// NormalizeDOI cleans a user supplied DOI. URLs are reduced to the embedded DOI
// and a leading "doi:" label is dropped.
func NormalizeDOI(raw string) (string, error) {
	doi := strings.TrimSpace(raw)
	if doi == "" {
		return "", services.ErrEmptyDOI
	}

	switch {
	case strings.HasPrefix(doi, "http"):
		if m := doiPattern.FindString(doi); m != "" {
			doi = m
		}
	case strings.HasPrefix(doi, "doi:"), strings.HasPrefix(doi, "DOI:"):
		doi = strings.TrimSpace(doi[len("doi:"):])
	}

	if doi == "" {
		return "", services.ErrEmptyDOI
	}
	return doi, nil
}

// EscapeDOI percent-encodes a DOI for use in a URL path, keeping '/' separators
func EscapeDOI(doi string) string {
	var sb strings.Builder
	for i := 0; i < len(doi); i++ {
		c := doi[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		fmt.Fprintf(&sb, "%%%02X", c)
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("._~:/-", c) >= 0
}
