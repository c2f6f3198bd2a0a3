package playlist

import (
	"regexp"
	"strings"
)

var (
	tvgNameRegex    = regexp.MustCompile(`tvg-name="([^"]*)"`)
	tvgLogoRegex    = regexp.MustCompile(`tvg-logo="([^"]*)"`)
	groupTitleRegex = regexp.MustCompile(`group-title="([^"]*)"`)
)

// DisplayName extracts the display name from an EXTINF line.
// Display name is the text after the last comma in
// `#EXTINF:-1 tvg-logo="..." group-title="...",Channel Name`.
// A line without any comma is its own display name. Returns empty string if
// the line is not an EXTINF line.
func DisplayName(extinf string) string {
	if !strings.HasPrefix(extinf, extinfPrefix) {
		return ""
	}

	commaIdx := strings.LastIndex(extinf, ",")
	if commaIdx == -1 {
		return strings.TrimSpace(extinf)
	}

	return strings.TrimSpace(extinf[commaIdx+1:])
}

// GroupTitle extracts the first group-title attribute from an EXTINF line.
// Blank values are reported as "".
func GroupTitle(extinf string) string {
	return attribute(groupTitleRegex, extinf)
}

// TvgLogo extracts the first tvg-logo attribute from an EXTINF line.
func TvgLogo(extinf string) string {
	return attribute(tvgLogoRegex, extinf)
}

// TvgName extracts the first tvg-name attribute from an EXTINF line.
// The parser does not use it for naming; it is exposed for tooling.
func TvgName(extinf string) string {
	return attribute(tvgNameRegex, extinf)
}

func attribute(re *regexp.Regexp, extinf string) string {
	if !strings.HasPrefix(extinf, extinfPrefix) {
		return ""
	}

	matches := re.FindStringSubmatch(extinf)
	if len(matches) < 2 || strings.TrimSpace(matches[1]) == "" {
		return ""
	}
	return matches[1]
}
