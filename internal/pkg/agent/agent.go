package agent

import (
	"fmt"
	"strings"

	"github.com/mileusna/useragent"
)

const unknown = "Unknown"

// Detect parses a raw User-Agent header into a human-readable (OS, browser)
// pair. Unparsable input degrades to "Unknown" rather than erroring; audit
// records are best-effort.
func Detect(rawUA string) (osName, browser string) {
	if strings.TrimSpace(rawUA) == "" {
		return unknown, unknown
	}

	ua := useragent.Parse(rawUA)

	osName = ua.OS
	if osName == "" {
		osName = unknown
	} else if ua.OSVersion != "" {
		osName = fmt.Sprintf("%s %s", ua.OS, ua.OSVersion)
	}

	browser = ua.Name
	if browser == "" {
		browser = unknown
	} else if ua.Version != "" {
		browser = fmt.Sprintf("%s %s", ua.Name, ua.Version)
	}
	return osName, browser
}
