package link

import (
	"net/url"
	"strings"
)

// Build derives the redemption URL for a token: the base verification URL
// with token merged into any pre-existing query string. A prior token
// parameter is overwritten, every other parameter is preserved. A base that
// does not parse falls back to raw concatenation rather than failing; an
// empty base yields no link and the caller presents the token for manual
// entry instead.
func Build(baseURL, token string) string {
	if baseURL == "" {
		return ""
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		sep := "?"
		if strings.Contains(baseURL, "?") {
			sep = "&"
		}
		return baseURL + sep + "token=" + url.QueryEscape(token)
	}

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
