package ipapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/discord-verifier/internal/domain"
)

// fieldMask selects the ip-api.com response fields the audit embeds use
// (status, message, country, regionName, city, zip, lat, lon, timezone, isp,
// org, as, mobile, proxy, hosting).
const fieldMask = "16976857"

const defaultBaseURL = "http://ip-api.com"

// Enricher resolves best-effort location/ISP metadata for a client IP.
// A nil result means "no data"; callers degrade instead of failing.
type Enricher interface {
	Lookup(ctx context.Context, ip string) *domain.IPInfo
}

type client struct {
	log     *slog.Logger
	http    *http.Client
	baseURL string
}

// NewClient returns an ip-api.com backed Enricher. Lookups use a short fixed
// timeout and are not retried.
func NewClient(log *slog.Logger) Enricher {
	return &client{
		log:     log,
		http:    &http.Client{Timeout: 5 * time.Second},
		baseURL: defaultBaseURL,
	}
}

func (c *client) Lookup(ctx context.Context, ip string) *domain.IPInfo {
	url := fmt.Sprintf("%s/json/%s?fields=%s", c.baseURL, ip, fieldMask)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.log.Warn("ip lookup request build failed", "ip", ip, "err", err)
		return nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("ip lookup failed", "ip", ip, "err", err)
		return nil
	}
	defer resp.Body.Close()

	var info domain.IPInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		c.log.Warn("ip lookup decode failed", "ip", ip, "err", err)
		return nil
	}
	if info.Status == "fail" {
		c.log.Warn("ip lookup rejected", "ip", ip, "reason", info.Message)
		return nil
	}
	return &info
}
