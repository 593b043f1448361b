package domain

// IPInfo is the best-effort enrichment result for a client IP. A nil *IPInfo
// means the lookup failed or timed out; audit records then show "Unknown"
// fields instead of aborting.
type IPInfo struct {
	ISP      string  `json:"isp"`
	ASN      string  `json:"as"`
	Country  string  `json:"country"`
	Region   string  `json:"regionName"`
	City     string  `json:"city"`
	Zip      string  `json:"zip"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
	Mobile   bool    `json:"mobile"`
	Proxy    bool    `json:"proxy"`
	Hosting  bool    `json:"hosting"`

	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Org     string `json:"org,omitempty"`
}

// VisitRecord is the transient tuple assembled for one page visit and handed
// to the fan-out sinks. It is discarded after dispatch.
type VisitRecord struct {
	ID        string
	IP        string
	UserAgent string
	Path      string
	OS        string
	Browser   string
	Info      *IPInfo
}

// VerificationRecord is the transient tuple assembled for one completed
// redemption.
type VerificationRecord struct {
	ID        string
	IP        string
	UserAgent string
	OS        string
	Browser   string
	Info      *IPInfo
	User      PendingVerification
}
