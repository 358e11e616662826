package utils

// Clearance values a caller may declare in the "clearance" header.
const (
	ClearanceAdmin  = "Admin"
	ClearanceClient = "Client"
)

// AdminClientID is the wildcard tenant id stored on admin-owned campaigns.
const AdminClientID uint = 0

// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
const CORSMaxAge = 86400

// DefaultTrackerPort is the port the tracker endpoint is reachable on when
// no deployment-level tracker host is configured.
const DefaultTrackerPort = 8000

// TrackingPixelBase64 is the fixed 1x1 transparent GIF served by the
// tracker endpoint.
const TrackingPixelBase64 = "R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"

// ContextKey is the type for request-scoped context values.
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserAgentKey ContextKey = "user_agent"
	IPAddressKey ContextKey = "ip_address"
	EndpointKey  ContextKey = "endpoint"
)
