package config

// DefaultReadOnlyMethods carry no meaningful request body
var DefaultReadOnlyMethods = []string{"GET", "DELETE", "HEAD", "OPTIONS", "TRACE"}

// DefaultPayloadMethods carry a request payload
var DefaultPayloadMethods = []string{"POST", "PUT", "PATCH"}

// DefaultParseableTypes are bound like primitives without needing a parser annotation
var DefaultParseableTypes = []string{
	"uuid.UUID",
	"time.Time",
	"time.Duration",
	"net.IP",
	"netip.Addr",
	"url.URL",
	"big.Int",
}

// DefaultHeaderLikeNames are parameter names that usually mean an HTTP header
var DefaultHeaderLikeNames = []string{
	"Accept",
	"Accept-Language",
	"Authorization",
	"Cookie",
	"Content-Type",
	"ETag",
	"If-Match",
	"If-None-Match",
	"Origin",
	"Referer",
	"User-Agent",
	"Api-Key",
}

// Router dialects that can be probed
const (
	TargetEcho  = "echo"
	TargetGin   = "gin"
	TargetFiber = "fiber"
)

// KnownTargets lists every supported router dialect
var KnownTargets = []string{TargetEcho, TargetFiber, TargetGin}
