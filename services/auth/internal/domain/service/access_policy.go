package service

import (
	"strings"
	"time"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/domain/entity"
)

// MaintenanceRetryAfter is the Retry-After value, in seconds, sent with a
// maintenance response.
const MaintenanceRetryAfter = 3600

// DefaultExtendThreshold extends a session once less than half of the
// configured timeout remains.
const DefaultExtendThreshold = 0.5

// DecisionKind is the outcome of an access decision.
type DecisionKind int

const (
	// DecisionExcluded means the path bypasses the gate entirely.
	DecisionExcluded DecisionKind = iota
	DecisionPassThrough
	DecisionMaintenance
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionExcluded:
		return "excluded"
	case DecisionPassThrough:
		return "pass_through"
	case DecisionMaintenance:
		return "maintenance"
	default:
		return "unknown"
	}
}

// RequestDescriptor is the part of a request the gate looks at.
type RequestDescriptor struct {
	Method string
	Path   string
}

// ExtensionPolicy controls the session extension debounce.
type ExtensionPolicy struct {
	// Threshold is the fraction of the session timeout below which the
	// remaining lifetime triggers an extension. Zero means DefaultExtendThreshold.
	Threshold float64
}

// ExtendSessionEffect asks the caller to slide the session expiry.
type ExtendSessionEffect struct {
	UserID   string
	DeviceID string
}

// AccessDecision is the result of DecideAccess. Effects are requests for
// side work the caller performs without blocking the response.
type AccessDecision struct {
	Kind DecisionKind
	// RetryAfter is set for DecisionMaintenance.
	RetryAfter int
	// FailOpen is set when configuration could not be loaded.
	FailOpen bool
	Extend   *ExtendSessionEffect
}

var excludedPrefixes = []string{
	"/api",
	"/_next",
	"/static",
	"/assets",
	"/maintenance",
	"/favicon",
}

var excludedPaths = map[string]struct{}{
	"/sitemap.xml": {},
	"/robots.txt":  {},
	"/health":      {},
}

// IsExcludedPath reports whether path bypasses the access gate.
func IsExcludedPath(path string) bool {
	if _, ok := excludedPaths[path]; ok {
		return true
	}
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// DecideAccess decides whether a request is served, blocked for maintenance,
// or excluded from the gate, and whether the caller's session should be
// extended. id is nil for anonymous callers. It performs no I/O.
func DecideAccess(
	req RequestDescriptor,
	id *entity.Identity,
	cfg *entity.AppConfig,
	cfgErr error,
	now time.Time,
	policy ExtensionPolicy,
) AccessDecision {
	if IsExcludedPath(req.Path) {
		return AccessDecision{Kind: DecisionExcluded}
	}

	if cfgErr != nil || cfg == nil {
		return AccessDecision{Kind: DecisionPassThrough, FailOpen: true}
	}

	if cfg.MaintenanceMode && !id.IsAdmin() {
		return AccessDecision{Kind: DecisionMaintenance, RetryAfter: MaintenanceRetryAfter}
	}

	decision := AccessDecision{Kind: DecisionPassThrough}
	if shouldExtend(id, cfg, now, policy) {
		decision.Extend = &ExtendSessionEffect{UserID: id.UserID, DeviceID: id.DeviceID}
	}
	return decision
}

func shouldExtend(id *entity.Identity, cfg *entity.AppConfig, now time.Time, policy ExtensionPolicy) bool {
	if id == nil || id.UserID == "" || id.DeviceID == "" || id.SessionExpiresAt == nil {
		return false
	}

	threshold := policy.Threshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultExtendThreshold
	}

	window := time.Duration(float64(cfg.SessionDuration()) * threshold)
	return id.SessionExpiresAt.Sub(now) < window
}
