package log

import "strings"

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldDomain     = "domain"
	FieldFunction   = "function"
	FieldCacheKey   = "cache_key"
	FieldRecords    = "records"
	FieldForced     = "forced"
	FieldSlide      = "slide"
	FieldBackend    = "backend"
	FieldPayload    = "payload"
	FieldBytes      = "bytes"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentRPC         = "rpc"
	ComponentLeaderboard = "leaderboard"
	ComponentStorage     = "storage"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentSheets      = "sheets"
	ComponentCache       = "cache"
	ComponentSlides      = "slides"
	ComponentSecurity    = "security"
	ComponentRateLimit   = "rate_limit"
	ComponentTrace       = "trace"
	ComponentBackend     = "backend"
	ComponentTemplate    = "template"
	ComponentKiosk       = "kiosk"
)

// Operations defines standard operation names
const (
	OpFetch    = "fetch"
	OpRefetch  = "refetch"
	OpRead     = "read"
	OpReplace  = "replace"
	OpNotify   = "notify"
	OpReload   = "reload"
	OpValidate = "validate"
	OpParse    = "parse"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Domains names the two leaderboards
const (
	DomainAttendance = "attendance"
	DomainCompletion = "completion"
)

// CanonicalDomain maps a domain name to its Domain constant. "brag" is
// accepted for completion, matching the slide names.
func CanonicalDomain(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case DomainAttendance:
		return DomainAttendance, true
	case DomainCompletion, "brag":
		return DomainCompletion, true
	}
	return "", false
}

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithClientIP adds client IP field
func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithQuery adds leaderboard query fields
func (f LogFields) WithQuery(domain, key string) LogFields {
	f[FieldDomain] = domain
	f[FieldCacheKey] = key
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
