package metrics

import (
	"maps"
	"time"

	obserrors "github.com/target/mmk-ui-session/internal/observability/errors"
	"github.com/target/mmk-ui-session/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Session operations.
const (
	OpLogin        = "login"
	OpProfile      = "profile"
	OpLogout       = "logout"
	OpForcedLogout = "forced_logout"
	OpRequest      = "request"
)

// SessionMetric describes one session lifecycle or gateway operation.
type SessionMetric struct {
	Operation string
	Result    string
	Status    int
	Duration  time.Duration
	Err       error
}

// EmitSessionOperation emits the operation counter and, when measured, its latency.
func EmitSessionOperation(sink statsd.Sink, in SessionMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"operation": in.Operation,
		"result":    in.Result,
	}
	if in.Status > 0 {
		tags["status_class"] = statusClass(in.Status)
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("session.operation", 1, tags)
	if in.Duration > 0 {
		sink.Timing("session.duration", in.Duration, maps.Clone(tags))
	}
}

// EmitSessionState records the derived session state as a 0/1 gauge.
func EmitSessionState(sink statsd.Sink, authenticated bool) {
	if sink == nil {
		return
	}
	v := 0.0
	if authenticated {
		v = 1
	}
	sink.Gauge("session.authenticated", v, nil)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
