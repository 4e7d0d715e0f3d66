package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod    = "method"
	AttrPath      = "path"
	AttrStatus    = "status"
	AttrCommand   = "command"
	AttrOutcome   = "outcome"
	AttrFrom      = "from"
	AttrTo        = "to"
	AttrCause     = "cause"
	AttrEventType = "event_type"
)
