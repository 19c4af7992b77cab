package log

// Field names shared by every component.
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldQuery        = "query"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldUserAgent    = "user_agent"
	FieldSuccess      = "success"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldRecord       = "record"
	FieldRecordID     = "record_id"
	FieldBusinessUnit = "business_unit_id"
	FieldExpenseType  = "expense_type_id"
	FieldAmountCents  = "amount_cents"
	FieldDate         = "date"
	FieldReport       = "report"
	FieldFilter       = "filter"
	FieldCacheHit     = "cache_hit"
	FieldReliability  = "reliability"
	FieldSamples      = "samples"
)

// Components
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentAnalytics = "analytics"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentScheduler = "scheduler"
	ComponentCache     = "cache"
	ComponentNotify    = "notify"
	ComponentSeed      = "seed"
	ComponentCLI       = "cli"
)

// Operations
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpList     = "list"
	OpReport   = "report"
	OpProject  = "project"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpNotify   = "notify"
	OpValidate = "validate"
	OpParse    = "parse"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error message; nil errors are skipped.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the kind and id of a stored record (expense, income, ...).
func (f LogFields) WithRecord(kind string, id int64) LogFields {
	f[FieldRecord] = kind
	f[FieldRecordID] = id
	return f
}

// WithExpense adds the fields identifying an expense booking.
func (f LogFields) WithExpense(unitID, typeID *int64, amountCents int64, date string) LogFields {
	if unitID != nil {
		f[FieldBusinessUnit] = *unitID
	}
	if typeID != nil {
		f[FieldExpenseType] = *typeID
	}
	f[FieldAmountCents] = amountCents
	f[FieldDate] = date
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

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
