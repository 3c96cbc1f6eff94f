package log

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldUserID    = "user_id"
	FieldExpenseID = "id"
	FieldBackend   = "backend"
	FieldTransport = "transport"
)

// Components defines standard component names.
const (
	ComponentApp      = "app"
	ComponentMCP      = "mcp"
	ComponentStorage  = "storage"
	ComponentIdentity = "identity"
	ComponentEvents   = "events"
	ComponentBackend  = "backend"
	ComponentTaxonomy = "taxonomy"
)
