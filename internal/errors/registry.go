package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://hostdom.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// DOM Errors (E100-E199)
	// ============================================

	"E100": {
		Category: CategoryDOM,
		Message:  "Nil node",
		Detail:   "A tree operation was given a nil node. Create nodes through the owning Document.",
		DocURL:   docBase + "E100",
	},
	"E101": {
		Category: CategoryDOM,
		Message:  "Hierarchy request error",
		Detail:   "A node cannot be inserted into itself or into one of its own descendants.",
		DocURL:   docBase + "E101",
	},
	"E102": {
		Category: CategoryDOM,
		Message:  "Node is not a child",
		Detail:   "The reference node passed to insertBefore or replaceChild is not a child of the parent.",
		DocURL:   docBase + "E102",
	},
	"E103": {
		Category: CategoryDOM,
		Message:  "Operation not supported on this node type",
		Detail:   "Documents and fragments have no text content of their own.",
		DocURL:   docBase + "E103",
	},
	"E104": {
		Category: CategoryDOM,
		Message:  "Node belongs to another session or document",
		Detail:   "Nodes can only be attached to trees of the same document. A document is replaced by CreateDocument and ends with Dispose.",
		DocURL:   docBase + "E104",
	},

	// ============================================
	// Config Errors (E200-E299)
	// ============================================

	"E200": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "hostdom.json could not be read or parsed.",
		DocURL:   docBase + "E200",
	},
	"E201": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or of the wrong kind.",
		DocURL:   docBase + "E201",
	},
	"E202": {
		Category: CategoryConfig,
		Message:  "Invalid component table",
		Detail:   "The component type table could not be parsed.",
		DocURL:   docBase + "E202",
	},
	"E203": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No hostdom.json was found in the given directory.",
		DocURL:   docBase + "E203",
	},

	// ============================================
	// Protocol Errors (E300-E399)
	// ============================================

	"E300": {
		Category: CategoryProtocol,
		Message:  "Malformed frame",
		Detail:   "A frame header or payload could not be decoded.",
		DocURL:   docBase + "E300",
	},
	"E301": {
		Category: CategoryProtocol,
		Message:  "Handshake failed",
		Detail:   "The host did not complete the handshake or sent an incompatible protocol version.",
		DocURL:   docBase + "E301",
	},
	"E302": {
		Category: CategoryProtocol,
		Message:  "Journal archive corrupted",
		Detail:   "A journal archive entry is truncated or has an invalid length prefix.",
		DocURL:   docBase + "E302",
	},
	"E303": {
		Category: CategoryProtocol,
		Message:  "Resync not possible",
		Detail:   "Some of the calls the host missed have already left the journal. The host must rebuild from a fresh document.",
		DocURL:   docBase + "E303",
	},

	// ============================================
	// Host Errors (E400-E499)
	// ============================================

	"E400": {
		Category: CategoryHost,
		Message:  "Host call failed",
		Detail:   "The host adapter returned an error while applying a view operation.",
		DocURL:   docBase + "E400",
	},
	"E401": {
		Category: CategoryHost,
		Message:  "Unknown view",
		Detail:   "The host has no view registered under this tag.",
		DocURL:   docBase + "E401",
	},
	"E402": {
		Category: CategoryHost,
		Message:  "Invalid manageChildren indices",
		Detail:   "A move, add or remove index is outside the container's children.",
		DocURL:   docBase + "E402",
	},

	// ============================================
	// CLI Errors (E500-E599)
	// ============================================

	"E500": {
		Category: CategoryCLI,
		Message:  "Missing argument",
		Detail:   "The command requires an argument that was not provided.",
		DocURL:   docBase + "E500",
	},
}

// Lookup returns the template for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered codes in no particular order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for c := range registry {
		codes = append(codes, c)
	}
	return codes
}
