package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm         ChromeClass = "gp-form"
	ClassField        ChromeClass = "gp-field"
	ClassActions      ChromeClass = "gp-actions"
	ClassNav          ChromeClass = "gp-nav"
	ClassNotice       ChromeClass = "gp-notice"
	ClassPlayersBadge ChromeClass = "gp-players-online"
)

// Invalid inputs carry this class alongside a sibling error message element,
// matching the markup client-side scripts and stylesheets key off.
const (
	InvalidInputClass = "is-invalid"
	ErrorMessageClass = "error-message"
)
