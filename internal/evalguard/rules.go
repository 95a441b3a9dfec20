package evalguard

import (
	"regexp"
)

// Category groups rules by the capability they block
type Category string

const (
	CategoryNetwork    Category = "network"
	CategoryCode       Category = "code"
	CategoryStorage    Category = "storage"
	CategoryDOM        Category = "dom"
	CategoryCredential Category = "credential"
	CategoryNavigation Category = "navigation"
	CategoryWorker     Category = "worker"
	CategoryCustom     Category = "custom"
)

// Rule pairs a detector with the label reported when it matches.
// Description is part of the error text callers see and match on.
type Rule struct {
	Pattern     *regexp.Regexp
	Description string
	Category    Category
}

// Source returns the pattern source reported as Result.BlockedPattern
func (r Rule) Source() string {
	if r.Pattern == nil {
		return ""
	}
	return r.Pattern.String()
}

func rule(expr, description string, category Category) Rule {
	return Rule{
		Pattern:     regexp.MustCompile(`(?i)` + expr),
		Description: description,
		Category:    category,
	}
}

// defaultRules is compiled once and never mutated; order is significant.
var defaultRules = []Rule{
	// Network egress
	rule(`\bfetch\s*\(`, "fetch() - network request", CategoryNetwork),
	rule(`\bXMLHttpRequest\b`, "XMLHttpRequest - network request", CategoryNetwork),
	rule(`\bWebSocket\b`, "WebSocket - network connection", CategoryNetwork),
	rule(`\bnavigator\.sendBeacon\b`, "navigator.sendBeacon - network request", CategoryNetwork),

	// Dynamic loading
	rule(`\bimport\s*\(`, "import() - dynamic import", CategoryCode),
	rule(`\brequire\s*\(`, "require() - module loading", CategoryCode),

	// Persistent storage
	rule(`\blocalStorage\b`, "localStorage - storage access", CategoryStorage),
	rule(`\bsessionStorage\b`, "sessionStorage - storage access", CategoryStorage),
	rule(`\bIndexedDB\b`, "IndexedDB - storage access", CategoryStorage),
	rule(`\bdocument\.cookie\b`, "document.cookie - cookie access", CategoryStorage),

	// DOM and code execution
	rule(`\bdocument\.write\b`, "document.write - DOM manipulation", CategoryDOM),
	rule(`\beval\s*\(`, "eval() - code execution", CategoryCode),
	rule(`\bFunction\s*\(`, "Function() constructor - code execution", CategoryCode),

	// Credentials (intentionally broad)
	rule(`\bcredentials\b`, "credentials - credential access", CategoryCredential),
	rule(`\bpassword\b`, "password - credential access", CategoryCredential),

	// Navigation
	rule(`\blocation\.href\s*=`, "location.href = - navigation", CategoryNavigation),
	rule(`\blocation\.replace\b`, "location.replace() - navigation", CategoryNavigation),
	rule(`\blocation\.assign\b`, "location.assign() - navigation", CategoryNavigation),

	// Background persistence
	rule(`\bServiceWorker\b`, "ServiceWorker - background script", CategoryWorker),
	rule(`\bnavigator\.serviceWorker\b`, "navigator.serviceWorker - background script", CategoryWorker),
}

// DefaultRules returns a copy of the built-in catalog in evaluation order
func DefaultRules() []Rule {
	return append([]Rule(nil), defaultRules...)
}
