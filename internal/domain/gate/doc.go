// Package gate applies snippet validation policy for a deployment.
//
// A Gate combines the evalguard validator with rules loaded from files,
// per-request options, metrics and logging. Snippets flow one way:
//
//	snippet + request -> size check -> evalguard.Validate -> verdict
//	                                                       -> (safe) sandbox dry run
//
// Requests may add custom rules and skip the syntax check. AllowDangerous is
// honored only when the gate is configured to trust requests.
package gate
