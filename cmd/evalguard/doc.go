// Package main is the evalguard command.
//
// evalguard screens script snippets before a browser automation tool runs
// them in a page. It can check a single snippet, list the active rule
// catalog, or serve the validation API.
//
// Usage:
//
//	# Check a snippet (exit status 1 when blocked)
//	evalguard check '() => document.title'
//	echo '() => fetch("/x")' | evalguard check
//
//	# Check and dry-run in the sandbox
//	evalguard check --eval --title Inbox '() => document.title'
//
//	# List rules, including rule files
//	evalguard rules --rules 'rules.d/**/*.yaml'
//
//	# Serve the HTTP API
//	evalguard serve --port 8000
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags override environment variables
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown of serve
package main
