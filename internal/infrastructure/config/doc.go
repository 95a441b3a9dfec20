// Package config provides 12-factor configuration management for evalguard.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags override environment variables.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Guard: Rule files and validation policy
//   - Sandbox: Dry-run evaluator pool
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - EVALGUARD_RULES, EVALGUARD_SKIP_SYNTAX_CHECK, EVALGUARD_TRUST_REQUESTS,
//     EVALGUARD_MAX_SNIPPET_BYTES
//   - SANDBOX_ENABLED, SANDBOX_POOL_SIZE, SANDBOX_TIMEOUT
package config
