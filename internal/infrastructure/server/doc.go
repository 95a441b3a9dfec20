// Package server wires configuration, the gate, the sandbox pool and the
// HTTP API into a runnable service.
package server
