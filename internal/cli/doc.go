// Package cli implements the evalguard cobra commands.
package cli
