package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/evalguard/internal/evalguard"
)

func execute(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	code := run(cmd, args)
	return code, stdout.String(), stderr.String()
}

func TestCheckExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		stdin    string
		args     []string
		wantCode int
		wantOut  string
	}{
		{
			name:     "safe argument",
			args:     []string{"check", "() => document.title"},
			wantCode: ExitOK,
			wantOut:  "SAFE",
		},
		{
			name:     "blocked argument",
			args:     []string{"check", `() => fetch("https://evil.com")`},
			wantCode: ExitBlocked,
			wantOut:  "Browser evaluation blocked: Dangerous pattern detected: fetch() - network request",
		},
		{
			name:     "stdin",
			stdin:    "() => localStorage.getItem('k')",
			args:     []string{"check"},
			wantCode: ExitBlocked,
			wantOut:  "localStorage - storage access",
		},
		{
			name:     "allow dangerous",
			args:     []string{"check", "--allow-dangerous", `() => eval("1")`},
			wantCode: ExitOK,
			wantOut:  "SAFE",
		},
		{
			name:     "syntax error",
			args:     []string{"check", "() => {{{"},
			wantCode: ExitBlocked,
			wantOut:  "Invalid function syntax:",
		},
		{
			name:     "skip syntax check",
			args:     []string{"check", "--skip-syntax-check", "() => {{{"},
			wantCode: ExitOK,
		},
		{
			name:     "extra blocked pattern",
			args:     []string{"check", "--block", `\bpostMessage\b`, "() => window.postMessage(1)"},
			wantCode: ExitBlocked,
			wantOut:  "category: custom",
		},
		{
			name:     "unknown format",
			args:     []string{"check", "--format", "xml", "() => 1"},
			wantCode: ExitError,
		},
		{
			name:     "too many arguments",
			args:     []string{"check", "a", "b"},
			wantCode: ExitError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, _ := execute(t, tt.stdin, tt.args...)
			assert.Equal(t, tt.wantCode, code, out)
			if tt.wantOut != "" {
				assert.Contains(t, out, tt.wantOut)
			}
		})
	}
}

func TestCheckFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippet.js")
	require.NoError(t, os.WriteFile(path, []byte("() => document.cookie"), 0o644))

	code, out, _ := execute(t, "", "check", "--file", path)
	assert.Equal(t, ExitBlocked, code)
	assert.Contains(t, out, "document.cookie - cookie access")

	code, _, stderr := execute(t, "", "check", "--file", path, "() => 1")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "not both")
}

func TestCheckJSONOutput(t *testing.T) {
	code, out, _ := execute(t, "", "check", "-f", "json", "() => new WebSocket('ws://x')")
	require.Equal(t, ExitBlocked, code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, false, got["safe"])
	assert.Equal(t, evalguard.ErrorName, got["name"])
	assert.Equal(t, "network", got["category"])
	assert.Equal(t, `(?i)\bWebSocket\b`, got["blocked_pattern"])
}

func TestCheckYAMLOutput(t *testing.T) {
	code, out, _ := execute(t, "", "check", "-f", "yaml", "() => 1")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "safe: true")
}

func TestCheckEval(t *testing.T) {
	code, out, _ := execute(t, "", "check", "--eval", "--title", "Inbox",
		"() => { console.log('hi'); return document.title }")
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, "console.log: hi")
	assert.Contains(t, out, "value: Inbox")
}

func TestCheckEvalScriptError(t *testing.T) {
	code, out, _ := execute(t, "", "check", "--eval", "() => { throw new Error('nope') }")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, out, "eval error:")
}

func TestRules(t *testing.T) {
	code, out, _ := execute(t, "", "rules")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "fetch() - network request")
	assert.Contains(t, out, "navigator.serviceWorker - background script")
}

func TestRulesWithFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "team"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "team", "extra.toml"), []byte(`
[[rules]]
pattern = '\bpostMessage\b'
description = "postMessage - messaging"
category = "network"
`), 0o644))

	code, out, _ := execute(t, "", "rules", "-f", "json", "--rules", filepath.Join(dir, "**", "*.toml"))
	require.Equal(t, ExitOK, code)

	var rows []ruleRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, len(evalguard.DefaultRules())+1)
	last := rows[len(rows)-1]
	assert.Equal(t, "postMessage - messaging", last.Description)
	assert.Equal(t, "file", last.Source)
	assert.Equal(t, evalguard.Category("network"), last.Category)
}
