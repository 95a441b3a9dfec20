package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPage() *Page {
	return &Page{
		Title: "Inbox",
		URL:   "https://mail.example.com/",
		Elements: []Element{
			{TagName: "a", ID: "home", ClassName: "nav active", TextContent: "Home", Attributes: map[string]string{"href": "/"}},
			{TagName: "a", ClassName: "nav", TextContent: "Sent", Attributes: map[string]string{"href": "/sent"}},
			{TagName: "h1", TextContent: "Messages"},
		},
	}
}

func TestRuntimeEvaluate(t *testing.T) {
	rt, err := New(DefaultConfig())
	require.NoError(t, err)
	defer rt.Close()

	tests := []struct {
		name    string
		snippet string
		want    interface{}
	}{
		{name: "expression", snippet: "1 + 1", want: int64(2)},
		{name: "arrow function is called", snippet: "() => 40 + 2", want: int64(42)},
		{name: "document title", snippet: "() => document.title", want: "Inbox"},
		{name: "document URL", snippet: "() => document.URL", want: "https://mail.example.com/"},
		{name: "querySelector by id", snippet: `() => document.querySelector("#home").textContent`, want: "Home"},
		{name: "querySelector by class", snippet: `() => document.querySelector(".active").id`, want: "home"},
		{name: "getAttribute", snippet: `() => document.getElementById("home").getAttribute("href")`, want: "/"},
		{name: "missing element", snippet: `() => document.querySelector("#nope")`, want: nil},
		{name: "querySelectorAll", snippet: `() => document.querySelectorAll(".nav").length`, want: int64(2)},
		{name: "tagName upper-case", snippet: `() => document.querySelector("h1").tagName`, want: "H1"},
		{name: "string methods", snippet: "() => 'hello'.toUpperCase()", want: "HELLO"},
		{name: "statement list", snippet: "const n = 6; n * 7", want: int64(42)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := rt.Evaluate(context.Background(), tt.snippet, testPage())
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Value)
		})
	}
}

func TestRuntimeHostGlobalsRemoved(t *testing.T) {
	rt, err := New(DefaultConfig())
	require.NoError(t, err)
	defer rt.Close()

	for _, name := range []string{"require", "process", "module", "exports"} {
		t.Run(name, func(t *testing.T) {
			result, err := rt.Evaluate(context.Background(), "typeof "+name, nil)
			require.NoError(t, err)
			assert.Equal(t, "undefined", result.Value)
		})
	}
}

func TestRuntimeTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 100 * time.Millisecond

	rt, err := New(cfg)
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.Evaluate(context.Background(), "() => { while (true) {} }", nil)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "execution timeout exceeded")

	// The runtime stays usable after an interrupt
	result, err := rt.Evaluate(context.Background(), "7", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.Value)
}

func TestRuntimeContextCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 10 * time.Second

	rt, err := New(cfg)
	require.NoError(t, err)
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = rt.Evaluate(ctx, "() => { for (;;) {} }", nil)
	assert.Error(t, err)
}

func TestRuntimeConsoleCapture(t *testing.T) {
	rt, err := New(DefaultConfig())
	require.NoError(t, err)
	defer rt.Close()

	snippet := `() => {
		console.log('info', 1);
		console.warn('warning message');
		console.error('error message');
		return 'done';
	}`

	result, err := rt.Evaluate(context.Background(), snippet, nil)
	require.NoError(t, err)
	assert.Equal(t, "done", result.Value)

	require.Len(t, result.Console, 3)
	assert.Equal(t, "log", result.Console[0].Level)
	assert.Equal(t, "info 1", result.Console[0].Message)
	assert.Equal(t, "warn", result.Console[1].Level)
	assert.Equal(t, "error", result.Console[2].Level)
}

func TestRuntimeResetClearsState(t *testing.T) {
	rt, err := New(DefaultConfig())
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.Evaluate(context.Background(), "globalThis.leak = 1", nil)
	require.NoError(t, err)
	require.NoError(t, rt.Reset())

	result, err := rt.Evaluate(context.Background(), "typeof leak", nil)
	require.NoError(t, err)
	assert.Equal(t, "undefined", result.Value)
}

func TestRuntimeClosed(t *testing.T) {
	rt, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, rt.Close())

	_, err = rt.Evaluate(context.Background(), "1", nil)
	assert.ErrorIs(t, err, ErrRuntimeClosed)
}

func TestPageQuery(t *testing.T) {
	page := testPage()

	tests := []struct {
		selector string
		wantLen  int
	}{
		{"#home", 1},
		{".nav", 2},
		{".active", 1},
		{"a", 2},
		{"H1", 1},
		{"#missing", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			assert.Len(t, page.Query(tt.selector), tt.wantLen)
		})
	}

	var nilPage *Page
	assert.Empty(t, nilPage.Query("a"))
}
