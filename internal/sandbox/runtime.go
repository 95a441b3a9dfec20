package sandbox

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
)

// Runtime wraps a goja VM for dry-run evaluation of accepted snippets.
// A Runtime serves one evaluation at a time.
type Runtime struct {
	vm     *goja.Runtime
	config Config
	mu     sync.Mutex

	console   []LogEntry
	consoleMu sync.Mutex
}

// New creates a sandboxed runtime
func New(config Config) (*Runtime, error) {
	r := &Runtime{config: config}
	if err := r.init(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runtime) init() error {
	r.vm = goja.New()
	if r.config.MaxCallStackSize > 0 {
		r.vm.SetMaxCallStackSize(r.config.MaxCallStackSize)
	}
	r.console = nil
	return r.setupGlobals()
}

// Evaluate runs a snippet against page. A snippet that evaluates to a
// function is called with no arguments, mirroring page.evaluate(fn).
func (r *Runtime) Evaluate(ctx context.Context, snippet string, page *Page) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return nil, ErrRuntimeClosed
	}

	start := time.Now()
	r.vm.ClearInterrupt()

	r.consoleMu.Lock()
	r.console = nil
	r.consoleMu.Unlock()

	if err := r.injectPage(page); err != nil {
		return nil, fmt.Errorf("failed to inject page: %w", err)
	}

	// The watcher must exit before we return so a late interrupt never
	// lands on the next evaluation.
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func(vm *goja.Runtime) {
		defer wg.Done()
		r.watch(ctx, vm, done)
	}(r.vm)

	val, err := r.run(snippet)
	close(done)
	wg.Wait()

	result := &Result{Duration: time.Since(start)}
	r.consoleMu.Lock()
	result.Console = append([]LogEntry{}, r.console...)
	r.consoleMu.Unlock()

	if err != nil {
		return result, err
	}
	result.Value = exportValue(val)
	return result, nil
}

// watch interrupts the VM on timeout or cancellation until done closes
func (r *Runtime) watch(ctx context.Context, vm *goja.Runtime, done <-chan struct{}) {
	timeout := r.config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-timer.C:
		vm.Interrupt("execution timeout exceeded")
	case <-ctx.Done():
		vm.Interrupt("context cancelled")
	case <-done:
	}
}

// run evaluates snippet as an expression, falling back to a statement list
// for snippets that do not parse as one.
func (r *Runtime) run(snippet string) (goja.Value, error) {
	prog, err := goja.Compile("snippet", "("+snippet+"\n)", false)
	if err != nil {
		prog, err = goja.Compile("snippet", snippet, false)
		if err != nil {
			return nil, err
		}
	}
	val, err := r.vm.RunProgram(prog)
	if err != nil {
		return nil, err
	}
	if fn, ok := goja.AssertFunction(val); ok {
		return fn(goja.Undefined())
	}
	return val, nil
}

// setupGlobals strips host globals and installs console and timer stubs
func (r *Runtime) setupGlobals() error {
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := r.vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		for _, level := range []string{"log", "warn", "error", "info"} {
			if err := console.Set(level, r.makeConsoleFunc(level)); err != nil {
				return err
			}
		}
		if err := r.vm.Set("console", console); err != nil {
			return err
		}
	}

	// Timers never fire inside a dry run
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	for _, name := range []string{"setTimeout", "setInterval"} {
		if err := r.vm.Set(name, noop); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

// injectPage exposes page as a read-only `document`
func (r *Runtime) injectPage(page *Page) error {
	if page == nil {
		page = &Page{}
	}

	document := r.vm.NewObject()
	if err := document.Set("title", page.Title); err != nil {
		return err
	}
	if err := document.Set("URL", page.URL); err != nil {
		return err
	}
	if err := document.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		matches := page.Query(call.Argument(0).String())
		if len(matches) == 0 {
			return goja.Null()
		}
		return r.vm.ToValue(r.elementProxy(matches[0]))
	}); err != nil {
		return err
	}
	if err := document.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		matches := page.Query(call.Argument(0).String())
		proxies := make([]interface{}, len(matches))
		for i, m := range matches {
			proxies[i] = r.elementProxy(m)
		}
		return r.vm.ToValue(proxies)
	}); err != nil {
		return err
	}
	if err := document.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		matches := page.Query("#" + call.Argument(0).String())
		if len(matches) == 0 {
			return goja.Null()
		}
		return r.vm.ToValue(r.elementProxy(matches[0]))
	}); err != nil {
		return err
	}

	return r.vm.Set("document", document)
}

func (r *Runtime) elementProxy(elem Element) map[string]interface{} {
	return map[string]interface{}{
		"tagName":     strings.ToUpper(elem.TagName),
		"id":          elem.ID,
		"className":   elem.ClassName,
		"textContent": elem.TextContent,
		"getAttribute": func(name string) interface{} {
			if v, ok := elem.Attributes[name]; ok {
				return v
			}
			return nil
		},
	}
}

func exportValue(val goja.Value) interface{} {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}

// Reset replaces the VM so no state leaks between evaluations
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.init()
}

// Close releases the VM
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.console = nil
	return nil
}
