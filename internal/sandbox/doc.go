/*
Package sandbox evaluates accepted snippets in a local goja runtime.

# Overview

The production browser driver runs snippets inside a real page. This package
gives operators a dry run: after a snippet passes validation it can be
evaluated against a static Page to preview its result and console output.

Each runtime has:

  - Host globals removed (require, process, module, exports)
  - A timeout enforced through VM interrupts
  - Console capture
  - A read-only `document` built from a Page (title, URL, querySelector,
    querySelectorAll, getElementById)

Snippets that evaluate to a function are called with no arguments, the same
convention page.evaluate uses.

# Usage Example

	pool, err := sandbox.NewPool(sandbox.DefaultConfig(), 4)
	if err != nil {
		return err
	}
	defer pool.Close()

	result, err := pool.Evaluate(ctx, "() => document.title", &sandbox.Page{Title: "Inbox"})
*/
package sandbox
