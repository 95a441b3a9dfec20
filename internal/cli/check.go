package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/evalguard/internal/domain/gate"
	"github.com/GriffinCanCode/evalguard/internal/evalguard"
	"github.com/GriffinCanCode/evalguard/internal/sandbox"
)

type checkOptions struct {
	file            string
	rulesGlob       string
	block           []string
	caseSensitive   bool
	allowDangerous  bool
	skipSyntaxCheck bool
	eval            bool
	title           string
	url             string
	format          string
}

// checkOutput is the structured verdict
type checkOutput struct {
	Safe           bool               `json:"safe" yaml:"safe"`
	Reason         string             `json:"reason,omitempty" yaml:"reason,omitempty"`
	BlockedPattern string             `json:"blocked_pattern,omitempty" yaml:"blocked_pattern,omitempty"`
	Category       evalguard.Category `json:"category,omitempty" yaml:"category,omitempty"`
	Error          string             `json:"error,omitempty" yaml:"error,omitempty"`
	Name           string             `json:"name,omitempty" yaml:"name,omitempty"`
	Value          interface{}        `json:"value,omitempty" yaml:"value,omitempty"`
	Console        []sandbox.LogEntry `json:"console,omitempty" yaml:"console,omitempty"`
	EvalError      string             `json:"eval_error,omitempty" yaml:"eval_error,omitempty"`
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [snippet]",
		Short: "Validate a snippet",
		Long: "Validates a snippet given as an argument, with --file, or on stdin.\n\n" +
			"Exit code 0 if the snippet is safe, 1 if it is blocked, 2 on error.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, root, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.file, "file", "", "Read the snippet from a file")
	f.StringVar(&opts.rulesGlob, "rules", "", "Glob of rule files (overrides EVALGUARD_RULES)")
	f.StringArrayVar(&opts.block, "block", nil, "Extra blocked pattern (repeatable)")
	f.BoolVar(&opts.caseSensitive, "case-sensitive", false, "Compile --block patterns case-sensitively")
	f.BoolVar(&opts.allowDangerous, "allow-dangerous", false, "Skip every check")
	f.BoolVar(&opts.skipSyntaxCheck, "skip-syntax-check", false, "Skip the function-body parse")
	f.BoolVar(&opts.eval, "eval", false, "Dry-run a safe snippet in the sandbox")
	f.StringVar(&opts.title, "title", "", "document.title for --eval")
	f.StringVar(&opts.url, "url", "", "document.URL for --eval")
	f.StringVarP(&opts.format, "format", "f", formatText, "Output format (text|json|yaml)")
	return cmd
}

func runCheck(cmd *cobra.Command, root *rootOptions, opts *checkOptions, args []string) error {
	if err := validateFormat(opts.format); err != nil {
		return err
	}

	snippet, err := readSnippet(cmd.InOrStdin(), opts.file, args)
	if err != nil {
		return err
	}

	g, closeFn, err := buildGate(root, opts)
	if err != nil {
		return err
	}
	defer closeFn()

	req := gate.Request{
		AllowDangerous:  opts.allowDangerous,
		SkipSyntaxCheck: opts.skipSyntaxCheck,
	}
	result, err := g.Check(snippet, req)
	if err != nil {
		return err
	}

	out := checkOutput{
		Safe:           result.Safe,
		Reason:         result.Reason,
		BlockedPattern: result.BlockedPattern,
		Category:       result.Category,
	}
	if !result.Safe {
		secErr := evalguard.ToError(result)
		out.Error = secErr.Error()
		out.Name = secErr.Name()
	} else if opts.eval {
		page := &sandbox.Page{Title: opts.title, URL: opts.url}
		evalResult, err := g.Evaluate(cmd.Context(), snippet, page, req)
		if evalResult != nil {
			out.Value = evalResult.Value
			out.Console = evalResult.Console
		}
		if err != nil {
			out.EvalError = err.Error()
		}
	}

	if err := writeCheck(cmd.OutOrStdout(), opts.format, out); err != nil {
		return err
	}
	if !result.Safe {
		return ErrBlocked
	}
	if out.EvalError != "" {
		return errors.New(out.EvalError)
	}
	return nil
}

// buildGate applies CLI flags on top of the environment configuration
func buildGate(root *rootOptions, opts *checkOptions) (*gate.Gate, func(), error) {
	cfg := root.cfg

	glob := cfg.Guard.RulesGlob
	if opts.rulesGlob != "" {
		glob = opts.rulesGlob
	}
	custom, err := evalguard.LoadRules(glob)
	if err != nil {
		return nil, nil, err
	}
	for _, pattern := range opts.block {
		r, err := evalguard.CompileRule(evalguard.RuleSpec{
			Pattern:       pattern,
			Description:   pattern,
			CaseSensitive: opts.caseSensitive,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("--block: %w", err)
		}
		custom = append(custom, r)
	}

	// The caller of a local command is trusted
	g := gate.New(evalguard.New(), gate.Config{
		CustomRules:     custom,
		SkipSyntaxCheck: cfg.Guard.SkipSyntaxCheck,
		TrustRequests:   true,
		MaxSnippetBytes: cfg.Guard.MaxSnippetBytes,
	}, root.logger())

	closeFn := func() {}
	if opts.eval {
		sbCfg := sandbox.DefaultConfig()
		sbCfg.Timeout = cfg.Sandbox.Timeout
		rt, err := sandbox.New(sbCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create sandbox: %w", err)
		}
		g.WithEvaluator(rt)
		closeFn = func() { rt.Close() }
	}
	return g, closeFn, nil
}

func readSnippet(stdin io.Reader, file string, args []string) (string, error) {
	switch {
	case len(args) == 1 && file != "":
		return "", errors.New("pass the snippet as an argument or with --file, not both")
	case len(args) == 1:
		return args[0], nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read snippet: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}

func writeCheck(w io.Writer, format string, out checkOutput) error {
	if format != formatText {
		return writeStructured(w, format, out)
	}

	if !out.Safe {
		fmt.Fprintf(w, "BLOCKED  %s\n", out.Error)
		if out.BlockedPattern != "" {
			fmt.Fprintf(w, "  pattern:  %s\n", out.BlockedPattern)
		}
		if out.Category != "" {
			fmt.Fprintf(w, "  category: %s\n", out.Category)
		}
		return nil
	}

	fmt.Fprintln(w, "SAFE")
	for _, entry := range out.Console {
		fmt.Fprintf(w, "  console.%s: %s\n", entry.Level, entry.Message)
	}
	if out.EvalError != "" {
		fmt.Fprintf(w, "  eval error: %s\n", strings.TrimSpace(out.EvalError))
	} else if out.Value != nil {
		fmt.Fprintf(w, "  value: %v\n", out.Value)
	}
	return nil
}
