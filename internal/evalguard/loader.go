package evalguard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

var (
	ErrEmptyPattern       = errors.New("rule pattern is empty")
	ErrEmptyDescription   = errors.New("rule description is empty")
	ErrUnsupportedRuleExt = errors.New("unsupported rule file extension")
)

// RuleSpec is the serialized form of a custom rule
type RuleSpec struct {
	Pattern       string `json:"pattern" yaml:"pattern" toml:"pattern"`
	Description   string `json:"description" yaml:"description" toml:"description"`
	Category      string `json:"category,omitempty" yaml:"category,omitempty" toml:"category,omitempty"`
	CaseSensitive bool   `json:"case_sensitive,omitempty" yaml:"case_sensitive,omitempty" toml:"case_sensitive,omitempty"`
}

// RuleFile is the document layout shared by YAML, TOML and JSON rule files
type RuleFile struct {
	Rules []RuleSpec `json:"rules" yaml:"rules" toml:"rules"`
}

// CompileRule turns a spec into a Rule. Patterns are case-insensitive
// unless CaseSensitive is set.
func CompileRule(spec RuleSpec) (Rule, error) {
	if strings.TrimSpace(spec.Pattern) == "" {
		return Rule{}, ErrEmptyPattern
	}
	if strings.TrimSpace(spec.Description) == "" {
		return Rule{}, ErrEmptyDescription
	}

	expr := spec.Pattern
	if !spec.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid pattern %q: %w", spec.Pattern, err)
	}

	category := Category(spec.Category)
	if category == "" {
		category = CategoryCustom
	}

	return Rule{
		Pattern:     re,
		Description: spec.Description,
		Category:    category,
	}, nil
}

// CompileRules compiles specs in order, stopping at the first invalid one
func CompileRules(specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for i, spec := range specs {
		r, err := CompileRule(spec)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// ParseRuleFile decodes rule file contents; format is picked from ext
func ParseRuleFile(data []byte, ext string) ([]Rule, error) {
	var file RuleFile

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
	case ".json":
		if err := sonic.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRuleExt, ext)
	}

	return CompileRules(file.Rules)
}

// LoadRuleFile reads and compiles a single rule file
func LoadRuleFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}

	rules, err := ParseRuleFile(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// LoadRules loads every file matching a doublestar glob such as
// "rules.d/**/*.yaml". Files are read in lexical order. An empty pattern
// yields no rules.
func LoadRules(pattern string) ([]Rule, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, nil
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid rule glob %q: %w", pattern, err)
	}
	sort.Strings(matches)

	var rules []Rule
	for _, path := range matches {
		loaded, err := LoadRuleFile(path)
		if err != nil {
			return nil, err
		}
		rules = append(rules, loaded...)
	}
	return rules, nil
}
