package cli

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q (text|json|yaml)", format)
	}
}

// writeStructured encodes v as JSON or YAML
func writeStructured(w io.Writer, format string, v interface{}) error {
	var (
		out []byte
		err error
	)
	switch format {
	case formatYAML:
		out, err = yaml.Marshal(v)
	default:
		out, err = sonic.ConfigStd.MarshalIndent(v, "", "  ")
		if err == nil {
			out = append(out, '\n')
		}
	}
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = w.Write(out)
	return err
}
