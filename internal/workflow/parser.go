package workflow

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadPlans loads one or more plans from a YAML or JSON file. Supports files
// containing multiple YAML documents separated by `---`. Empty documents are
// ignored.
func LoadPlans(path string) ([]Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodePlans(data, path)
}

// DecodePlans is LoadPlans over an in-memory buffer; source only labels errors.
func DecodePlans(data []byte, source string) ([]Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var plans []Plan
	for {
		var p Plan
		if err := dec.Decode(&p); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode %s: %w", source, err)
		}
		// skip completely empty docs
		if p.WorkflowName == "" && len(p.Steps) == 0 {
			continue
		}
		plans = append(plans, p)
	}

	if len(plans) == 0 {
		return nil, fmt.Errorf("no workflows found in %s", source)
	}
	return plans, nil
}

// LoadDocument reads the first document of a plan file as a generic map,
// keeping the distinction between absent and empty fields that QuickValidate
// relies on.
func LoadDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}
