package export

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

func renderYAML(plan workflow.Plan, out *workflow.ExportResult) (err error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	// yaml.v3 panics rather than erroring on some values (channels, funcs)
	// nested in a config map.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("yaml: %v", r)
		}
	}()
	if err := enc.Encode(plan); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	out.YAMLContent = buf.String()
	return nil
}
