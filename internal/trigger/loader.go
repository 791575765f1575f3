package trigger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quiverhq/quiver/pkg/model"
)

// LoadTriggersFromFile reads trigger definitions from a JSON or YAML file,
// dispatching on the file extension. Every definition is validated; a
// single invalid definition rejects the whole file so a partially loaded
// trigger set can never be installed.
func LoadTriggersFromFile(path string) ([]*model.TriggerDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trigger file: %w", err)
	}

	var defs []*model.TriggerDefinition
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &defs)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &defs)
	default:
		return nil, fmt.Errorf("unsupported trigger file format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for _, def := range defs {
		if err := model.Validate(def); err != nil {
			return nil, err
		}
	}
	return defs, nil
}
