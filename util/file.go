package util

import (
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

func ReadFileYAML(path string, target interface{}) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.Errorf("file %s does not exist", path)
	}

	yamlData, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "invalid file: %s", path)
	}

	if err := yaml.Unmarshal(yamlData, target); err != nil {
		return errors.Wrapf(err, "problem parsing yaml/json from file %s", path)
	}

	return nil
}
