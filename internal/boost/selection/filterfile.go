package selection

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// filterFile is the on-disk shape of a HARBOR_BOOST_MODEL_FILTER_FILE
// document: a flat list of "field[.op]=value" clauses, the same grammar
// ParseFilter accepts for the inline HARBOR_BOOST_MODEL_FILTER env var.
// This parallels the teacher's own internal/config YAML usage, giving
// operators a structured alternative to the comma-joined one-liner when
// the filter expression grows past a few clauses.
type filterFile struct {
	Filters []string `yaml:"filters"`
}

// LoadFilterFile reads and parses a model-filter YAML file, returning the
// clauses in the same form ParseFilter produces for its inline grammar.
func LoadFilterFile(path string) ([]Clause, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("selection: reading filter file: %w", err)
	}

	var doc filterFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("selection: parsing filter file %s: %w", path, err)
	}

	var clauses []Clause
	for _, f := range doc.Filters {
		clauses = append(clauses, ParseFilter(f)...)
	}
	return clauses, nil
}
