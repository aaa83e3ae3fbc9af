package scenario

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Mousewarriors/SEIM-Project/internal/model"
)

// DecodeYAML reads one or more YAML documents, each a scenario, from r.
// Matches the authored scenario pack format (one scenario per document).
func DecodeYAML(r io.Reader) ([]*model.Scenario, error) {
	dec := yaml.NewDecoder(r)

	var scenarios []*model.Scenario
	for {
		var scn model.Scenario
		err := dec.Decode(&scn)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode scenario document %d: %w", len(scenarios)+1, err)
		}
		if err := scn.Validate(); err != nil {
			return nil, fmt.Errorf("scenario document %d: %w", len(scenarios)+1, err)
		}
		scenarios = append(scenarios, &scn)
	}

	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenario documents found")
	}
	return scenarios, nil
}

// EncodeYAML renders scenarios as a multi-document YAML stream.
func EncodeYAML(scenarios []*model.Scenario) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	for _, scn := range scenarios {
		if err := enc.Encode(scn); err != nil {
			return nil, fmt.Errorf("encode scenario %s: %w", scn.Scenario.ID, err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Import decodes YAML and registers every scenario, stopping at the first
// failure. Returns the scenarios that were registered.
func (s *Store) Import(data []byte) ([]*model.Scenario, error) {
	scenarios, err := DecodeYAML(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var imported []*model.Scenario
	for _, scn := range scenarios {
		if err := s.Create(scn); err != nil {
			return imported, err
		}
		imported = append(imported, scn)
	}
	return imported, nil
}

// Export renders the whole catalog as YAML.
func (s *Store) Export() ([]byte, error) {
	return EncodeYAML(s.List())
}
