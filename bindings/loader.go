package bindings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/* Loader manages event bindings from bindings.yaml
 * Provides in-memory lookup for fast access
 */

// Config represents the structure of bindings.yaml
type Config struct {
	Bindings []BindingConfig `yaml:"bindings"`
}

// BindingConfig represents a single binding in the YAML file
type BindingConfig struct {
	Event          string `yaml:"event"`
	TargetURL      string `yaml:"target_url"`
	ExpectedStatus int    `yaml:"expected_status"` // Default: 200
	Description    string `yaml:"description"`
}

// Loader holds the loaded bindings
type Loader struct {
	bindings map[string]*Binding
}

// NewLoader creates a new binding loader
func NewLoader() *Loader {
	return &Loader{
		bindings: make(map[string]*Binding),
	}
}

// Load reads and parses the bindings.yaml file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading bindings file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing bindings YAML: %w", err)
	}

	for _, bc := range config.Bindings {
		expectedStatus := bc.ExpectedStatus
		if expectedStatus == 0 {
			expectedStatus = 200
		}

		binding := &Binding{
			Event:          bc.Event,
			TargetURL:      bc.TargetURL,
			ExpectedStatus: expectedStatus,
			Description:    bc.Description,
		}

		if err := binding.Validate(); err != nil {
			return fmt.Errorf("validating binding: %w", err)
		}

		l.bindings[binding.Event] = binding
	}

	return nil
}

// Get retrieves a binding by its event name
func (l *Loader) Get(event string) (*Binding, error) {
	binding, exists := l.bindings[event]
	if !exists {
		return nil, fmt.Errorf("binding not found: %s", event)
	}
	return binding, nil
}

// List returns all loaded bindings
func (l *Loader) List() []*Binding {
	bindings := make([]*Binding, 0, len(l.bindings))
	for _, binding := range l.bindings {
		bindings = append(bindings, binding)
	}
	return bindings
}

// Exists checks if an event binding exists
func (l *Loader) Exists(event string) bool {
	_, exists := l.bindings[event]
	return exists
}
