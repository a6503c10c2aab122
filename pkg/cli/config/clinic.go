package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// ClinicConfig is the TOML clinic catalog: the conditions offered to the
// classifier and the reminder schedule armed at startup.
type ClinicConfig struct {
	Conditions []Condition `toml:"condition"`
	Reminders  []Reminder  `toml:"reminder"`
}

// Condition is one entry of the classification condition catalog
type Condition struct {
	Name string `toml:"name"`
}

// Validate checks if the Condition is valid
func (c *Condition) Validate() error {
	if c.Name == "" {
		return goerr.New("condition name is required")
	}
	return nil
}

// Reminder is one scheduled one-shot notification
type Reminder struct {
	Role      string `toml:"role"`
	PatientID string `toml:"patient_id"`
	After     string `toml:"after"`
	Type      string `toml:"type"`
	Title     string `toml:"title"`
	Message   string `toml:"message"`
}

// Validate checks if the Reminder is valid
func (r *Reminder) Validate() error {
	role, err := types.ParseRole(r.Role)
	if err != nil {
		return goerr.Wrap(err, "invalid reminder role")
	}
	if role == types.RolePatient && r.PatientID == "" {
		return goerr.New("patient reminder requires a patient ID", goerr.V("title", r.Title))
	}
	if role == types.RoleNone {
		return goerr.New("reminder role must be patient or doctor", goerr.V("title", r.Title))
	}
	if _, err := r.Delay(); err != nil {
		return err
	}
	if !types.NotificationType(r.Type).IsValid() {
		return goerr.New("invalid reminder type", goerr.V("type", r.Type), goerr.V("title", r.Title))
	}
	if r.Title == "" {
		return goerr.New("reminder title is required")
	}
	return nil
}

// Delay parses the reminder's delay
func (r *Reminder) Delay() (time.Duration, error) {
	d, err := time.ParseDuration(r.After)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid reminder delay", goerr.V("after", r.After), goerr.V("title", r.Title))
	}
	if d <= 0 {
		return 0, goerr.New("reminder delay must be positive", goerr.V("after", r.After), goerr.V("title", r.Title))
	}
	return d, nil
}

// Validate checks if the ClinicConfig is valid
func (c *ClinicConfig) Validate() error {
	names := make(map[string]bool)
	for _, cond := range c.Conditions {
		if err := cond.Validate(); err != nil {
			return goerr.Wrap(err, "invalid condition")
		}
		if names[cond.Name] {
			return goerr.New("duplicate condition name", goerr.V("name", cond.Name))
		}
		names[cond.Name] = true
	}

	for i := range c.Reminders {
		if err := c.Reminders[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid reminder")
		}
	}

	return nil
}

// ConditionNames returns the catalog as a plain name list
func (c *ClinicConfig) ConditionNames() []string {
	names := make([]string, len(c.Conditions))
	for i, cond := range c.Conditions {
		names[i] = cond.Name
	}
	return names
}

// DefaultClinicConfig is the catalog used when no config file is given
func DefaultClinicConfig() *ClinicConfig {
	return &ClinicConfig{
		Conditions: []Condition{
			{Name: "Atopic Dermatitis"},
			{Name: "Psoriasis"},
			{Name: "Acne Vulgaris"},
			{Name: "Melanoma"},
			{Name: "Basal Cell Carcinoma"},
			{Name: "Benign Nevus"},
			{Name: "Rosacea"},
			{Name: "Contact Dermatitis"},
		},
	}
}

// Clinic holds the CLI flag for the clinic catalog file
type Clinic struct {
	path string
}

// Flags returns CLI flags for clinic configuration
func (c *Clinic) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "clinic-config",
			Usage:       "Path to the clinic catalog TOML file (optional)",
			Sources:     cli.EnvVars("TELESKIN_CLINIC_CONFIG"),
			Destination: &c.path,
		},
	}
}

// Configure loads the clinic catalog, falling back to the built-in defaults
// when no path is given.
func (c *Clinic) Configure() (*ClinicConfig, error) {
	if c.path == "" {
		return DefaultClinicConfig(), nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read clinic config file", goerr.V("path", c.path))
	}

	var cfg ClinicConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML clinic config", goerr.V("path", c.path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "clinic config validation failed", goerr.V("path", c.path))
	}

	return &cfg, nil
}
