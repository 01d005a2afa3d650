package bigqc

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Settings is the process-wide configuration: read once at startup,
// passed by reference, and treated as immutable for the process
// lifetime. There is no global settings object.
type Settings struct {
	// BrokerURL is the address of the message broker carrying jobs
	// to remote workers. The in-process LocalQueue ignores it.
	BrokerURL string `yaml:"broker_url"`
	// BackendURL locates the result backend. For the sqlite store
	// this is a filesystem path.
	BackendURL string `yaml:"backend_url"`
	// PrefetchMultiplier is how many jobs each worker buffers ahead
	// of execution. Raise it when jobs are small relative to
	// transport overhead.
	PrefetchMultiplier int `yaml:"prefetch_multiplier"`
	// WorkerConcurrency is the number of worker processes; 0 means
	// one per logical core.
	WorkerConcurrency int `yaml:"worker_concurrency"`
	// HessianStep is the default finite-difference displacement in
	// bohr used when a caller does not pass one.
	HessianStep float64 `yaml:"hessian_step"`
}

// DefaultSettings returns the settings used when no file and no
// environment overrides are present
func DefaultSettings() *Settings {
	return &Settings{
		BrokerURL:          "amqp://localhost",
		BackendURL:         "bigqc.db",
		PrefetchMultiplier: 1,
		WorkerConcurrency:  runtime.NumCPU(),
		HessianStep:        DefaultHessianStep,
	}
}

// LoadSettings builds the Settings for this process: defaults, then
// the YAML file at path if path is non-empty, then BIGQC_*
// environment variables on top
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse settings: %w", err)
		}
		s.applyDefaults()
	}
	if err := s.fromEnv(); err != nil {
		return nil, err
	}
	return s, nil
}

// applyDefaults refills fields a sparse settings file left empty
func (s *Settings) applyDefaults() {
	d := DefaultSettings()
	if s.BrokerURL == "" {
		s.BrokerURL = d.BrokerURL
	}
	if s.BackendURL == "" {
		s.BackendURL = d.BackendURL
	}
	if s.PrefetchMultiplier == 0 {
		s.PrefetchMultiplier = d.PrefetchMultiplier
	}
	if s.WorkerConcurrency == 0 {
		s.WorkerConcurrency = d.WorkerConcurrency
	}
	if s.HessianStep == 0 {
		s.HessianStep = d.HessianStep
	}
}

func (s *Settings) fromEnv() error {
	if v := os.Getenv("BIGQC_BROKER_URL"); v != "" {
		s.BrokerURL = v
	}
	if v := os.Getenv("BIGQC_BACKEND_URL"); v != "" {
		s.BackendURL = v
	}
	if v := os.Getenv("BIGQC_PREFETCH_MULTIPLIER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BIGQC_PREFETCH_MULTIPLIER: %w", err)
		}
		s.PrefetchMultiplier = n
	}
	if v := os.Getenv("BIGQC_WORKER_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BIGQC_WORKER_CONCURRENCY: %w", err)
		}
		s.WorkerConcurrency = n
	}
	if v := os.Getenv("BIGQC_DEFAULT_HESSIAN_DH"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BIGQC_DEFAULT_HESSIAN_DH: %w", err)
		}
		s.HessianStep = f
	}
	return nil
}
