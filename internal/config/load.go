package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/cyra/proxylog/internal/query"
	"github.com/cyra/proxylog/internal/record"
	"github.com/cyra/proxylog/internal/sink/sqlsink"
)

// Load reads, parses, and validates configuration from the provided path.
// Warns if the config file has insecure permissions (world-readable).
func Load(path string) (*Config, error) {
	// Check file permissions (Unix only).
	if runtime.GOOS != "windows" {
		if info, err := os.Stat(path); err == nil {
			mode := info.Mode().Perm()
			// The DSN may carry credentials.
			if mode&0o004 != 0 {
				fmt.Fprintf(os.Stderr, "WARNING: config file %s is world-readable (mode %o). Consider: chmod 600 %s\n", path, mode, path)
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func validate(c *Config) error {
	if c.Log.Path == "" {
		return fmt.Errorf("log.path is required")
	}

	if c.Log.Format == "" {
		c.Log.Format = record.Squid.String()
	}
	f, err := record.ParseFormat(c.Log.Format)
	if err != nil {
		return fmt.Errorf("log.format: %w", err)
	}
	c.Log.LogFormat = f

	if err := validateQuery(&c.Query); err != nil {
		return err
	}

	if c.Database.Driver != "" {
		if _, err := sqlsink.ParseDialect(c.Database.Driver); err != nil {
			return fmt.Errorf("database.driver: %w", err)
		}
		c.Database.DSN = os.ExpandEnv(c.Database.DSN)
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required when database.driver is set")
		}
	}

	// Default logging level if not provided.
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}

func validateQuery(q *QueryConfig) error {
	if !q.Enabled() {
		if len(q.Predicates) > 0 {
			return fmt.Errorf("query.predicates need query.begin")
		}
		return nil
	}
	if q.Begin.Date == "" || q.Begin.Addr == "" {
		return fmt.Errorf("query.begin needs both date and addr")
	}
	if q.End != nil && (q.End.Date == "" || q.End.Addr == "") {
		return fmt.Errorf("query.end needs both date and addr")
	}
	if q.HTTPCode < 0 {
		return fmt.Errorf("query.http_code must be >= 0")
	}

	for i := range q.Predicates {
		p := &q.Predicates[i]
		if err := p.resolve(); err != nil {
			return fmt.Errorf("query.predicates[%d]: %w", i, err)
		}
	}
	return nil
}

var errOperand = errors.New("exactly one of int, uint, text is required")

func (p *Predicate) resolve() error {
	var err error
	if p.FieldID, err = record.ParseField(p.Field); err != nil {
		return err
	}
	if p.Compare == "" {
		p.Compare = query.EQ.String()
	}
	if p.Op, err = query.ParseCompare(p.Compare); err != nil {
		return err
	}

	set := 0
	var hi query.Value
	if p.Int != nil {
		set++
		p.Operand = query.Int(*p.Int)
		if p.IntTo != nil {
			hi = query.Int(*p.IntTo)
		}
	}
	if p.Uint != nil {
		set++
		p.Operand = query.Uint(*p.Uint)
		if p.UintTo != nil {
			hi = query.Uint(*p.UintTo)
		}
	}
	if p.Text != nil {
		set++
		p.Operand = query.Text(*p.Text)
		if p.TextTo != nil {
			hi = query.Text(*p.TextTo)
		}
	}
	if set != 1 {
		return errOperand
	}

	if p.Op == query.REGEX {
		if _, ok := p.Operand.(query.Text); !ok {
			return fmt.Errorf("regex needs a text operand")
		}
	}
	if p.Op.IsRange() {
		if hi == nil {
			return fmt.Errorf("%s needs a %s_to bound", p.Op, operandKey(p.Operand))
		}
		p.Bound = []query.Value{hi}
	}
	return nil
}

func operandKey(v query.Value) string {
	switch v.(type) {
	case query.Uint:
		return "uint"
	case query.Text:
		return "text"
	}
	return "int"
}
