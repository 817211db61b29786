package config

import (
	"github.com/cyra/proxylog/internal/query"
	"github.com/cyra/proxylog/internal/record"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Log      LogConfig      `yaml:"log"`
	Query    QueryConfig    `yaml:"query"`
	XML      XMLConfig      `yaml:"xml"`
	Database DatabaseConfig `yaml:"database"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// LoggingConfig controls log verbosity and format.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g. "info", "debug"
	JSON  bool   `yaml:"json"`
}

// LogConfig describes the proxy access log we read.
type LogConfig struct {
	Path         string `yaml:"path"`   // e.g. /var/log/squid/access.log
	Format       string `yaml:"format"` // squid, common, combined, referrer, useragent
	AbortOnError bool   `yaml:"abort_on_error"`
	Poll         bool   `yaml:"poll"` // follow mode: poll instead of inotify

	LogFormat record.LogFormat `yaml:"-"`
}

// Endpoint is one corner of the query range.
type Endpoint struct {
	Date string `yaml:"date"` // dd/Mon/yyyy:hh:mm:ss
	Addr string `yaml:"addr"`
}

// QueryConfig selects records and drives the report.
type QueryConfig struct {
	Begin      Endpoint    `yaml:"begin"`
	End        *Endpoint   `yaml:"end,omitempty"`
	Predicates []Predicate `yaml:"predicates"`
	HTTPCode   int         `yaml:"http_code"` // 0 = every code
	Filetype   string      `yaml:"filetype"`  // "" = every extension
}

// Enabled reports whether a range was configured.
func (q QueryConfig) Enabled() bool {
	return q.Begin.Date != "" || q.Begin.Addr != ""
}

// Predicate is one field comparison. Exactly one of Int, Uint and Text is
// set; range comparators also need the matching *To bound.
type Predicate struct {
	Field   string  `yaml:"field"`
	Compare string  `yaml:"compare"`
	Int     *int    `yaml:"int,omitempty"`
	Uint    *uint32 `yaml:"uint,omitempty"`
	Text    *string `yaml:"text,omitempty"`
	IntTo   *int    `yaml:"int_to,omitempty"`
	UintTo  *uint32 `yaml:"uint_to,omitempty"`
	TextTo  *string `yaml:"text_to,omitempty"`

	FieldID record.Field  `yaml:"-"`
	Op      query.Compare `yaml:"-"`
	Operand query.Value   `yaml:"-"`
	Bound   []query.Value `yaml:"-"`
}

// XMLConfig enables the XML export when Path is set.
type XMLConfig struct {
	Path string `yaml:"path"`
}

// DatabaseConfig enables the relational sink when Driver is set.
type DatabaseConfig struct {
	Driver      string `yaml:"driver"` // sqlite or clickhouse
	DSN         string `yaml:"dsn"`    // environment variables are expanded
	Table       string `yaml:"table"`  // default slp_log_<format>
	CreateTable bool   `yaml:"create_table"`
}

// MetricsConfig exposes Prometheus metrics in follow mode when Listen is set.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // e.g. ":9105"
}
