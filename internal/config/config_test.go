package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cyra/proxylog/internal/query"
	"github.com/cyra/proxylog/internal/record"
)

const sample = `
logging:
  level: debug
log:
  path: /var/log/squid/access.log
  format: combined
query:
  begin: {date: "01/Feb/2022:00:00:00", addr: 192.168.1.1}
  end:   {date: "31/Mar/2022:23:59:59", addr: 192.168.1.107}
  predicates:
    - {field: total_size_reply, compare: gt, int: 0}
    - {field: req_url, compare: regex, text: "cab$"}
    - {field: http_status, compare: btwand, int: 200, int_to: 299}
  http_code: 404
database:
  driver: sqlite
  dsn: ${PROXYLOG_TEST_DIR}/proxylog.db
`

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "proxylog.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("PROXYLOG_TEST_DIR", "/data")
	cfg, err := Load(writeConfig(t, t.TempDir(), sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Log.LogFormat != record.Combined {
		t.Errorf("LogFormat = %v", cfg.Log.LogFormat)
	}
	if cfg.Database.DSN != "/data/proxylog.db" {
		t.Errorf("DSN = %q", cfg.Database.DSN)
	}
	if cfg.Logging.Level != "debug" || cfg.Query.HTTPCode != 404 {
		t.Errorf("cfg = %+v", cfg)
	}

	preds := cfg.Query.Predicates
	if len(preds) != 3 {
		t.Fatalf("predicates = %d", len(preds))
	}
	if preds[0].FieldID != record.TotalSizeReply || preds[0].Op != query.GT || preds[0].Operand != query.Int(0) {
		t.Errorf("predicate 0 = %+v", preds[0])
	}
	if preds[1].Op != query.REGEX || preds[1].Operand != query.Text("cab$") {
		t.Errorf("predicate 1 = %+v", preds[1])
	}
	if !reflect.DeepEqual(preds[2].Bound, []query.Value{query.Int(299)}) {
		t.Errorf("predicate 2 bound = %v", preds[2].Bound)
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := Parse([]byte("log: {path: access.log}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.LogFormat != record.Squid || cfg.Logging.Level != "info" || cfg.Query.Enabled() {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing path", "log: {format: squid}", "log.path is required"},
		{"bad format", "log: {path: a, format: apache}", "log.format"},
		{"half begin", "log: {path: a}\nquery: {begin: {date: '01/Feb/2022:00:00:00'}}", "query.begin"},
		{"half end", "log: {path: a}\nquery: {begin: {date: d, addr: a}, end: {addr: b}}", "query.end"},
		{"predicates without range", "log: {path: a}\nquery: {predicates: [{field: req_url, text: x}]}", "need query.begin"},
		{"unknown field", "log: {path: a}\nquery: {begin: {date: d, addr: a}, predicates: [{field: nope, int: 1}]}", "unknown field"},
		{"unknown compare", "log: {path: a}\nquery: {begin: {date: d, addr: a}, predicates: [{field: req_url, compare: like, text: x}]}", "unknown comparator"},
		{"two operands", "log: {path: a}\nquery: {begin: {date: d, addr: a}, predicates: [{field: req_url, int: 1, text: x}]}", "exactly one"},
		{"regex on int", "log: {path: a}\nquery: {begin: {date: d, addr: a}, predicates: [{field: req_url, compare: regex, int: 1}]}", "regex needs"},
		{"range without bound", "log: {path: a}\nquery: {begin: {date: d, addr: a}, predicates: [{field: http_status, compare: btwor, int: 1}]}", "int_to"},
		{"bad driver", "log: {path: a}\ndatabase: {driver: oracle, dsn: x}", "database.driver"},
		{"empty dsn", "log: {path: a}\ndatabase: {driver: sqlite}", "database.dsn"},
		{"negative code", "log: {path: a}\nquery: {begin: {date: d, addr: a}, http_code: -1}", "http_code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestStore(t *testing.T) {
	a := &Config{Log: LogConfig{Path: "a"}}
	b := &Config{Log: LogConfig{Path: "b"}}
	s := NewStore(a)
	if s.Current() != a {
		t.Fatal("Current() != initial")
	}
	s.Update(b)
	s.Update(b)
	select {
	case <-s.Changed():
	default:
		t.Fatal("Changed() did not fire")
	}
	select {
	case <-s.Changed():
		t.Fatal("updates did not coalesce")
	default:
	}
	if s.Current() != b {
		t.Error("Current() != updated")
	}
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "log: {path: first.log}\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	store := NewStore(cfg)

	stop, err := WatchFile(path, store, nopLogger{})
	if err != nil {
		t.Fatalf("WatchFile: %v", err)
	}
	defer stop()

	writeConfig(t, dir, "log: {path: second.log}\n")

	select {
	case <-store.Changed():
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
	if got := store.Current().Log.Path; got != "second.log" {
		t.Errorf("Log.Path = %q, want second.log", got)
	}
}
