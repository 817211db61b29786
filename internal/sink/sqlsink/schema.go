package sqlsink

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cyra/proxylog/internal/record"
)

// Dialect selects the DDL flavour and the database/sql driver name.
type Dialect int

const (
	SQLite Dialect = iota
	ClickHouse
)

// ParseDialect maps a configured driver name to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "clickhouse":
		return ClickHouse, nil
	}
	return 0, fmt.Errorf("sqlsink: unsupported driver %q", name)
}

// DriverName is the name registered with database/sql.
func (d Dialect) DriverName() string {
	if d == ClickHouse {
		return "clickhouse"
	}
	return "sqlite"
}

type kind int

const (
	kindText kind = iota
	kindInt
	kindUint
)

type column struct {
	field record.Field
	kind  kind
}

// MonthBucket is the name of the derived yyyymm column.
const MonthBucket = "month_bucket"

var (
	squidColumns = []column{
		{record.Timestamp, kindUint},
		{record.ResponseTime, kindInt},
		{record.ClientAddr, kindText},
		{record.ReqStatusHierStatus, kindText},
		{record.TotalSizeReply, kindInt},
		{record.ReqMethod, kindText},
		{record.ReqURL, kindText},
		{record.UserName, kindText},
		{record.HierStatusIPAddress, kindText},
		{record.MimeContentType, kindText},
	}
	commonColumns = []column{
		{record.Timestamp, kindUint},
		{record.ClientAddr, kindText},
		{record.UserNameIdent, kindText},
		{record.UserName, kindText},
		{record.LocalTime, kindText},
		{record.ReqMethod, kindText},
		{record.ReqURL, kindText},
		{record.ReqProtoVersion, kindText},
		{record.HTTPStatus, kindInt},
		{record.TotalSizeReply, kindInt},
		{record.ReqStatusHierStatus, kindText},
	}
	combinedColumns = []column{
		{record.Timestamp, kindUint},
		{record.ClientAddr, kindText},
		{record.UserNameIdent, kindText},
		{record.UserName, kindText},
		{record.LocalTime, kindText},
		{record.ReqMethod, kindText},
		{record.ReqURL, kindText},
		{record.ReqProtoVersion, kindText},
		{record.HTTPStatus, kindInt},
		{record.TotalSizeReply, kindInt},
		{record.ReferrerURL, kindText},
		{record.UserAgentText, kindText},
		{record.ReqStatusHierStatus, kindText},
	}
	referrerColumns = []column{
		{record.Timestamp, kindUint},
		{record.ClientAddr, kindText},
		{record.ReferrerURL, kindText},
		{record.ReqURL, kindText},
	}
	userAgentColumns = []column{
		{record.Timestamp, kindUint},
		{record.ClientAddr, kindText},
		{record.LocalTime, kindText},
		{record.UserAgentText, kindText},
	}
)

func columns(f record.LogFormat) []column {
	switch f {
	case record.Squid:
		return squidColumns
	case record.Common:
		return commonColumns
	case record.Combined:
		return combinedColumns
	case record.Referrer:
		return referrerColumns
	case record.UserAgent:
		return userAgentColumns
	}
	return nil
}

// ColumnNames lists the insert columns for f, month bucket last.
func ColumnNames(f record.LogFormat) []string {
	cols := columns(f)
	out := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		out = append(out, c.field.String())
	}
	return append(out, MonthBucket)
}

// DefaultTable returns slp_log_<format>.
func DefaultTable(f record.LogFormat) string {
	return "slp_log_" + f.String()
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validTable(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("sqlsink: invalid table name %q", name)
	}
	return nil
}

func typeName(d Dialect, k kind) string {
	switch d {
	case ClickHouse:
		switch k {
		case kindInt:
			return "Int64"
		case kindUint:
			return "UInt32"
		}
		return "String"
	default:
		if k == kindText {
			return "TEXT"
		}
		return "INTEGER"
	}
}

// CreateTableSQL renders the DDL for table holding records of format f.
func CreateTableSQL(d Dialect, table string, f record.LogFormat) (string, error) {
	if err := validTable(table); err != nil {
		return "", err
	}
	cols := columns(f)
	if cols == nil {
		return "", fmt.Errorf("sqlsink: no columns for format %s", f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", table)
	for _, c := range cols {
		fmt.Fprintf(&b, "    %s %s,\n", c.field, typeName(d, c.kind))
	}
	fmt.Fprintf(&b, "    %s %s\n)", MonthBucket, typeName(d, kindUint))
	if d == ClickHouse {
		fmt.Fprintf(&b, " ENGINE = MergeTree PARTITION BY %s ORDER BY %s", MonthBucket, record.Timestamp)
	}
	return b.String(), nil
}

// InsertSQL renders a positional insert statement for format f.
func InsertSQL(table string, f record.LogFormat) (string, error) {
	if err := validTable(table); err != nil {
		return "", err
	}
	names := ColumnNames(f)
	if len(names) == 1 {
		return "", fmt.Errorf("sqlsink: no columns for format %s", f)
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), marks), nil
}

// Values returns the insert arguments of rec in ColumnNames order. Unsigned
// columns bind as uint32 for ClickHouse and int64 for SQLite.
func Values(d Dialect, f record.LogFormat, rec *record.Record) []any {
	unsigned := func(v uint32) any {
		if d == ClickHouse {
			return v
		}
		return int64(v)
	}
	cols := columns(f)
	out := make([]any, 0, len(cols)+1)
	for _, c := range cols {
		switch c.kind {
		case kindInt:
			out = append(out, int64(rec.IntField(c.field)))
		case kindUint:
			out = append(out, unsigned(rec.UintField(c.field)))
		default:
			out = append(out, rec.StrField(c.field))
		}
	}
	return append(out, unsigned(Bucket(rec.Timestamp)))
}

// Bucket returns yyyymm of ts in local time.
func Bucket(ts uint32) uint32 {
	t := time.Unix(int64(ts), 0).In(time.Local)
	return uint32(t.Year()*100 + int(t.Month()))
}
