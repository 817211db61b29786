// Package record holds the parsed shape of one access-log line and the
// typed accessors the query engine and sinks read it through.
package record

import (
	"strconv"
	"strings"

	"github.com/cyra/proxylog/internal/ipv4"
	"github.com/cyra/proxylog/internal/logdate"
)

// InvalidText is returned by StrField for fields without a string form.
const InvalidText = "@@@"

// Record is one parsed line. Fields absent from the source format keep
// their zero value.
type Record struct {
	Format LogFormat

	Timestamp    uint32
	ClientAddr   uint32
	ResponseTime int
	HTTPStatus   int
	SizeReply    int

	LocalTime           string
	UserName            string
	UserNameIdent       string
	ReqMethod           string
	ReqURL              string
	ReqProtoVersion     string
	ReqStatusHierStatus string
	HierStatusIPAddress string
	MimeContentType     string
	OrigRcvReqHeader    string
	Referrer            string
	UserAgent           string
}

// Key orders records in the store. Only Timestamp takes part in ordering;
// Addr is used for range bounds and exact lookups.
type Key struct {
	Timestamp uint32
	Addr      uint32
}

// Key returns the store key of r.
func (r *Record) Key() Key {
	return Key{Timestamp: r.Timestamp, Addr: r.ClientAddr}
}

// IntField returns the value of an integer field, or -1 for any other field.
func (r *Record) IntField(f Field) int {
	switch f {
	case ResponseTime:
		return r.ResponseTime
	case TotalSizeReply:
		return r.SizeReply
	case HTTPStatus:
		return r.HTTPStatus
	}
	return -1
}

// UintField returns the value of an unsigned field, or 0 for any other field.
func (r *Record) UintField(f Field) uint32 {
	switch f {
	case Timestamp:
		return r.Timestamp
	case ClientAddr:
		return r.ClientAddr
	}
	return 0
}

// StrField returns the textual form of a field. Timestamp and ClientAddr
// are rendered; numeric-only fields return InvalidText.
func (r *Record) StrField(f Field) string {
	switch f {
	case Timestamp:
		return logdate.Format(r.Timestamp)
	case ClientAddr:
		return ipv4.ToText(r.ClientAddr)
	case LocalTime:
		return r.LocalTime
	case UserName:
		return r.UserName
	case UserNameIdent:
		return r.UserNameIdent
	case ReqMethod:
		return r.ReqMethod
	case ReqURL:
		return r.ReqURL
	case ReqProtoVersion:
		return r.ReqProtoVersion
	case ReqStatusHierStatus:
		return r.ReqStatusHierStatus
	case HierStatusIPAddress:
		return r.HierStatusIPAddress
	case MimeContentType:
		return r.MimeContentType
	case OrigRcvReqHeader:
		return r.OrigRcvReqHeader
	case ReferrerURL:
		return r.Referrer
	case UserAgentText:
		return r.UserAgent
	}
	return InvalidText
}

// StatusCode is the effective HTTP status of r: the explicit status column
// for Common and Combined lines, otherwise the digits after the last "/" of
// the request/hierarchy status. ok is false when none can be derived; squid
// reports aborted requests as NONE/000, which yields (0, true).
func (r *Record) StatusCode() (code int, ok bool) {
	if r.Format == Common || r.Format == Combined {
		return r.HTTPStatus, true
	}
	return StatusSuffix(r.ReqStatusHierStatus)
}

// StatusSuffix parses the integer after the last "/" of s, e.g. 200 for
// "TCP_MISS/200".
func StatusSuffix(s string) (int, bool) {
	i := strings.LastIndexByte(s, '/')
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
