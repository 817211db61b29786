package record

import (
	"errors"
	"fmt"
	"strings"
)

// Field identifies one attribute of a Record.
type Field int

const (
	Timestamp Field = iota
	ClientAddr
	LocalTime
	UserName
	UserNameIdent
	ResponseTime
	ReqMethod
	ReqURL
	ReqProtoVersion
	HTTPStatus
	ReqStatusHierStatus
	TotalSizeReply
	HierStatusIPAddress
	MimeContentType
	OrigRcvReqHeader
	ReferrerURL
	UserAgentText
	UnknownField
)

// ErrUnknownField is returned by ParseField for unsupported names.
var ErrUnknownField = errors.New("unknown field")

var fieldNames = [...]string{
	"timestamp",
	"client_addr",
	"local_time",
	"user_name",
	"user_name_ident",
	"response_time",
	"req_method",
	"req_url",
	"req_proto_version",
	"http_status",
	"req_status_hier_status",
	"total_size_reply",
	"hier_status_ip_address",
	"mime_content_type",
	"orig_rcv_req_header",
	"referrer",
	"user_agent",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return "unknown"
	}
	return fieldNames[f]
}

// ParseField maps a snake_case field name to a Field.
func ParseField(name string) (Field, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range fieldNames {
		if s == n {
			return Field(i), nil
		}
	}
	return UnknownField, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// HasText reports whether f has a string rendering. Integer-only fields
// render as InvalidText.
func (f Field) HasText() bool {
	switch f {
	case ResponseTime, TotalSizeReply, HTTPStatus, UnknownField:
		return false
	}
	return f >= Timestamp && f < UnknownField
}
