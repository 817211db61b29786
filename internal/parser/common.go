package parser

import (
	"regexp"

	"github.com/cyra/proxylog/internal/ipv4"
	"github.com/cyra/proxylog/internal/logdate"
	"github.com/cyra/proxylog/internal/record"
)

// Common and combined formats:
// 192.168.1.5 - bob [05/May/2020:08:28:03 -0300] "GET http://host/x HTTP/1.1" 200 1024 TCP_MISS:HIER_DIRECT
// 192.168.1.5 - - [05/May/2020:08:28:03 -0300] "GET http://host/x HTTP/1.1" 200 1024 "http://ref/" "Mozilla/5.0" TCP_MISS:HIER_DIRECT
// The trailing squid status/hierarchy pair is optional.
var (
	commonRe   = regexp.MustCompile(`^(\S+) (\S+) (\S+) \[(\S+ \S+)\] "(\S+) (\S+) (\S+)" (\d+) (\d+|-)(?: (.*))?$`)
	combinedRe = regexp.MustCompile(`^(\S+) (\S+) (\S+) \[(.*?)\] "(\S+) (\S+) (\S+)" (\d+) (\d+|-) "(\S*)" "(.*?)"(?: (.*))?$`)
)

type commonGrammar struct{}

func (commonGrammar) parse(line string) (record.Record, bool) {
	m := commonRe.FindStringSubmatch(line)
	if m == nil {
		return record.Record{}, false
	}
	rec, ok := requestLine(m[1:10])
	if !ok {
		return record.Record{}, false
	}
	rec.ReqStatusHierStatus = m[10]
	return rec, true
}

type combinedGrammar struct{}

func (combinedGrammar) parse(line string) (record.Record, bool) {
	m := combinedRe.FindStringSubmatch(line)
	if m == nil {
		return record.Record{}, false
	}
	rec, ok := requestLine(m[1:10])
	if !ok {
		return record.Record{}, false
	}
	rec.Referrer = m[10]
	rec.UserAgent = m[11]
	rec.ReqStatusHierStatus = m[12]
	return rec, true
}

// requestLine fills the nine leading captures shared by common and combined:
// addr, ident, user, local time, method, url, protocol, status, size.
func requestLine(m []string) (record.Record, bool) {
	status, ok := atoi(m[7])
	if !ok {
		return record.Record{}, false
	}
	size, ok := atoi(m[8])
	if !ok {
		return record.Record{}, false
	}
	return record.Record{
		ClientAddr:      ipv4.ToUint32(m[0]),
		UserNameIdent:   m[1],
		UserName:        m[2],
		LocalTime:       m[3],
		Timestamp:       logdate.Parse(m[3]),
		ReqMethod:       m[4],
		ReqURL:          m[5],
		ReqProtoVersion: m[6],
		HTTPStatus:      status,
		SizeReply:       size,
	}, true
}
