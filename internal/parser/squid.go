package parser

import (
	"regexp"

	"github.com/cyra/proxylog/internal/ipv4"
	"github.com/cyra/proxylog/internal/record"
)

// Native squid format:
// 1603310517.212 494 192.168.15.28 TCP_MISS/200 5182 GET http://host/x - ORIGINAL_DST/1.2.3.4 text/xml
// The trailing MIME type is optional.
var squidRe = regexp.MustCompile(`^(\d+)(?:\.\d+)? (\d+) (\S+) (\S+) (\d+|-) (\S+) (\S+) (\S+) (\S+)(?: (.*))?$`)

type squidGrammar struct{}

func (squidGrammar) parse(line string) (record.Record, bool) {
	m := squidRe.FindStringSubmatch(line)
	if m == nil {
		return record.Record{}, false
	}

	ts, ok := epoch(m[1])
	if !ok {
		return record.Record{}, false
	}
	rt, ok := atoi(m[2])
	if !ok {
		return record.Record{}, false
	}
	size, ok := atoi(m[5])
	if !ok {
		return record.Record{}, false
	}

	return record.Record{
		Timestamp:           ts,
		ResponseTime:        rt,
		ClientAddr:          ipv4.ToUint32(m[3]),
		ReqStatusHierStatus: m[4],
		SizeReply:           size,
		ReqMethod:           m[6],
		ReqURL:              m[7],
		UserName:            m[8],
		HierStatusIPAddress: m[9],
		MimeContentType:     m[10],
	}, true
}
