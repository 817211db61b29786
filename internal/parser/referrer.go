package parser

import (
	"regexp"

	"github.com/cyra/proxylog/internal/ipv4"
	"github.com/cyra/proxylog/internal/record"
)

// Referrer format: timestamp, client, referrer, url.
// 1603310517.212 192.168.15.28 http://ref.example/ http://host/x.js
var referrerRe = regexp.MustCompile(`^(\d+)(?:\.\d+)? (\S+) (\S+) (.*)$`)

type referrerGrammar struct{}

func (referrerGrammar) parse(line string) (record.Record, bool) {
	m := referrerRe.FindStringSubmatch(line)
	if m == nil {
		return record.Record{}, false
	}
	ts, ok := epoch(m[1])
	if !ok {
		return record.Record{}, false
	}
	return record.Record{
		Timestamp:  ts,
		ClientAddr: ipv4.ToUint32(m[2]),
		Referrer:   m[3],
		ReqURL:     m[4],
	}, true
}
