package parser

import (
	"regexp"

	"github.com/cyra/proxylog/internal/ipv4"
	"github.com/cyra/proxylog/internal/logdate"
	"github.com/cyra/proxylog/internal/record"
)

// User agent format:
// 192.168.15.28 [05/May/2020:08:28:03 -0300] "Mozilla/5.0 (X11; Linux x86_64)"
var userAgentRe = regexp.MustCompile(`^(\S+) \[(\S+ \S+)\] "(.*)"$`)

type userAgentGrammar struct{}

func (userAgentGrammar) parse(line string) (record.Record, bool) {
	m := userAgentRe.FindStringSubmatch(line)
	if m == nil {
		return record.Record{}, false
	}
	return record.Record{
		ClientAddr: ipv4.ToUint32(m[1]),
		LocalTime:  m[2],
		Timestamp:  logdate.Parse(m[2]),
		UserAgent:  m[3],
	}, true
}
