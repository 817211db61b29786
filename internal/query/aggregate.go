package query

import (
	"maps"
	"slices"

	"github.com/cyra/proxylog/internal/parser"
)

// SumTotalSizeReply adds up the reply sizes of the subset.
func (q *Query) SumTotalSizeReply() int64 {
	var n int64
	for _, rec := range q.subset.All() {
		n += int64(rec.SizeReply)
	}
	return n
}

// SumResponseTime adds up the response times of the subset.
func (q *Query) SumResponseTime() int64 {
	var n int64
	for _, rec := range q.subset.All() {
		n += int64(rec.ResponseTime)
	}
	return n
}

// MethodType classifies request methods.
type MethodType int

const (
	MethodGet MethodType = iota
	MethodPut
	MethodPost
	MethodConnect
	MethodHead
	MethodDelete
	MethodOptions
	MethodPatch
	MethodTrace
	MethodOthers
	numMethods
)

var methodText = [numMethods]string{"GET", "PUT", "POST", "CONNECT", "HEAD", "DELETE", "OPTIONS", "PATCH", "TRACE", "OTHERS"}

// MethodText returns the upper-case name of m.
func MethodText(m MethodType) string {
	if m < 0 || m >= numMethods {
		return methodText[MethodOthers]
	}
	return methodText[m]
}

// Methods lists every MethodType in declaration order.
func Methods() []MethodType {
	out := make([]MethodType, numMethods)
	for i := range out {
		out[i] = MethodType(i)
	}
	return out
}

func classifyMethod(s string) MethodType {
	for m := MethodGet; m < MethodOthers; m++ {
		if methodText[m] == s {
			return m
		}
	}
	return MethodOthers
}

// MethodCounts is indexed by MethodType.
type MethodCounts [numMethods]int

// CountByReqMethod tallies the subset by request method. Methods outside the
// nine known ones, including lower-case spellings, count as MethodOthers.
func (q *Query) CountByReqMethod() MethodCounts {
	var c MethodCounts
	for _, rec := range q.subset.All() {
		c[classifyMethod(rec.ReqMethod)]++
	}
	return c
}

// CountByHTTPCodes resets every code score to zero and recounts the subset.
// code 0 tallies every observed code; any other value tallies only that
// code. Codes never seen by the parser are ignored.
func (q *Query) CountByHTTPCodes(code int) {
	for k := range q.codes {
		q.codes[k] = 0
	}
	for _, rec := range q.subset.All() {
		c, ok := rec.StatusCode()
		if !ok || (code != 0 && c != code) {
			continue
		}
		if _, ok := q.codes[c]; ok {
			q.codes[c]++
		}
	}
}

// HRCScore returns the current score and description of an HTTP code.
// Codes never observed report (0, "Unknown").
func (q *Query) HRCScore(code int) (int, string) {
	score, ok := q.codes[code]
	if !ok {
		return 0, parser.UnknownDescription
	}
	return score, parser.HTTPDescription(code)
}

// CodeDetail is one row of the HTTP code table.
type CodeDetail struct {
	Code        int
	Description string
	Score       int
}

// HRCDetails snapshots the HTTP code table in ascending code order.
func (q *Query) HRCDetails() []CodeDetail {
	out := make([]CodeDetail, 0, len(q.codes))
	for _, c := range slices.Sorted(maps.Keys(q.codes)) {
		out = append(out, CodeDetail{Code: c, Description: parser.HTTPDescription(c), Score: q.codes[c]})
	}
	return out
}

// CountByFiletype resets every extension score and recounts the subset. An
// empty ext tallies every extension and returns the number of distinct
// extensions; otherwise only ext is tallied and its score returned.
func (q *Query) CountByFiletype(ext string) int {
	for k := range q.filetypes {
		q.filetypes[k] = 0
	}
	for _, rec := range q.subset.All() {
		e := parser.Filetype(rec.ReqURL)
		if e == "" || (ext != "" && e != ext) {
			continue
		}
		if _, ok := q.filetypes[e]; ok {
			q.filetypes[e]++
		}
	}
	if ext == "" {
		return len(q.filetypes)
	}
	return q.filetypes[ext]
}

// TotalFiles is the sum of every extension score.
func (q *Query) TotalFiles() int {
	n := 0
	for _, v := range q.filetypes {
		n += v
	}
	return n
}

// FiletypeDetail is one row of the file type table.
type FiletypeDetail struct {
	Ext         string
	Description string
	Score       int
}

// FiletypeDetails snapshots the file type table in ascending extension
// order.
func (q *Query) FiletypeDetails() []FiletypeDetail {
	out := make([]FiletypeDetail, 0, len(q.filetypes))
	for _, e := range slices.Sorted(maps.Keys(q.filetypes)) {
		out = append(out, FiletypeDetail{Ext: e, Description: parser.FiletypeDescription(e), Score: q.filetypes[e]})
	}
	return out
}

// FiletypeIndex returns the position of ext in FiletypeDetails, or -1.
func (q *Query) FiletypeIndex(ext string) int {
	if _, ok := q.filetypes[ext]; !ok {
		return -1
	}
	keys := slices.Sorted(maps.Keys(q.filetypes))
	i, _ := slices.BinarySearch(keys, ext)
	return i
}
