// Package report renders query results as terminal tables.
package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/cyra/proxylog/internal/query"
	"github.com/cyra/proxylog/internal/urlparts"
)

// TopDomains is the number of rows in the domain table.
const TopDomains = 10

// Options narrows the code and file type tables.
type Options struct {
	HTTPCode int    // 0 = every code
	Filetype string // "" = every extension
}

// Render writes the summary, method, HTTP code and file type tables for q.
// Rows with a zero score are left out.
func Render(w io.Writer, q *query.Query, opts Options) {
	if q.Size() == 0 {
		fmt.Fprintln(w, "No records matched the query.")
		return
	}

	Summary(w, q)
	Methods(w, q)
	Codes(w, q, opts.HTTPCode)
	Filetypes(w, q, opts.Filetype)
	Domains(w, q, TopDomains)
}

func newTable(w io.Writer, title string, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendHeader(header)
	t.SetStyle(table.StyleLight)
	return t
}

// Summary renders record count and totals.
func Summary(w io.Writer, q *query.Query) {
	t := newTable(w, "Summary", table.Row{"Format", "Records", "Total Size Reply", "Total Response Time"})
	t.AppendRow(table.Row{q.Format().Title(), q.Size(), q.SumTotalSizeReply(), q.SumResponseTime()})
	t.Render()
}

// Methods renders the request method tally.
func Methods(w io.Writer, q *query.Query) {
	counts := q.CountByReqMethod()

	t := newTable(w, "Methods", table.Row{"Method", "Count"})
	for _, m := range query.Methods() {
		if counts[m] == 0 {
			continue
		}
		t.AppendRow(table.Row{query.MethodText(m), counts[m]})
	}
	t.Render()
}

// Codes renders the HTTP code table. code 0 includes every code.
func Codes(w io.Writer, q *query.Query, code int) {
	if !q.Format().HasStatus() {
		return
	}
	q.CountByHTTPCodes(code)

	t := newTable(w, "HTTP Codes", table.Row{"Code", "Description", "Count"})
	for _, d := range q.HRCDetails() {
		if d.Score == 0 {
			continue
		}
		t.AppendRow(table.Row{d.Code, d.Description, d.Score})
	}
	t.Render()
}

// Filetypes renders the file type table. An empty ext includes every
// extension.
func Filetypes(w io.Writer, q *query.Query, ext string) {
	if !q.Format().HasURL() {
		return
	}
	q.CountByFiletype(ext)

	t := newTable(w, "File Types", table.Row{"Extension", "Description", "Count"})
	for _, d := range q.FiletypeDetails() {
		if d.Score == 0 {
			continue
		}
		t.AppendRow(table.Row{d.Ext, d.Description, d.Score})
	}
	t.AppendFooter(table.Row{"", "Total", q.TotalFiles()})
	t.Render()
}

type domainCount struct {
	domain string
	n      int
}

// Domains renders the n most requested domains, ties in name order.
func Domains(w io.Writer, q *query.Query, n int) {
	if !q.Format().HasURL() {
		return
	}

	seen := make(map[string]int)
	for _, rec := range q.Results() {
		if d := urlparts.Split(rec.ReqURL).Domain; d != "" {
			seen[d]++
		}
	}

	rows := make([]domainCount, 0, len(seen))
	for d, c := range seen {
		rows = append(rows, domainCount{d, c})
	}
	slices.SortFunc(rows, func(a, b domainCount) int {
		if c := cmp.Compare(b.n, a.n); c != 0 {
			return c
		}
		return cmp.Compare(a.domain, b.domain)
	})
	if len(rows) > n {
		rows = rows[:n]
	}

	t := newTable(w, "Top Domains", table.Row{"Domain", "Requests"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.domain, r.n})
	}
	t.Render()
}
