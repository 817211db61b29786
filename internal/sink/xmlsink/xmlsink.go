// Package xmlsink exports parsed records to an XML document.
package xmlsink

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cyra/proxylog/internal/errcode"
	"github.com/cyra/proxylog/internal/ipv4"
	"github.com/cyra/proxylog/internal/record"
)

// Generator is written to the <generated> header.
const Generator = "proxylog"

const createdLayout = "2006-01-02;15:04:05"

type element struct {
	name, value string
}

type entry []element

func (e entry) MarshalXML(enc *xml.Encoder, start xml.StartElement) error {
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, el := range e {
		if err := enc.EncodeElement(el.value, xml.StartElement{Name: xml.Name{Local: el.name}}); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

type document struct {
	XMLName      xml.Name  `xml:"SquidLogParser"`
	Generated    string    `xml:"generated"`
	Created      string    `xml:"created"`
	Filename     string    `xml:"filename"`
	TotalEntries int       `xml:"total_entries"`
	LogFormat    logFormat `xml:"logformat"`
}

type logFormat struct {
	Format  string  `xml:"format,attr"`
	Entries []entry `xml:"entry"`
}

// Writer accumulates entries for one log format.
type Writer struct {
	format  record.LogFormat
	entries []entry
	now     func() time.Time
}

// New returns an empty writer for records of format f.
func New(f record.LogFormat) *Writer {
	return &Writer{format: f, now: time.Now}
}

// Len returns the number of appended records.
func (w *Writer) Len() int { return len(w.entries) }

// Append adds one record with every field of the writer's format.
func (w *Writer) Append(rec *record.Record) {
	w.entries = append(w.entries, fields(w.format, rec))
}

// Save writes the document to the normalized form of path and returns
// that path.
func (w *Writer) Save(path string) (string, error) {
	name, err := NormalizeFilename(path)
	if err != nil {
		return "", err
	}

	doc := document{
		Generated:    Generator,
		Created:      w.now().Format(createdLayout),
		Filename:     name,
		TotalEntries: len(w.entries),
		LogFormat:    logFormat{Format: w.format.Title(), Entries: w.entries},
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("xmlsink: marshal: %w", err)
	}
	out = append([]byte(xml.Header), out...)
	out = append(out, '\n')

	if err := os.WriteFile(name, out, 0o644); err != nil {
		return "", fmt.Errorf("%w: %s: %v", errcode.XMLFileNotSaved, name, err)
	}
	return name, nil
}

// NormalizeFilename lower-cases the base name of path, replaces spaces with
// underscores and forces a ".xml" extension. A base name with more than one
// dot is rejected with errcode.XMLFileNameInconsistent.
func NormalizeFilename(path string) (string, error) {
	dir, base := filepath.Split(path)
	if base == "" || strings.Count(base, ".") > 1 {
		return "", errcode.XMLFileNameInconsistent
	}
	base = strings.ToLower(strings.ReplaceAll(base, " ", "_"))
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if base == "" {
		return "", errcode.XMLFileNameInconsistent
	}
	return filepath.Join(dir, base+".xml"), nil
}

func fields(f record.LogFormat, r *record.Record) entry {
	itoa := strconv.Itoa
	addr := ipv4.ToText(r.ClientAddr)

	switch f {
	case record.Squid:
		return entry{
			{"timestamp", strconv.FormatUint(uint64(r.Timestamp), 10)},
			{"responsetime", itoa(r.ResponseTime)},
			{"clisrcipaddr", addr},
			{"reqstatushierstatus", r.ReqStatusHierStatus},
			{"totalsizereply", itoa(r.SizeReply)},
			{"reqmethod", r.ReqMethod},
			{"requrl", r.ReqURL},
			{"username", r.UserName},
			{"hierstatusipaddress", r.HierStatusIPAddress},
			{"mimetypecontent", r.MimeContentType},
		}
	case record.Common, record.Combined:
		e := entry{
			{"clisrcipaddr", addr},
			{"usernamefromident", r.UserNameIdent},
			{"username", r.UserName},
			{"localtime", r.LocalTime},
			{"reqmethod", r.ReqMethod},
			{"requrl", r.ReqURL},
			{"reqprotoversion", r.ReqProtoVersion},
			{"httpstatus", itoa(r.HTTPStatus)},
			{"totalsizereply", itoa(r.SizeReply)},
		}
		if f == record.Combined {
			e = append(e, element{"referrer", r.Referrer}, element{"useragent", r.UserAgent})
		}
		return append(e, element{"reqstatushierstatus", r.ReqStatusHierStatus})
	case record.Referrer:
		return entry{
			{"timestamp", strconv.FormatUint(uint64(r.Timestamp), 10)},
			{"clisrcipaddr", addr},
			{"referrer", r.Referrer},
			{"requrl", r.ReqURL},
		}
	case record.UserAgent:
		return entry{
			{"clisrcipaddr", addr},
			{"localtime", r.LocalTime},
			{"useragent", r.UserAgent},
		}
	}
	return nil
}
