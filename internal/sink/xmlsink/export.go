package xmlsink

import (
	"iter"

	"github.com/cyra/proxylog/internal/ipv4"
	"github.com/cyra/proxylog/internal/record"
)

// Source is the part of a parser an export consumes.
type Source interface {
	Format() record.LogFormat
	Records() iter.Seq2[record.Key, *record.Record]
	Clear()
}

// Filter restricts an export to an inclusive (timestamp, address) box.
type Filter struct {
	From, To uint32
	Addrs    ipv4.Range
}

func (f *Filter) match(k record.Key) bool {
	if f == nil {
		return true
	}
	return k.Timestamp >= f.From && k.Timestamp <= f.To && f.Addrs.Contains(k.Addr)
}

// Export writes every record of src accepted by filter (nil accepts all) to
// path and then clears src. It returns the written path and entry count.
// src is left untouched when saving fails.
func Export(src Source, path string, filter *Filter) (string, int, error) {
	w := New(src.Format())
	for k, rec := range src.Records() {
		if filter.match(k) {
			w.Append(rec)
		}
	}
	name, err := w.Save(path)
	if err != nil {
		return "", 0, err
	}
	src.Clear()
	return name, w.Len(), nil
}
