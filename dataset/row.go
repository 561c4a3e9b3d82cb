// Package dataset holds the contact rows of an uploaded CSV and the
// operations the enrichment flow runs over them.
package dataset

import "strings"

// Column names the enrichment flow reads and writes.
const (
	EmailColumn = "email"
	SEOColumn   = "seo"
)

// PreviewSize is the number of rows shown on screen after enrichment.
const PreviewSize = 10

// Row maps a column name to its value.
type Row map[string]string

// Table is a parsed CSV: the header in file order and the rows in file order.
type Table struct {
	Header []string
	Rows   []Row
}

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// DomainOf returns everything after the first "@" of an email value.
// Values without "@" or with nothing after it have no domain.
func DomainOf(email string) (string, bool) {
	_, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok {
		return "", false
	}
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return "", false
	}
	return domain, true
}

// Domain is DomainOf applied to the row's email column.
func Domain(r Row) (string, bool) {
	return DomainOf(r[EmailColumn])
}

// NeedsSEO reports whether the seo column is absent or blank.
func NeedsSEO(r Row) bool {
	return strings.TrimSpace(r[SEOColumn]) == ""
}

// MissingSEO returns, in order, the rows that need a description.
func MissingSEO(rows []Row) []Row {
	var out []Row
	for _, r := range rows {
		if NeedsSEO(r) {
			out = append(out, r)
		}
	}
	return out
}

// Merge returns a copy of rows with each row's seo column replaced by the
// description of its domain. Rows without a domain, or whose domain has no
// non-empty description, keep their value. rows is not modified.
func Merge(rows []Row, descriptions map[string]string) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		merged := r.Clone()
		if domain, ok := Domain(r); ok {
			if desc := descriptions[domain]; desc != "" {
				merged[SEOColumn] = desc
			}
		}
		out[i] = merged
	}
	return out
}

// Preview returns at most n leading rows.
func Preview(rows []Row, n int) []Row {
	if len(rows) <= n {
		return rows
	}
	return rows[:n]
}

// WithRows returns a table with the same header and the given rows. If the
// header lacks the seo column it is appended so merged descriptions are
// written out.
func (t Table) WithRows(rows []Row) Table {
	header := t.Header
	if !containsColumn(header, SEOColumn) && anyHas(rows, SEOColumn) {
		header = append(append([]string(nil), header...), SEOColumn)
	}
	return Table{Header: header, Rows: rows}
}

func containsColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}

func anyHas(rows []Row, col string) bool {
	for _, r := range rows {
		if _, ok := r[col]; ok {
			return true
		}
	}
	return false
}
