package generator

import "seo_enricher/dataset"

// Mapping is domain → generated description.
type Mapping map[string]string

// Record is one incoming row. Values are kept as decoded JSON so a
// non-string column does not reject the whole batch.
type Record map[string]any

// Domains returns one domain per record, in record order, repeats
// included. Records without a usable domain are skipped.
func Domains(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		email, ok := rec[dataset.EmailColumn].(string)
		if !ok {
			continue
		}
		domain, ok := dataset.DomainOf(email)
		if !ok {
			continue
		}
		out = append(out, domain)
	}
	return out
}

// RecordsFromRows converts parsed CSV rows to the endpoint payload shape.
func RecordsFromRows(rows []dataset.Row) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		rec := make(Record, len(r))
		for k, v := range r {
			rec[k] = v
		}
		out[i] = rec
	}
	return out
}
