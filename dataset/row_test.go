package dataset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainOf(t *testing.T) {
	tests := []struct {
		email  string
		want   string
		wantOK bool
	}{
		{"a@foo.com", "foo.com", true},
		{"  a@foo.com ", "foo.com", true},
		{"a@b@foo.com", "b@foo.com", true},
		{"no-at-sign", "", false},
		{"a@", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got, ok := DomainOf(tt.email)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMissingSEO(t *testing.T) {
	rows := []Row{
		{"email": "a@foo.com", "seo": ""},
		{"email": "b@foo.com", "seo": "existing"},
		{"email": "c@bar.com", "seo": "   "},
		{"email": "d@bar.com"},
	}

	got := MissingSEO(rows)
	assert.Equal(t, []Row{rows[0], rows[2], rows[3]}, got)
}

func TestMissingSEO_NoneMissing(t *testing.T) {
	rows := []Row{
		{"email": "a@foo.com", "seo": "one"},
		{"email": "b@bar.com", "seo": "two"},
	}
	assert.Empty(t, MissingSEO(rows))
}

func TestMerge(t *testing.T) {
	t.Run("shared domain gets the same description", func(t *testing.T) {
		rows := []Row{
			{"email": "a@foo.com", "seo": ""},
			{"email": "b@foo.com", "seo": ""},
			{"email": "c@foo.com", "seo": ""},
		}
		got := Merge(rows, map[string]string{"foo.com": "Desc F."})
		for _, r := range got {
			assert.Equal(t, "Desc F.", r[SEOColumn])
		}
	})

	t.Run("unmatched domain keeps its value", func(t *testing.T) {
		rows := []Row{
			{"email": "a@foo.com", "seo": ""},
			{"email": "b@bar.com", "seo": "kept"},
			{"email": "c@baz.com"},
		}
		got := Merge(rows, map[string]string{"foo.com": "Desc F."})
		assert.Equal(t, "Desc F.", got[0][SEOColumn])
		assert.Equal(t, "kept", got[1][SEOColumn])
		_, present := got[2][SEOColumn]
		assert.False(t, present)
	})

	t.Run("empty description does not overwrite", func(t *testing.T) {
		rows := []Row{{"email": "a@foo.com", "seo": "old"}}
		got := Merge(rows, map[string]string{"foo.com": ""})
		assert.Equal(t, "old", got[0][SEOColumn])
	})

	t.Run("row without domain is untouched", func(t *testing.T) {
		rows := []Row{{"email": "nobody", "seo": ""}}
		got := Merge(rows, map[string]string{"": "x"})
		assert.Equal(t, "", got[0][SEOColumn])
	})

	t.Run("input rows are not modified", func(t *testing.T) {
		rows := []Row{{"email": "a@foo.com", "seo": ""}}
		_ = Merge(rows, map[string]string{"foo.com": "Desc F."})
		assert.Equal(t, "", rows[0][SEOColumn])
	})
}

func TestPreview(t *testing.T) {
	var rows []Row
	for i := 0; i < 25; i++ {
		rows = append(rows, Row{"email": fmt.Sprintf("u%d@foo.com", i)})
	}

	got := Preview(rows, PreviewSize)
	assert.Len(t, got, PreviewSize)
	assert.Equal(t, "u0@foo.com", got[0]["email"])
	assert.Equal(t, "u9@foo.com", got[9]["email"])

	assert.Len(t, Preview(rows[:3], PreviewSize), 3)
}

func TestTable_WithRows(t *testing.T) {
	table := Table{Header: []string{"email"}}
	got := table.WithRows([]Row{{"email": "a@foo.com", "seo": "Desc"}})
	assert.Equal(t, []string{"email", "seo"}, got.Header)
	assert.Equal(t, []string{"email"}, table.Header)

	withSEO := Table{Header: []string{"email", "seo"}}
	assert.Equal(t, []string{"email", "seo"}, withSEO.WithRows(nil).Header)
}
