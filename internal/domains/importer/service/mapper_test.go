package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachhub-backend/internal/domains/importer"
)

func TestMapRowHeaderAliasResolution(t *testing.T) {
	m := NewFieldMapper()

	headers := []string{"Client Name", "E-mail", "Goal"}
	row := []string{"Jane Doe", "jane@x.com", "Lose weight"}

	rec := m.MapRow(headers, row, "Sheet1")
	require.NotNil(t, rec)

	assert.Equal(t, "Jane Doe", rec.FullName)
	require.NotNil(t, rec.Email)
	assert.Equal(t, "jane@x.com", *rec.Email)
	require.NotNil(t, rec.Goals)
	assert.Equal(t, "Lose weight", *rec.Goals)
	assert.Empty(t, rec.Equipment)
}

func TestMapRowFirstLastNameSynthesis(t *testing.T) {
	m := NewFieldMapper()

	rec := m.MapRow([]string{"First Name", "Last Name"}, []string{"Jane", "Doe"}, "Sheet1")
	require.NotNil(t, rec)
	assert.Equal(t, "Jane Doe", rec.FullName)
}

func TestMapRowFirstNameOnly(t *testing.T) {
	m := NewFieldMapper()

	rec := m.MapRow([]string{"First Name", "Last Name"}, []string{"Jane", ""}, "Sheet1")
	require.NotNil(t, rec)
	assert.Equal(t, "Jane", rec.FullName)
}

func TestMapRowNameFallbackSkipsEmails(t *testing.T) {
	m := NewFieldMapper()

	// No recognizable name column: the first non-empty cell without an @
	// is taken as the name.
	rec := m.MapRow([]string{"Col A", "Col B"}, []string{"jane@x.com", "Jane Doe"}, "Sheet1")
	require.NotNil(t, rec)
	assert.Equal(t, "Jane Doe", rec.FullName)
}

func TestMapRowPlaceholderNameDropped(t *testing.T) {
	m := NewFieldMapper()

	for _, placeholder := range []string{"Name", "Full Name", "name", "FULL NAME"} {
		rec := m.MapRow([]string{"Name"}, []string{placeholder}, "Sheet1")
		assert.Nil(t, rec, "placeholder %q must not produce a record", placeholder)
	}
}

func TestMapRowEmptyRowDropped(t *testing.T) {
	m := NewFieldMapper()

	assert.Nil(t, m.MapRow([]string{"Name", "Email"}, []string{"", ""}, "Sheet1"))
	assert.Nil(t, m.MapRow([]string{"Name", "Email"}, nil, "Sheet1"))
}

func TestSplitEquipment(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "mixed delimiters with extra spacing",
			raw:  "Dumbbells; Resistance Bands,  Kettlebell",
			want: []string{"Dumbbells", "Resistance Bands", "Kettlebell"},
		},
		{
			name: "pipe delimiter",
			raw:  "Barbell|Bench",
			want: []string{"Barbell", "Bench"},
		},
		{
			name: "empty pieces dropped",
			raw:  ",;  ,Rower,",
			want: []string{"Rower"},
		},
		{
			name: "blank input",
			raw:  "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitEquipment(tt.raw))
		})
	}
}

func TestIsTemplateSheet(t *testing.T) {
	m := NewFieldMapper()

	for _, name := range []string{"Template", "Workout TEMPLATE", "Example Client", "Instructions", "README", "readme first"} {
		assert.True(t, m.IsTemplateSheet(name), "%q should be treated as a template sheet", name)
	}
	for _, name := range []string{"Jane Doe", "Clients", "Roster 2026"} {
		assert.False(t, m.IsTemplateSheet(name), "%q should not be treated as a template sheet", name)
	}
}

func TestMapSheetTemplateNeverProducesRecord(t *testing.T) {
	m := NewFieldMapper()

	// Well-formed header and data rows must not rescue a template sheet.
	sheet := importer.RawSheet{
		Name: "Example Client",
		Cells: [][]string{
			{"Name", "Email"},
			{"Jane Doe", "jane@x.com"},
		},
	}
	meta := importer.HeaderMetadata{HeaderRowIndex: 0, PrecedingKeyValues: map[string]string{}}

	assert.Nil(t, m.MapSheet(sheet, meta))
}

func TestMapSheetUsesSheetNameAsLastResort(t *testing.T) {
	m := NewFieldMapper()

	sheet := importer.RawSheet{
		Name: "John Smith",
		Cells: [][]string{
			{"Date", "Workout"},
			{"2026-01-05", "Squats 5x5"},
		},
	}
	meta := importer.HeaderMetadata{HeaderRowIndex: 0, PrecedingKeyValues: map[string]string{}}

	rec := m.MapSheet(sheet, meta)
	require.NotNil(t, rec)
	assert.Equal(t, "John Smith", rec.FullName)
	assert.Equal(t, "John Smith", rec.SourceSheetName)
}

func TestMapSheetOverlaysPrecedingMetadata(t *testing.T) {
	m := NewFieldMapper()

	sheet := importer.RawSheet{
		Name: "Alice Lee",
		Cells: [][]string{
			{"Goals", "Build muscle"},
			{"Equipment", "Dumbbells; Bands"},
			{"Date", "Workout"},
			{"2026-02-01", "Deadlifts"},
		},
	}
	meta := importer.HeaderMetadata{
		HeaderRowIndex: 2,
		PrecedingKeyValues: map[string]string{
			"goals":     "Build muscle",
			"equipment": "Dumbbells; Bands",
		},
	}

	rec := m.MapSheet(sheet, meta)
	require.NotNil(t, rec)
	assert.Equal(t, "Alice Lee", rec.FullName)
	require.NotNil(t, rec.Goals)
	assert.Equal(t, "Build muscle", *rec.Goals)
	assert.Equal(t, []string{"Dumbbells", "Bands"}, rec.Equipment)
}

func TestMapSheetEmptySheetDropped(t *testing.T) {
	m := NewFieldMapper()

	sheet := importer.RawSheet{Name: "", Cells: nil}
	meta := importer.HeaderMetadata{HeaderRowIndex: 0, PrecedingKeyValues: map[string]string{}}

	assert.Nil(t, m.MapSheet(sheet, meta))
}

func TestResolveColumn(t *testing.T) {
	headers := []string{"Phone Number", "Email Address", "Client Name"}

	tests := []struct {
		name    string
		aliases []string
		want    int
	}{
		{"exact beats fuzzy", []string{"Client Name"}, 2},
		{"normalized equality", []string{"E-mail"}, 1},
		{"containment", []string{"Phone"}, 0},
		{"no match", []string{"Injuries"}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveColumn(headers, tt.aliases))
		})
	}
}

func TestResolveColumnLeftmostWins(t *testing.T) {
	// Two columns satisfy the same alias: the leftmost one is used.
	headers := []string{"Email", "Backup Email"}
	assert.Equal(t, 0, ResolveColumn(headers, []string{"Email"}))
}
