package service

import (
	"regexp"
	"strings"

	"coachhub-backend/internal/domains/importer"
)

// Canonical field keys.
const (
	fieldName      = "name"
	fieldEmail     = "email"
	fieldPhone     = "phone"
	fieldGoals     = "goals"
	fieldInjuries  = "injuries"
	fieldEquipment = "equipment"
	fieldNotes     = "notes"
)

// fieldAlias pairs a canonical field with the header spellings that map to
// it, in priority order. Adding a new spelling is a data change here, not a
// code change in the resolver.
type fieldAlias struct {
	field   string
	aliases []string
}

var fieldAliases = []fieldAlias{
	{fieldName, []string{"Name", "Full Name", "Client Name", "Client", "Customer", "Member", "Athlete"}},
	{fieldEmail, []string{"Email", "E-mail", "Email Address", "Mail"}},
	{fieldPhone, []string{"Phone", "Phone Number", "Mobile", "Cell", "Telephone", "Contact"}},
	{fieldGoals, []string{"Goals", "Goal", "Objectives", "Fitness Goals", "Target"}},
	{fieldInjuries, []string{"Injuries", "Injury", "Medical", "Limitations", "Conditions"}},
	{fieldEquipment, []string{"Equipment", "Gear", "Available Equipment"}},
	{fieldNotes, []string{"Notes", "Note", "Comments", "Remarks"}},
}

var (
	firstNameAliases = []string{"First Name", "First"}
	lastNameAliases  = []string{"Last Name", "Last", "Surname"}
)

// placeholderNames are literal header values that sometimes leak into data
// rows of half-filled templates. A record carrying one is not a client.
var placeholderNames = []string{"name", "full name"}

// templateSheetMarkers exclude non-roster tabs by name, case-insensitive
// substring match.
var templateSheetMarkers = []string{"template", "example client", "instructions", "readme"}

var (
	nonAlnumPattern  = regexp.MustCompile(`[^a-z0-9]+`)
	equipmentPattern = regexp.MustCompile(`[,;|]`)
)

// FieldMapper turns raw sheet rows into canonical records by matching
// header spellings against the alias table.
type FieldMapper struct{}

func NewFieldMapper() *FieldMapper {
	return &FieldMapper{}
}

// IsTemplateSheet reports whether a sheet name marks a non-roster tab.
func (m *FieldMapper) IsTemplateSheet(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range templateSheetMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// MapRow maps one data row against its header row. Returns nil when no
// usable client name can be resolved.
func (m *FieldMapper) MapRow(headers, row []string, sheetName string) *importer.CanonicalRecord {
	rec := m.mapFields(headers, row, sheetName)

	name := m.resolveName(headers, row)
	if name == "" {
		name = fallbackNameCell(row)
	}
	if !usableName(name) {
		return nil
	}
	rec.FullName = name

	return rec
}

// MapSheet maps a whole sheet to at most one record: the first data row
// after the header, enriched with the sheet's preceding key/value rows.
// The sheet name itself is the name of last resort.
func (m *FieldMapper) MapSheet(sheet importer.RawSheet, meta importer.HeaderMetadata) *importer.CanonicalRecord {
	if m.IsTemplateSheet(sheet.Name) {
		return nil
	}

	var headers []string
	if meta.HeaderRowIndex < len(sheet.Cells) {
		headers = sheet.Cells[meta.HeaderRowIndex]
	}

	dataRow := firstDataRow(sheet.Cells, meta.HeaderRowIndex)

	rec := m.mapFields(headers, dataRow, sheet.Name)
	m.overlayMetadata(rec, meta.PrecedingKeyValues)

	// Sheet mode prefers the sheet's own identity over guessing from data
	// cells: metadata rows, then the tab name, then the cell heuristic.
	name := m.resolveName(headers, dataRow)
	if name == "" {
		name = m.metadataValue(meta.PrecedingKeyValues, fieldAliases[0].aliases)
	}
	if name == "" {
		name = strings.TrimSpace(sheet.Name)
	}
	if name == "" {
		name = fallbackNameCell(dataRow)
	}
	if !usableName(name) {
		return nil
	}
	rec.FullName = name

	return rec
}

// SplitEquipment splits a delimited equipment cell into trimmed items.
func SplitEquipment(raw string) []string {
	items := []string{}
	for _, piece := range equipmentPattern.Split(raw, -1) {
		if v := strings.TrimSpace(piece); v != "" {
			items = append(items, v)
		}
	}
	return items
}

// ResolveColumn finds the first column whose header matches one of the
// aliases. Aliases are tried in priority order; within one alias the
// leftmost matching column wins. Returns -1 when nothing matches.
func ResolveColumn(headers, aliases []string) int {
	if col := resolveExact(headers, aliases); col >= 0 {
		return col
	}
	return resolveFuzzy(headers, aliases)
}

// resolveExact is the case-insensitive whole-header pass.
func resolveExact(headers, aliases []string) int {
	for _, alias := range aliases {
		for col, header := range headers {
			if strings.EqualFold(strings.TrimSpace(header), alias) {
				return col
			}
		}
	}
	return -1
}

// resolveFuzzy strips everything non-alphanumeric and accepts equality or
// containment either way ("E-mail" vs "email", "Client Name" vs
// "name of client").
func resolveFuzzy(headers, aliases []string) int {
	for _, alias := range aliases {
		na := normalizeHeader(alias)
		if na == "" {
			continue
		}
		for col, header := range headers {
			nh := normalizeHeader(header)
			if nh == "" {
				continue
			}
			if nh == na || strings.Contains(nh, na) || strings.Contains(na, nh) {
				return col
			}
		}
	}
	return -1
}

// mapFields fills every canonical field except the name.
func (m *FieldMapper) mapFields(headers, row []string, sheetName string) *importer.CanonicalRecord {
	rec := &importer.CanonicalRecord{
		Equipment:       []string{},
		SourceSheetName: sheetName,
	}

	for _, fa := range fieldAliases {
		if fa.field == fieldName {
			continue
		}
		col := ResolveColumn(headers, fa.aliases)
		if col < 0 || col >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[col])
		if value == "" {
			continue
		}
		m.setField(rec, fa.field, value)
	}

	return rec
}

// overlayMetadata fills still-empty fields from the sheet's preceding
// key/value rows. Keys arrive case-folded from the extractor.
func (m *FieldMapper) overlayMetadata(rec *importer.CanonicalRecord, kv map[string]string) {
	for _, fa := range fieldAliases {
		if fa.field == fieldName || m.fieldSet(rec, fa.field) {
			continue
		}
		if value := m.metadataValue(kv, fa.aliases); value != "" {
			m.setField(rec, fa.field, value)
		}
	}
}

// metadataValue finds a key/value entry whose key matches one of the
// aliases, using the same normalization as column resolution.
func (m *FieldMapper) metadataValue(kv map[string]string, aliases []string) string {
	if len(kv) == 0 {
		return ""
	}
	for _, alias := range aliases {
		if v, ok := kv[strings.ToLower(alias)]; ok {
			return strings.TrimSpace(v)
		}
	}
	for _, alias := range aliases {
		na := normalizeHeader(alias)
		if na == "" {
			continue
		}
		for key, v := range kv {
			nk := normalizeHeader(key)
			if nk == "" {
				continue
			}
			if nk == na || strings.Contains(nk, na) || strings.Contains(na, nk) {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// resolveName finds the client name within a row: an exact name column
// first, then First/Last synthesis, then a fuzzy name column. Synthesis
// runs before the fuzzy pass so a lone "First Name" column is not
// mistaken for the full name.
func (m *FieldMapper) resolveName(headers, row []string) string {
	if col := resolveExact(headers, fieldAliases[0].aliases); col >= 0 && col < len(row) {
		if name := strings.TrimSpace(row[col]); name != "" {
			return name
		}
	}

	var parts []string
	if col := ResolveColumn(headers, firstNameAliases); col >= 0 && col < len(row) {
		if v := strings.TrimSpace(row[col]); v != "" {
			parts = append(parts, v)
		}
	}
	if col := ResolveColumn(headers, lastNameAliases); col >= 0 && col < len(row) {
		if v := strings.TrimSpace(row[col]); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}

	if col := resolveFuzzy(headers, fieldAliases[0].aliases); col >= 0 && col < len(row) {
		if name := strings.TrimSpace(row[col]); name != "" {
			return name
		}
	}

	return ""
}

// fallbackNameCell is the name of last resort for row-per-record input: a
// non-empty cell without an @ is probably a name, not an email.
func fallbackNameCell(row []string) string {
	for _, cell := range row {
		v := strings.TrimSpace(cell)
		if v != "" && !strings.Contains(v, "@") {
			return v
		}
	}
	return ""
}

func (m *FieldMapper) setField(rec *importer.CanonicalRecord, field, value string) {
	switch field {
	case fieldEmail:
		rec.Email = &value
	case fieldPhone:
		rec.Phone = &value
	case fieldGoals:
		rec.Goals = &value
	case fieldInjuries:
		rec.Injuries = &value
	case fieldEquipment:
		rec.Equipment = SplitEquipment(value)
	case fieldNotes:
		rec.Notes = &value
	}
}

func (m *FieldMapper) fieldSet(rec *importer.CanonicalRecord, field string) bool {
	switch field {
	case fieldEmail:
		return rec.Email != nil
	case fieldPhone:
		return rec.Phone != nil
	case fieldGoals:
		return rec.Goals != nil
	case fieldInjuries:
		return rec.Injuries != nil
	case fieldEquipment:
		return len(rec.Equipment) > 0
	case fieldNotes:
		return rec.Notes != nil
	}
	return false
}

// firstDataRow returns the first row after the header containing at least
// one non-empty cell, or nil.
func firstDataRow(cells [][]string, headerRowIndex int) []string {
	for i := headerRowIndex + 1; i < len(cells); i++ {
		for _, cell := range cells[i] {
			if strings.TrimSpace(cell) != "" {
				return cells[i]
			}
		}
	}
	return nil
}

func usableName(name string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	for _, placeholder := range placeholderNames {
		if lower == placeholder {
			return false
		}
	}
	return true
}

func normalizeHeader(s string) string {
	return nonAlnumPattern.ReplaceAllString(strings.ToLower(s), "")
}
