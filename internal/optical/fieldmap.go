package optical

import (
	"encoding/json"
	"fmt"
	"os"
)

// Field names recognized by the parser. They match the scanner vendor's form
// layout terminology, which is also what the persisted field-map files use.
const (
	FieldSira     = "sira"     // sequence number
	FieldAdSoyad  = "adSoyad"  // full name
	FieldTCNo     = "tcNo"     // national ID
	FieldSalonNo  = "salonNo"  // room number
	FieldGirmedi  = "girmedi"  // absence flag
	FieldKitapcik = "kitapcik" // booklet type
	FieldCevaplar = "cevaplar" // answer string
)

// FieldSpec positions one field on a fixed-width line. Start is a zero-based
// character offset. A nil Length on the cevaplar field means "to end of
// line"; on any other field it extracts as empty.
type FieldSpec struct {
	Start  int  `json:"start"`
	Length *int `json:"length"`
}

// FieldMap positions every recognized field. It round-trips the flat JSON
// object the desktop app exports as parser configuration.
type FieldMap map[string]FieldSpec

func intPtr(n int) *int { return &n }

// DefaultFieldMap returns the standard scanner layout: name, national ID,
// room, absence flag and booklet in fixed columns, answers from column 38 to
// the end of the line. The sequence field defaults to the file line number.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		FieldSira:     {Start: 0, Length: intPtr(0)},
		FieldAdSoyad:  {Start: 0, Length: intPtr(22)},
		FieldTCNo:     {Start: 22, Length: intPtr(11)},
		FieldSalonNo:  {Start: 33, Length: intPtr(2)},
		FieldGirmedi:  {Start: 35, Length: intPtr(2)},
		FieldKitapcik: {Start: 37, Length: intPtr(1)},
		FieldCevaplar: {Start: 38, Length: nil},
	}
}

// LoadFieldMap reads a field map from a JSON file.
func LoadFieldMap(path string) (FieldMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read field map %s: %w", path, err)
	}
	var fm FieldMap
	if err := json.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("parse field map %s: %w", path, err)
	}
	return fm, nil
}

// SaveFieldMap writes a field map as indented JSON.
func SaveFieldMap(path string, fm FieldMap) error {
	data, err := json.MarshalIndent(fm, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal field map: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write field map %s: %w", path, err)
	}
	return nil
}
