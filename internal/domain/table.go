package domain

// Row is one dataset record keyed by normalized header.
type Row map[string]string

// Table is the loaded reference dataset. It is built once at startup and
// never mutated afterwards, so it is safe to share across requests.
type Table struct {
	Headers []string
	Rows    []Row
}

// Get returns the cell for the given normalized header, or "" if absent.
func (r Row) Get(header string) string {
	return r[header]
}

// CropInfo holds the descriptive columns of a dataset row, rendered alongside
// a recommendation.
type CropInfo struct {
	Crop           string `json:"crop"`
	Temperature    string `json:"temperature"`
	Rainfall       string `json:"rainfall"`
	SoilPH         string `json:"soil_ph"`
	CommonProblems string `json:"common_problems,omitempty"`
	YieldTier      string `json:"yield_tier,omitempty"`
}

// LookupCropInfo returns the advisory fields of the first dataset row whose
// crop column equals label. The second return is false when no row matches.
func LookupCropInfo(t *Table, cols Columns, label string) (CropInfo, bool) {
	cropCol := cols[FieldCrop]
	for _, row := range t.Rows {
		if row.Get(cropCol) != label {
			continue
		}
		info := CropInfo{
			Crop:        label,
			Temperature: row.Get(cols[FieldTemp]),
			Rainfall:    row.Get(cols[FieldRain]),
			SoilPH:      row.Get(cols[FieldPH]),
		}
		// Advisory columns are optional; missing resolution leaves them empty.
		if c, ok := cols[FieldProblems]; ok {
			info.CommonProblems = row.Get(c)
		}
		if c, ok := cols[FieldYield]; ok {
			info.YieldTier = row.Get(c)
		}
		return info, true
	}
	return CropInfo{}, false
}
