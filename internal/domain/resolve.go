package domain

import (
	"fmt"
	"strings"
)

// Field is a canonical feature or column name, independent of the literal
// header text present in any given dataset file.
type Field string

const (
	FieldMonth    Field = "month"
	FieldTemp     Field = "temp"
	FieldRain     Field = "rain"
	FieldPH       Field = "ph"
	FieldCrop     Field = "crop"
	FieldProblems Field = "problems"
	FieldYield    Field = "yield"
)

// TrainingFields lists the model's feature columns in training order,
// followed by the label column. Prediction rows must be assembled in exactly
// this feature order; see model.Model.Predict.
var TrainingFields = []Field{FieldMonth, FieldTemp, FieldRain, FieldPH}

// fieldSpellings maps each canonical field to its accepted header spellings,
// tried in order. The lists cover the Chinese headers of the shipped dataset
// and their English equivalents.
var fieldSpellings = map[Field][]string{
	FieldMonth:    {"种植月", "月份", "month"},
	FieldTemp:     {"温度℃", "温度", "temp"},
	FieldRain:     {"降雨mm", "降雨", "rain"},
	FieldPH:       {"土壤pH", "pH值", "ph"},
	FieldCrop:     {"作物", "crop"},
	FieldProblems: {"常见问题", "problems"},
	FieldYield:    {"产量等级", "yield"},
}

// requiredFields are the canonical fields that must resolve for training to
// be possible. Absence of any of them is a fatal configuration error.
var requiredFields = []Field{FieldMonth, FieldTemp, FieldRain, FieldPH, FieldCrop}

// Columns maps canonical fields to the actual header string that satisfied
// them in a specific dataset.
type Columns map[Field]string

// ResolveColumns matches canonical fields against the normalized dataset
// header. For each field the accepted spellings are tried in order and the
// first one present wins. A required field with no match fails resolution;
// advisory fields are simply left out of the result.
func ResolveColumns(headers []string) (Columns, error) {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	cols := make(Columns, len(fieldSpellings))
	for field, spellings := range fieldSpellings {
		for _, s := range spellings {
			if present[s] {
				cols[field] = s
				break
			}
		}
	}

	for _, field := range requiredFields {
		if _, ok := cols[field]; !ok {
			return nil, fmt.Errorf("no column matches field %q (tried %s)",
				field, strings.Join(fieldSpellings[field], ", "))
		}
	}
	return cols, nil
}
