// Package normalize maps supplier vocabulary onto canonical chiller fields and
// decodes the composite text columns found in rating tables.
package normalize

import (
	"regexp"
	"strings"
)

// Canonical field names. Dimensions and PressureDrop are composite inputs
// that decode into several stored columns.
const (
	FieldModel        = "model"
	FieldManufacturer = "manufacturer"
	FieldModelPrefix  = "model_prefix"
	FieldCapacity     = "capacity_tons"
	FieldAmbient      = "ambient_f"
	FieldEWT          = "ewt_c"
	FieldLWT          = "lwt_c"
	FieldEfficiency   = "efficiency_kw_per_ton"
	FieldIPLV         = "iplv_kw_per_ton"
	FieldWaterflow    = "waterflow_usgpm"
	FieldUnitKW       = "unit_kw"
	FieldCompressorKW = "compressor_kw"
	FieldFanKW        = "fan_kw"
	FieldMCA          = "mca_amps"
	FieldPSI          = "pressure_drop_psi"
	FieldFtWG         = "pressure_drop_ftwg"
	FieldLength       = "length_in"
	FieldWidth        = "width_in"
	FieldHeight       = "height_in"
	FieldRefrigerant  = "refrigerant"
	FieldNotes        = "notes"
	FieldFolder       = "folder_name"
	FieldEER          = "eer"

	FieldDimensions   = "dimensions"
	FieldPressureDrop = "pressure_drop"
)

var (
	parenRe      = regexp.MustCompile(`\([^)]*\)`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

var headerSynonyms = map[string]string{
	"model":         FieldModel,
	"model no":      FieldModel,
	"model no.":     FieldModel,
	"model number":  FieldModel,
	"unit model":    FieldModel,
	"manufacturer":  FieldManufacturer,
	"brand":         FieldManufacturer,
	"make":          FieldManufacturer,
	"tons":          FieldCapacity,
	"capacity":      FieldCapacity,
	"capacity tons": FieldCapacity,
	"cap":           FieldCapacity,
	"cap.":          FieldCapacity,
	"ambient":       FieldAmbient,
	"ambient temp":  FieldAmbient,
	"ewt":           FieldEWT,
	"lwt":           FieldLWT,

	"energy efficiency": FieldEfficiency,
	"efficiency":        FieldEfficiency,
	"eff":               FieldEfficiency,
	"eff.":              FieldEfficiency,
	"kw/ton":            FieldEfficiency,
	"iplv":              FieldIPLV,
	"eer":               FieldEER,

	"usgpm":         FieldWaterflow,
	"waterflow":     FieldWaterflow,
	"water flow":    FieldWaterflow,
	"flow":          FieldWaterflow,
	"gpm":           FieldWaterflow,
	"u. kw":         FieldUnitKW,
	"unit kw":       FieldUnitKW,
	"c. kw":         FieldCompressorKW,
	"compr. kw":     FieldCompressorKW,
	"compressor kw": FieldCompressorKW,
	"f. kw":         FieldFanKW,
	"fan kw":        FieldFanKW,
	"mca":           FieldMCA,

	"psi/ft.w.g":    FieldPressureDrop,
	"psi/ft.w.g.":   FieldPressureDrop,
	"psi/ftwg":      FieldPressureDrop,
	"pressure drop": FieldPressureDrop,
	"wpd":           FieldPressureDrop,
	"dimensions":    FieldDimensions,
	"dimension":     FieldDimensions,
	"l x w x h":     FieldDimensions,
	"length":        FieldLength,
	"width":         FieldWidth,
	"height":        FieldHeight,

	"refrigerant": FieldRefrigerant,
	"ref.":        FieldRefrigerant,
	"notes":       FieldNotes,
	"remarks":     FieldNotes,
}

var canonicalFields = map[string]bool{
	FieldModel: true, FieldManufacturer: true, FieldModelPrefix: true, FieldCapacity: true,
	FieldAmbient: true, FieldEWT: true, FieldLWT: true, FieldEfficiency: true, FieldIPLV: true,
	FieldWaterflow: true, FieldUnitKW: true, FieldCompressorKW: true, FieldFanKW: true, FieldMCA: true,
	FieldPSI: true, FieldFtWG: true, FieldLength: true, FieldWidth: true, FieldHeight: true,
	FieldRefrigerant: true, FieldNotes: true, FieldFolder: true, FieldEER: true,
	FieldDimensions: true, FieldPressureDrop: true,
}

// NormalizeHeader lower-cases a header, drops parenthetical annotations such
// as units, collapses whitespace and resolves known synonyms. Unknown headers
// come back in their normalized form.
func NormalizeHeader(header string) string {
	normalized := strings.ToLower(strings.TrimSpace(header))
	if normalized == "" {
		return ""
	}

	// "psi/ft.w.g" headers are often written entirely inside parentheses
	if stripped := strings.TrimSpace(parenRe.ReplaceAllString(normalized, "")); stripped != "" {
		normalized = stripped
	} else {
		normalized = strings.Trim(normalized, "() ")
	}
	normalized = strings.TrimSpace(whitespaceRe.ReplaceAllString(normalized, " "))

	if canonical, ok := headerSynonyms[normalized]; ok {
		return canonical
	}
	return normalized
}

// IsCanonicalField reports whether name is a stored field or a composite input.
func IsCanonicalField(name string) bool {
	return canonicalFields[name]
}
