package parser

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"chiller-selector/internal/models"
	"chiller-selector/internal/normalize"
)

// FieldValue renders one column of a record as text. Columns that are not
// record fields are looked up in the extras; missing values are empty.
func FieldValue(rec *models.ChillerRecord, column string) string {
	switch column {
	case "id":
		if rec.ID == 0 {
			return ""
		}
		return strconv.FormatInt(rec.ID, 10)
	case normalize.FieldModel:
		return rec.Model
	case normalize.FieldManufacturer:
		return text(rec.Manufacturer)
	case normalize.FieldModelPrefix:
		return text(rec.ModelPrefix)
	case normalize.FieldCapacity:
		return number(rec.CapacityTons)
	case normalize.FieldAmbient:
		if rec.AmbientF == nil {
			return ""
		}
		return strconv.Itoa(*rec.AmbientF)
	case normalize.FieldEWT:
		return number(rec.EwtC)
	case normalize.FieldLWT:
		return number(rec.LwtC)
	case normalize.FieldEfficiency:
		return number(rec.EfficiencyKWPerTon)
	case normalize.FieldIPLV:
		return number(rec.IPLVKWPerTon)
	case normalize.FieldWaterflow:
		return number(rec.WaterflowUSGPM)
	case normalize.FieldUnitKW:
		return number(rec.UnitKW)
	case normalize.FieldCompressorKW:
		return number(rec.CompressorKW)
	case normalize.FieldFanKW:
		return number(rec.FanKW)
	case normalize.FieldMCA:
		return number(rec.MCAAmps)
	case normalize.FieldPSI:
		return number(rec.PressureDropPSI)
	case normalize.FieldFtWG:
		return number(rec.PressureDropFtWG)
	case normalize.FieldLength:
		return number(rec.LengthIn)
	case normalize.FieldWidth:
		return number(rec.WidthIn)
	case normalize.FieldHeight:
		return number(rec.HeightIn)
	case normalize.FieldRefrigerant:
		return text(rec.Refrigerant)
	case normalize.FieldNotes:
		return text(rec.Notes)
	case normalize.FieldFolder:
		return text(rec.FolderName)
	default:
		return rec.Extras[column]
	}
}

// FormatTable writes records as a tab separated table with a header row.
// The output parses back into the same values.
func FormatTable(records []models.ChillerRecord, columns []string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'

	_ = w.Write(columns)
	row := make([]string, len(columns))
	for i := range records {
		for c, col := range columns {
			row[c] = FieldValue(&records[i], col)
		}
		_ = w.Write(row)
	}
	w.Flush()
	return buf.String()
}

func number(v *float64) string {
	if v == nil {
		return ""
	}
	return formatNumber(*v)
}

func text(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
