package normalize

import (
	"fmt"
	"strings"

	"chiller-selector/internal/models"
)

// RawRow is one input row keyed by normalized header. Keys that are not
// canonical field names end up in the record's extras.
type RawRow map[string]string

// ValidateAndClean coerces a raw row into a record. Required-field failures
// and unreadable composite cells come back as messages; the record is always
// returned with nil in place of anything that could not be read.
func ValidateAndClean(row RawRow) (models.ChillerRecord, []string) {
	var rec models.ChillerRecord

	rec.Model = strings.TrimSpace(row[FieldModel])
	rec.Manufacturer = safeText(row[FieldManufacturer])
	rec.ModelPrefix = safeText(row[FieldModelPrefix])
	rec.Refrigerant = safeText(row[FieldRefrigerant])
	rec.Notes = safeText(row[FieldNotes])
	rec.FolderName = safeText(row[FieldFolder])

	rec.CapacityTons = SafeFloat(row[FieldCapacity])
	rec.AmbientF = SafeInt(row[FieldAmbient])
	rec.EwtC = SafeFloat(row[FieldEWT])
	rec.LwtC = SafeFloat(row[FieldLWT])
	rec.EfficiencyKWPerTon = SafeFloat(row[FieldEfficiency])
	rec.IPLVKWPerTon = SafeFloat(row[FieldIPLV])
	rec.WaterflowUSGPM = SafeFloat(row[FieldWaterflow])
	rec.UnitKW = SafeFloat(row[FieldUnitKW])
	rec.CompressorKW = SafeFloat(row[FieldCompressorKW])
	rec.FanKW = SafeFloat(row[FieldFanKW])
	rec.MCAAmps = SafeFloat(row[FieldMCA])
	rec.PressureDropPSI = SafeFloat(row[FieldPSI])
	rec.PressureDropFtWG = SafeFloat(row[FieldFtWG])
	rec.LengthIn = SafeFloat(row[FieldLength])
	rec.WidthIn = SafeFloat(row[FieldWidth])
	rec.HeightIn = SafeFloat(row[FieldHeight])

	var problems []string

	if dims := strings.TrimSpace(row[FieldDimensions]); dims != "" {
		l, w, h := ParseDimensions(dims)
		if l == nil {
			problems = append(problems, fmt.Sprintf("Could not parse dimensions %q", dims))
		} else {
			rec.LengthIn, rec.WidthIn, rec.HeightIn = l, w, h
		}
	}

	if pd := strings.TrimSpace(row[FieldPressureDrop]); pd != "" {
		psi, ftwg := ParsePressureDrop(pd)
		if psi == nil {
			problems = append(problems, fmt.Sprintf("Could not parse pressure drop %q", pd))
		} else {
			rec.PressureDropPSI, rec.PressureDropFtWG = psi, ftwg
		}
	}

	eerUsed := false
	if rec.EfficiencyKWPerTon == nil {
		if eer := SafeFloat(row[FieldEER]); eer != nil {
			rec.EfficiencyKWPerTon = ConvertEERToKWPerTon(*eer)
			eerUsed = rec.EfficiencyKWPerTon != nil
		}
	}

	if rec.ModelPrefix == nil {
		rec.ModelPrefix = ExtractModelPrefix(rec.Model)
	}
	if rec.Manufacturer == nil {
		if rec.ModelPrefix != nil {
			rec.Manufacturer = ExtractManufacturer(*rec.ModelPrefix)
		}
		if rec.Manufacturer == nil {
			rec.Manufacturer = ExtractManufacturer(rec.Model)
		}
	}

	for key, value := range row {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if key == FieldEER && !eerUsed {
			rec.Extras = addExtra(rec.Extras, key, value)
			continue
		}
		if IsCanonicalField(key) {
			continue
		}
		rec.Extras = addExtra(rec.Extras, key, value)
	}

	return rec, append(rec.MissingRequired(), problems...)
}

func addExtra(extras models.Extras, key, value string) models.Extras {
	if extras == nil {
		extras = models.Extras{}
	}
	extras[key] = value
	return extras
}

func safeText(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}
