package services

import (
	"chiller-selector/internal/models"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var comparisonHeader = []string{
	"Rank", "Model", "Manufacturer", "Capacity (tons)", "Efficiency (kW/ton)", "Waterflow (USgpm)",
	"Ambient (°F)", "EWT (°C)", "LWT (°C)", "Unit kW", "Compressor kW", "Fan kW", "IPLV (kW/ton)",
	"MCA (Amps)", "Pressure Drop (psi)", "Pressure Drop (ft.w.g)", "Length (in)", "Width (in)", "Height (in)",
}

// WriteComparisonCSV writes a side-by-side report of the given chillers,
// usually the best option followed by its alternatives.
func WriteComparisonCSV(w io.Writer, chillers []models.RankedChiller) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(comparisonHeader); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	for _, c := range chillers {
		ambient := ""
		if c.AmbientF != nil {
			ambient = strconv.Itoa(*c.AmbientF)
		}
		manufacturer := ""
		if c.Manufacturer != nil {
			manufacturer = *c.Manufacturer
		}

		row := []string{
			strconv.Itoa(c.Rank), c.Model, manufacturer,
			csvNumber(c.CapacityTons), csvNumber(c.EfficiencyKWPerTon), csvNumber(c.WaterflowUSGPM),
			ambient, csvNumber(c.EwtC), csvNumber(c.LwtC),
			csvNumber(c.UnitKW), csvNumber(c.CompressorKW), csvNumber(c.FanKW), csvNumber(c.IPLVKWPerTon),
			csvNumber(c.MCAAmps), csvNumber(c.PressureDropPSI), csvNumber(c.PressureDropFtWG),
			csvNumber(c.LengthIn), csvNumber(c.WidthIn), csvNumber(c.HeightIn),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
