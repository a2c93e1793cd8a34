package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// ChillerRecord is one row of rated equipment data.
type ChillerRecord struct {
	bun.BaseModel `bun:"table:chillers,alias:ch"`

	ID                 int64    `bun:"id,pk,autoincrement" json:"id"`
	Manufacturer       *string  `bun:"manufacturer" json:"manufacturer"`
	Model              string   `bun:"model,notnull" json:"model"`
	ModelPrefix        *string  `bun:"model_prefix" json:"model_prefix"`
	CapacityTons       *float64 `bun:"capacity_tons" json:"capacity_tons"`
	AmbientF           *int     `bun:"ambient_f" json:"ambient_f"`
	EwtC               *float64 `bun:"ewt_c" json:"ewt_c"`
	LwtC               *float64 `bun:"lwt_c" json:"lwt_c"`
	EfficiencyKWPerTon *float64 `bun:"efficiency_kw_per_ton" json:"efficiency_kw_per_ton"`
	IPLVKWPerTon       *float64 `bun:"iplv_kw_per_ton" json:"iplv_kw_per_ton"`
	WaterflowUSGPM     *float64 `bun:"waterflow_usgpm" json:"waterflow_usgpm"`
	UnitKW             *float64 `bun:"unit_kw" json:"unit_kw"`
	CompressorKW       *float64 `bun:"compressor_kw" json:"compressor_kw"`
	FanKW              *float64 `bun:"fan_kw" json:"fan_kw"`
	PressureDropPSI    *float64 `bun:"pressure_drop_psi" json:"pressure_drop_psi"`
	PressureDropFtWG   *float64 `bun:"pressure_drop_ftwg" json:"pressure_drop_ftwg"`
	MCAAmps            *float64 `bun:"mca_amps" json:"mca_amps"`
	LengthIn           *float64 `bun:"length_in" json:"length_in"`
	WidthIn            *float64 `bun:"width_in" json:"width_in"`
	HeightIn           *float64 `bun:"height_in" json:"height_in"`
	Refrigerant        *string  `bun:"refrigerant" json:"refrigerant"`
	Notes              *string  `bun:"notes" json:"notes"`
	Extras             Extras   `bun:"extras_json,type:text" json:"extras_json,omitempty"`
	FolderName         *string  `bun:"folder_name" json:"folder_name"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// MissingRequired lists the required fields a record lacks, using the same
// wording as row validation.
func (c *ChillerRecord) MissingRequired() []string {
	var missing []string
	if c.Model == "" {
		missing = append(missing, "Model is required")
	}
	if c.CapacityTons == nil {
		missing = append(missing, "Capacity (tons) is required")
	}
	if c.EfficiencyKWPerTon == nil {
		missing = append(missing, "Energy efficiency is required")
	}
	return missing
}

// Extras keeps input columns that have no canonical field. It is stored as a
// JSON text column.
type Extras map[string]string

func (e Extras) Value() (driver.Value, error) {
	if len(e) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(map[string]string(e))
	if err != nil {
		return nil, fmt.Errorf("marshal extras: %w", err)
	}
	return string(b), nil
}

func (e *Extras) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*e = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan extras: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*e = nil
		return nil
	}
	m := map[string]string{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("scan extras: %w", err)
	}
	*e = m
	return nil
}

// ChillerQuery selects records at one rating point within a capacity band.
// Nil EwtC/LwtC leave that dimension unfiltered.
type ChillerQuery struct {
	AmbientF    int
	CapacityMin float64
	CapacityMax float64
	EwtC        *float64
	LwtC        *float64
}

// StoreStats summarises the catalog.
type StoreStats struct {
	TotalChillers int `json:"total_chillers"`
	Manufacturers int `json:"manufacturers"`
	Ambients      int `json:"ambients"`
}
