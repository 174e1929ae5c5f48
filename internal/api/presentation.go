package api

import "github.com/kalambet/fbdash/internal/dataset"

// FactColors tints the fact badge of each table row.
var FactColors = map[string]string{
	"All-Wheel Drive":  "#000000",
	"Steering":         "#004aad",
	"Interior Quality": "#ff914d",
	"Engine":           "#5ce1e6",
	"Brake":            "#ff66c4",
	"Seats":            "#98FB98",
	"Transmission":     "#800080",
	"Electric Motor":   "#006400",
}

// Placeholders are the empty-state labels of the dropdowns.
var Placeholders = map[dataset.Field]string{
	dataset.FieldBrand:   "Select Brand",
	dataset.FieldModel:   "Select Model",
	dataset.FieldFact:    "Select Fact",
	dataset.FieldCountry: "Select City",
	dataset.FieldSource:  "Select Source",
}
