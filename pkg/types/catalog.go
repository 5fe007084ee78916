package types

import "slices"

// Choice catalogs offered for the choice and repeatable fields.
var (
	CategoryOptions = []string{"clothes", "containers", "explosives", "food", "weapons", "vehiclesparts"}
	UsageOptions    = []string{
		"Coast", "Farm", "Firefighter", "Hunting", "Industrial", "Medic",
		"Military", "Office", "Police", "Prison", "School", "Town", "Village",
	}
	ValueOptions = []string{"Tier1", "Tier2", "Tier3", "Tier4"}
	TagOptions   = []string{"shelves", "floor"}
)

// Options returns the catalog for a choice or repeatable tag, or nil.
func Options(tag string) []string {
	switch tag {
	case TagCategory:
		return CategoryOptions
	case TagUsage:
		return UsageOptions
	case TagValue:
		return ValueOptions
	case TagTag:
		return TagOptions
	}
	return nil
}

// IsOption reports whether value is in the catalog for tag.
func IsOption(tag, value string) bool {
	return slices.Contains(Options(tag), value)
}

// Bulk-editable scalar parameters.
const (
	ParamNominal  = "nominal"
	ParamMin      = "min"
	ParamLifetime = "lifetime"
	ParamRestock  = "restock"
)

// BulkParams lists the parameters a bulk edit session offers, in display order.
var BulkParams = []string{ParamNominal, ParamMin, ParamLifetime, ParamRestock}

// ScalableParams lists the parameters that carry a percentage slider.
var ScalableParams = []string{ParamLifetime, ParamRestock}

// IsBulkParam reports whether p is a bulk-editable parameter.
func IsBulkParam(p string) bool {
	return slices.Contains(BulkParams, p)
}

// IsScalable reports whether p has a percentage slider.
func IsScalable(p string) bool {
	return slices.Contains(ScalableParams, p)
}

// Slider bounds, in percent.
const (
	SliderMin     = 10
	SliderMax     = 200
	SliderStep    = 10
	SliderNeutral = 100
)
