package models

// HierarchyLevel identifies one of the four physical hierarchy tables.
type HierarchyLevel string

const (
	LevelLocation HierarchyLevel = "location"
	LevelSection  HierarchyLevel = "section"
	LevelZone     HierarchyLevel = "zone"
	LevelSpot     HierarchyLevel = "spot"
)

func IsValidHierarchyLevel(level HierarchyLevel) bool {
	switch level {
	case LevelLocation, LevelSection, LevelZone, LevelSpot:
		return true
	default:
		return false
	}
}

// ChildLevel returns the level one step below, or "" for spots.
func (l HierarchyLevel) ChildLevel() HierarchyLevel {
	switch l {
	case LevelLocation:
		return LevelSection
	case LevelSection:
		return LevelZone
	case LevelZone:
		return LevelSpot
	default:
		return ""
	}
}

// VehicleType is the closed set of vehicle classes a rate can target.
type VehicleType string

const (
	VehicleCar        VehicleType = "car"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleTruck      VehicleType = "truck"
	VehicleVan        VehicleType = "van"
	VehicleBicycle    VehicleType = "bicycle"
)

func IsValidVehicleType(vt VehicleType) bool {
	switch vt {
	case VehicleCar, VehicleMotorcycle, VehicleTruck, VehicleVan, VehicleBicycle:
		return true
	default:
		return false
	}
}

// DiscountType is the closed set of discount rule kinds.
type DiscountType string

const (
	DiscountSenior DiscountType = "senior"
	DiscountPWD    DiscountType = "pwd"
	DiscountCustom DiscountType = "custom"
)

func IsValidDiscountType(dt DiscountType) bool {
	switch dt {
	case DiscountSenior, DiscountPWD, DiscountCustom:
		return true
	default:
		return false
	}
}

// ConditionOperator names the comparison a discount condition performs.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorGreaterThan ConditionOperator = "greater_than"
	OperatorLessThan    ConditionOperator = "less_than"
	OperatorContains    ConditionOperator = "contains"
)

func IsValidConditionOperator(op ConditionOperator) bool {
	switch op {
	case OperatorEquals, OperatorGreaterThan, OperatorLessThan, OperatorContains:
		return true
	default:
		return false
	}
}

// PricingSource reports where a node's effective pricing came from.
type PricingSource string

const (
	SourceOwn       PricingSource = "own"
	SourceInherited PricingSource = "inherited"
	SourceDefault   PricingSource = "default"
)
