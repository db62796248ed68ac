package deadline

import "time"

// Bucket is the criticality band of an inspection deadline.
type Bucket string

const (
	// BucketUndefined means the date was never recorded. Distinct from
	// expired: a missing deadline is a data gap, not an overdue control.
	BucketUndefined Bucket = "undefined"
	BucketExpired   Bucket = "expired"
	BucketUrgent    Bucket = "urgent"
	BucketWarning   Bucket = "warning"
	BucketOK        Bucket = "ok"
)

// Fixed policy thresholds, in whole days. Not configurable.
const (
	UrgentThresholdDays  = 7
	WarningThresholdDays = 30
)

// Classification is the result of classifying one deadline.
type Classification struct {
	Bucket        Bucket `json:"bucket"`
	DaysRemaining *int   `json:"days_remaining"`
}

// Critical reports whether the bucket gets the critical/alert treatment.
func (c Classification) Critical() bool {
	return c.Bucket == BucketExpired || c.Bucket == BucketUrgent
}

// Classify buckets an inspection deadline relative to asOf. The reference
// instant is always explicit so callers (and tests) control the clock.
func Classify(date *time.Time, asOf time.Time) Classification {
	if date == nil {
		return Classification{Bucket: BucketUndefined}
	}

	days := int(date.Sub(asOf).Hours() / 24)
	c := Classification{DaysRemaining: &days}

	switch {
	case date.Before(asOf) || days < 0:
		c.Bucket = BucketExpired
	case days < UrgentThresholdDays:
		c.Bucket = BucketUrgent
	case days < WarningThresholdDays:
		c.Bucket = BucketWarning
	default:
		c.Bucket = BucketOK
	}
	return c
}

// VehicleType determines which regulatory controls apply to a vehicle.
type VehicleType string

const (
	TypePorteur  VehicleType = "Porteur"
	TypeRemorque VehicleType = "Remorque"
	TypeTracteur VehicleType = "Tracteur"
)

// ValidVehicleType reports whether t belongs to the closed type set.
func ValidVehicleType(t VehicleType) bool {
	switch t {
	case TypePorteur, TypeRemorque, TypeTracteur:
		return true
	}
	return false
}

// RequiredControls says which inspection dates a vehicle type must carry.
type RequiredControls struct {
	CT    bool `json:"ct"`
	Tachy bool `json:"tachy"`
	ATP   bool `json:"atp"`
}

// ControlsFor returns the required controls for a vehicle type. Unknown types
// conservatively require everything.
func ControlsFor(t VehicleType) RequiredControls {
	switch t {
	case TypePorteur:
		return RequiredControls{CT: true, Tachy: true, ATP: true}
	case TypeRemorque:
		return RequiredControls{CT: true, ATP: true}
	case TypeTracteur:
		return RequiredControls{CT: true, Tachy: true}
	default:
		return RequiredControls{CT: true, Tachy: true, ATP: true}
	}
}

// IsCritical reports whether any control *required* for the vehicle type is
// expired or urgent. Dates for controls the type does not require are ignored
// even when present and overdue.
func IsCritical(t VehicleType, ct, tachy, atp *time.Time, asOf time.Time) bool {
	controls := ControlsFor(t)
	if controls.CT && Classify(ct, asOf).Critical() {
		return true
	}
	if controls.Tachy && Classify(tachy, asOf).Critical() {
		return true
	}
	if controls.ATP && Classify(atp, asOf).Critical() {
		return true
	}
	return false
}
