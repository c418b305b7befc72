package metrics

// Dimension is the physical quantity a MeasurementUnit measures.
type Dimension int

const (
	// DimensionNone is the dimension of dimensionless counts and ratios
	// that are not a Percentage.
	DimensionNone Dimension = iota
	DimensionTime
	DimensionPercentage
	DimensionInformation
)

func (d Dimension) String() string {
	switch d {
	case DimensionTime:
		return "time"
	case DimensionPercentage:
		return "percentage"
	case DimensionInformation:
		return "information"
	default:
		return "none"
	}
}

// magnitude is the named multiplier that relates a unit to its dimension's
// canonical unit (seconds for time, bytes for information).
type magnitude struct {
	name   string
	factor float64
}

// MeasurementUnit is an immutable, process-lifetime singleton pairing a
// Dimension with a magnitude. Every exported *MeasurementUnit value below
// is created once at package init and never mutated.
type MeasurementUnit struct {
	dimension Dimension
	magnitude magnitude
}

// Dimension returns the unit's physical dimension.
func (u *MeasurementUnit) Dimension() Dimension { return u.dimension }

// Name returns the unit's magnitude name, e.g. "nanoseconds".
func (u *MeasurementUnit) Name() string { return u.magnitude.name }

func (u *MeasurementUnit) String() string {
	return "Unit{dim: " + u.dimension.String() + ", magnitude: " + u.magnitude.name + "}"
}

func newUnit(d Dimension, name string, factor float64) *MeasurementUnit {
	return &MeasurementUnit{dimension: d, magnitude: magnitude{name: name, factor: factor}}
}

// Process-lifetime singletons: one package-level variable per unit, listed
// dimension by dimension.
var (
	TimeNanos  = newUnit(DimensionTime, "nanoseconds", 1e-9)
	TimeMicros = newUnit(DimensionTime, "microseconds", 1e-6)
	TimeMillis = newUnit(DimensionTime, "milliseconds", 1e-3)
	TimeSeconds = newUnit(DimensionTime, "seconds", 1)

	InfoBytes     = newUnit(DimensionInformation, "bytes", 1)
	InfoKilobytes = newUnit(DimensionInformation, "kilobytes", float64(uint64(1)<<10))
	InfoMegabytes = newUnit(DimensionInformation, "megabytes", float64(uint64(1)<<20))
	InfoGigabytes = newUnit(DimensionInformation, "gigabytes", float64(uint64(1)<<30))

	Percentage = newUnit(DimensionPercentage, "percentage", 1)
	None       = newUnit(DimensionNone, "none", 1)
)

// ConvertUnit converts value from one unit to another. Conversion across
// mismatched dimensions is defined as a no-op (the input is returned
// unchanged) with a warning logged — it must never panic, to preserve
// forward compatibility with callers that mix units carelessly.
func ConvertUnit(value float64, from, to *MeasurementUnit) float64 {
	if from == to {
		return value
	}
	if from.dimension != to.dimension {
		pkgLogger.Warn().
			Str("from_dimension", from.dimension.String()).
			Str("to_dimension", to.dimension.String()).
			Msg("cannot convert values across mismatched measurement dimensions; returning value unchanged")
		return value
	}
	return (from.magnitude.factor / to.magnitude.factor) * value
}

// unitsByName maps the enum spellings accepted in configuration (spec.md
// §6's TimeUnitsSetting) to their singleton.
var unitsByName = map[string]*MeasurementUnit{
	"TimeNanos":     TimeNanos,
	"TimeMicros":    TimeMicros,
	"TimeMillis":    TimeMillis,
	"TimeSeconds":   TimeSeconds,
	"InfoBytes":     InfoBytes,
	"InfoKiloBytes": InfoKilobytes,
	"InfoMegaBytes": InfoMegabytes,
	"InfoGigaBytes": InfoGigabytes,
	"Percentage":    Percentage,
	"None":          None,
}

// UnitByName resolves one of the named singletons above, for config layers
// that carry units as strings.
func UnitByName(name string) (*MeasurementUnit, error) {
	u, ok := unitsByName[name]
	if !ok {
		return nil, validationErrorf("%q is not a known measurement unit", name)
	}
	return u, nil
}
