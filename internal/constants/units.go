package constants

const (
	// G is the universal gravitational constant in km³/(kg·s²).
	G = 6.67430e-20

	// SpeedOfLight in km/s.
	SpeedOfLight = 299792.458

	// AU is one astronomical unit in km.
	AU = 149597870.7

	EarthRadius = 6371.0

	KmPerMeter = 0.001
	MeterPerKm = 1000.0

	SecondsPerDay  = 86400.0
	SecondsPerYear = 31557600.0 // Julian year
)

func KmToMeters(v float64) float64     { return v * MeterPerKm }
func MetersToKm(v float64) float64     { return v * KmPerMeter }
func AUToKm(v float64) float64         { return v * AU }
func KmToAU(v float64) float64         { return v / AU }
func DaysToSeconds(v float64) float64  { return v * SecondsPerDay }
func YearsToSeconds(v float64) float64 { return v * SecondsPerYear }

// AUPerDayToKmPerSecond converts ephemeris velocities given in AU/day.
func AUPerDayToKmPerSecond(v float64) float64 { return v * AU / SecondsPerDay }
