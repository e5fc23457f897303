// Package clock implements the authoritative game clock and weather model
// described in spec §4.1. The clock advances in variable wall-clock
// increments, translating real seconds to game seconds via a configurable
// ratio, and derives year/month/day/hour/minute and a named time-period.
package clock

import (
	"github.com/voidengine/simcore/internal/config"
	"github.com/voidengine/simcore/internal/rng"
)

// Period names the coarse time-of-day bucket used by behavior, spawning and
// flavor text (spec §4.1).
type Period string

const (
	PeriodDawn      Period = "dawn"
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodDusk      Period = "dusk"
	PeriodNight     Period = "night"
)

// Fixed calendar constants; configurable only in the sense that a content
// pack could override them through the tuning document in a future
// revision — spec.md treats them as "fixed configurable constants".
const (
	SecondsPerMinute = 60
	MinutesPerHour   = 60
	HoursPerDay      = 24
	DaysPerMonth     = 30
	MonthsPerYear    = 12
)

// Clock is the authoritative game time. GameSeconds and RealToGameRatio are
// the persisted fields; the calendar values are derived from GameSeconds.
type Clock struct {
	GameSeconds      float64
	RealToGameRatio  float64 // game seconds advanced per real second
	onPeriodChange   func(season int)
}

// New creates a Clock with the given real-to-game ratio (e.g. 60 means one
// real second advances the game clock by one game minute).
func New(ratio float64) *Clock {
	return &Clock{RealToGameRatio: ratio}
}

// OnPeriodChange registers the callback invoked when Advance crosses a
// period boundary (spec §4.1's period_changed(season) signal), consumed by
// the weather model.
func (c *Clock) OnPeriodChange(fn func(season int)) {
	c.onPeriodChange = fn
}

// Advance moves the clock forward by realDT real seconds.
func (c *Clock) Advance(realDT float64) {
	before := c.Period()
	c.GameSeconds += realDT * c.RealToGameRatio
	after := c.Period()
	if after != before && c.onPeriodChange != nil {
		c.onPeriodChange(c.Season())
	}
}

// Minute returns the current minute within the hour [0, 60).
func (c *Clock) Minute() int {
	total := int(c.GameSeconds) / SecondsPerMinute
	return total % MinutesPerHour
}

// Hour returns the current hour within the day [0, 24).
func (c *Clock) Hour() int {
	totalMinutes := int(c.GameSeconds) / SecondsPerMinute
	totalHours := totalMinutes / MinutesPerHour
	return totalHours % HoursPerDay
}

// Day returns the current day within the month [1, DaysPerMonth].
func (c *Clock) Day() int {
	totalHours := int(c.GameSeconds) / SecondsPerMinute / MinutesPerHour
	totalDays := totalHours / HoursPerDay
	return (totalDays % DaysPerMonth) + 1
}

// Month returns the current month within the year [1, MonthsPerYear].
func (c *Clock) Month() int {
	totalDays := int(c.GameSeconds) / SecondsPerMinute / MinutesPerHour / HoursPerDay
	totalMonths := totalDays / DaysPerMonth
	return (totalMonths % MonthsPerYear) + 1
}

// Year returns the current year, starting at year 1.
func (c *Clock) Year() int {
	totalDays := int(c.GameSeconds) / SecondsPerMinute / MinutesPerHour / HoursPerDay
	totalMonths := totalDays / DaysPerMonth
	return (totalMonths / MonthsPerYear) + 1
}

// Season derives a 4-way season index from the current month, used to key
// the weather model's per-season distribution.
func (c *Clock) Season() int {
	return ((c.Month() - 1) / 3) % 4
}

// Period derives the named time-of-day bucket from the current hour.
func (c *Clock) Period() Period {
	switch h := c.Hour(); {
	case h >= 5 && h < 8:
		return PeriodDawn
	case h >= 8 && h < 12:
		return PeriodMorning
	case h >= 12 && h < 17:
		return PeriodAfternoon
	case h >= 17 && h < 20:
		return PeriodDusk
	default:
		return PeriodNight
	}
}

// Weather condition categories (spec §4.1).
type WeatherKind string

const (
	WeatherClear  WeatherKind = "clear"
	WeatherCloudy WeatherKind = "cloudy"
	WeatherRain   WeatherKind = "rain"
	WeatherStorm  WeatherKind = "storm"
	WeatherSnow   WeatherKind = "snow"
)

// Intensity categories (spec §4.1).
type Intensity string

const (
	IntensityMild     Intensity = "mild"
	IntensityModerate Intensity = "moderate"
	IntensityStrong   Intensity = "strong"
	IntensitySevere   Intensity = "severe"
)

var intensityLadder = []Intensity{IntensityMild, IntensityModerate, IntensityStrong, IntensitySevere}
var intensityWeights = []float64{0.45, 0.30, 0.18, 0.07}

// seasonDistribution is the categorical weather distribution per season
// index (spring, summer, autumn, winter); a content pack can retune this
// through the TOML document in a future revision.
var seasonDistribution = [4][]WeatherKind{
	{WeatherClear, WeatherCloudy, WeatherRain},
	{WeatherClear, WeatherClear, WeatherCloudy, WeatherStorm},
	{WeatherCloudy, WeatherRain, WeatherStorm},
	{WeatherCloudy, WeatherSnow, WeatherSnow, WeatherClear},
}

// Weather holds the current weather state.
type Weather struct {
	Current   WeatherKind
	Intensity Intensity
}

// NewWeather returns a default clear, mild weather state.
func NewWeather() *Weather {
	return &Weather{Current: WeatherClear, Intensity: IntensityMild}
}

// OnPeriodChange implements the two-roll weather model from spec §4.1,
// supplemented by original_source/core/weather_manager.py: first, with
// probability TransitionChangeChance, resample weather category from the
// season's distribution (and a fresh intensity with it). Otherwise, with
// probability PersistenceChance, keep the weather and resample only the
// intensity. Otherwise nothing changes.
func (w *Weather) OnPeriodChange(season int, tuning config.WeatherTuning, src *rng.Source) {
	if src.Chance(tuning.TransitionChangeChance) {
		options := seasonDistribution[season%len(seasonDistribution)]
		picked, ok := rng.Pick(src, options)
		if ok {
			w.Current = picked
		}
		w.Intensity = rollIntensity(src)
		return
	}
	if src.Chance(tuning.PersistenceChance) {
		w.Intensity = rollIntensity(src)
	}
}

func rollIntensity(src *rng.Source) Intensity {
	return intensityLadder[rng.WeightedPick(src, intensityWeights)]
}
