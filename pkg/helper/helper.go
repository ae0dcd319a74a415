package helper

import (
	"fmt"
	"hash/fnv"
	"math"
)

const kmhPerMps = 3.6

// method to convert from seconds to minutes:seconds.milliseconds
func SecondsToMinutes(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "00:00.000"
	}
	// whole milliseconds first so 62.34 does not print as 01:02.339
	total := int64(math.Round(seconds * 1000))
	minutes := total / 60000
	secs := (total / 1000) % 60
	milliseconds := total % 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, secs, milliseconds)
}

// OptionalSecondsToMinutes formats a possibly missing time, "--:--.---" when absent.
func OptionalSecondsToMinutes(seconds *float64) string {
	if seconds == nil {
		return "--:--.---"
	}
	return SecondsToMinutes(*seconds)
}

func ToKmh(mps float64) float64 {
	return mps * kmhPerMps
}

func FromKmh(kmh float64) float64 {
	return kmh / kmhPerMps
}

func ClampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ClampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeAngle wraps an angle into [-pi, pi].
func NormalizeAngle(angle float64) float64 {
	return math.Atan2(math.Sin(angle), math.Cos(angle))
}

// DampTowardZero moves value toward zero by amount without crossing it.
func DampTowardZero(value, amount float64) float64 {
	switch {
	case value > 0:
		return math.Max(0, value-amount)
	case value < 0:
		return math.Min(0, value+amount)
	}
	return 0
}

func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// ToID hashes name into a short stable identifier.
func ToID(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprint(h.Sum32())
}
