package deploying

import (
	"math"
	"strings"
)

// Compare implements the deterministic deployment ordering that mitigates
// conflicts during execution: action sets ascend by their bit value, so a
// pure uninstall precedes every other non-empty set and frees its location,
// and the sets containing install come last; stopped bundles precede started
// ones with unspecified autostart last; higher start levels precede lower
// ones with the "no change" zero last; ties break on the location.
func Compare(a *Deployment, b *Deployment) int {
	if result := int(a.Actions) - int(b.Actions); result != 0 {
		return result
	}

	if result := compareAutostart(a.Autostart, b.Autostart); result != 0 {
		return result
	}

	if result := compareStartLevel(a.StartLevel, b.StartLevel); result != 0 {
		return result
	}

	return strings.Compare(a.Location, b.Location)
}

func compareAutostart(a Autostart, b Autostart) int {
	if a == AutostartUnspecified {
		if b == AutostartUnspecified {
			return 0
		}

		return 1
	}

	if b == AutostartUnspecified {
		return -1
	}

	return int(a) - int(b)
}

func compareStartLevel(a int, b int) int {
	x := startLevelRank(a)
	y := startLevelRank(b)

	switch {
	case x > y:
		return -1
	case x < y:
		return 1
	default:
		return 0
	}
}

// startLevelRank makes zero the least value of all, while keeping the other
// levels in their natural order for the descending comparison above.
func startLevelRank(level int) int64 {
	if level == 0 {
		return math.MinInt64
	}

	return int64(level)
}
