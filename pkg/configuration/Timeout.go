package configuration

import (
	"regexp"
	"strconv"
	"time"

	"github.com/simplelauncher/sml/pkg/faults"
)

var timeValuePattern = regexp.MustCompile(`^(\d+)\s*(ms|s|m)$`)

var isoDurationPattern = regexp.MustCompile(`^(?i)PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?$`)

// ParseShutdownTimeout accepts an ISO-8601 time duration or the compact
// <n>{m|s|ms} form. Empty, "none" and "null" ask for waiting indefinitely,
// expressed as a zero duration.
func ParseShutdownTimeout(value string) (time.Duration, error) {
	switch value {
	case "", "none", "null":
		return 0, nil
	}

	result, err := parseTimeout(value)
	if err != nil {
		return 0, err
	}

	if result <= 0 {
		return 0, faults.Newf(faults.Config, "negative or zero shutdown timeout not allowed: %s", value)
	}

	return result, nil
}

func parseTimeout(value string) (time.Duration, error) {
	if match := isoDurationPattern.FindStringSubmatch(value); match != nil {
		return isoDuration(match)
	}

	match := timeValuePattern.FindStringSubmatch(value)
	if match == nil {
		return 0, faults.Newf(faults.Config, "could not parse shutdown timeout: %s", value)
	}

	amount, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, faults.Wrap(faults.Config, err, "could not parse shutdown timeout")
	}

	switch match[2] {
	case "m":
		return time.Duration(amount) * time.Minute, nil
	case "s":
		return time.Duration(amount) * time.Second, nil
	default:
		return time.Duration(amount) * time.Millisecond, nil
	}
}

func isoDuration(match []string) (time.Duration, error) {
	var result time.Duration

	if match[1] != "" {
		hours, _ := strconv.Atoi(match[1])
		result += time.Duration(hours) * time.Hour
	}

	if match[2] != "" {
		minutes, _ := strconv.Atoi(match[2])
		result += time.Duration(minutes) * time.Minute
	}

	if match[3] != "" {
		seconds, err := strconv.ParseFloat(match[3], 64)
		if err != nil {
			return 0, faults.Wrap(faults.Config, err, "could not parse shutdown timeout")
		}

		result += time.Duration(seconds * float64(time.Second))
	}

	if match[1] == "" && match[2] == "" && match[3] == "" {
		return 0, faults.New(faults.Config, "could not parse shutdown timeout")
	}

	return result, nil
}
