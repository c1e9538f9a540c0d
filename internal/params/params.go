// Package params normalizes free-form parameter text into the canonical
// forms used by the building graph: device and floor IRIs under the ic:
// namespace, naive ISO timestamps, and the closed property/model/status
// vocabularies. Each validator is a pure function; downstream code never
// re-validates a value a validator accepted.
package params

import (
	"fmt"
	"regexp"
	"strings"
)

// Validator turns raw text into its canonical form or reports why it can't.
type Validator func(raw string) (string, error)

var (
	deviceIDPattern = regexp.MustCompile(`^ic:(R5_\d+|SmartSense_Multi_Sensor_\d+|Zigbee_Thermostat_\d+)$`)

	floorIDPattern    = regexp.MustCompile(`^ic:VL_floor_\d+$`)
	bareFloorPattern  = regexp.MustCompile(`^floor_\d+$`)
	bareNumberPattern = regexp.MustCompile(`^\d+$`)

	fullTimestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`)
	dateOnlyPattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// DeviceID validates a device identifier. Bare device names get the ic:
// namespace prefixed; the result must match one of the known device shapes
// (R5, SmartSense Multi Sensor, Zigbee Thermostat, each with a numeric
// suffix).
func DeviceID(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("device ID cannot be empty")
	}
	if !strings.HasPrefix(value, "ic:") {
		value = "ic:" + value
	}
	if !deviceIDPattern.MatchString(value) {
		return "", fmt.Errorf("device ID must match one of the patterns: 'R5_<number>', 'SmartSense_Multi_Sensor_<number>', or 'Zigbee_Thermostat_<number>'")
	}
	return value, nil
}

// FloorID validates a floor identifier. A bare number n becomes
// ic:VL_floor_n; a bare floor_n gets the namespace; anything else must
// already carry it.
func FloorID(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("floor ID cannot be empty")
	}
	switch {
	case bareNumberPattern.MatchString(value):
		value = "ic:VL_floor_" + value
	case bareFloorPattern.MatchString(value):
		value = "ic:VL_" + value
	case !strings.HasPrefix(value, "ic:"):
		value = "ic:" + value
	}
	if !floorIDPattern.MatchString(value) {
		return "", fmt.Errorf("floor ID must match the pattern 'VL_floor_<number>' (e.g., 'VL_floor_7')")
	}
	return value, nil
}

// Timestamp validates a naive timestamp. Date-only input is rewritten to
// midnight of that date. No timezone handling.
func Timestamp(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("timestamp cannot be empty")
	}
	if fullTimestampPattern.MatchString(value) {
		return value, nil
	}
	if dateOnlyPattern.MatchString(value) {
		return value + "T00:00:00", nil
	}
	return "", fmt.Errorf("timestamp must be in format YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS")
}

// properties is the closed set of measurement kinds, in declaration order.
// Each member has exactly one canonical namespace-prefixed spelling.
var properties = []string{
	"ic:BatteryLevel",
	"ic:CO2Level",
	"ic:Contact",
	"ic:DeviceStatus",
	"ic:RunningTime",
	"ic:thermostatHeatingSetpoint",
	"saref:Humidity",
	"saref:Motion",
	"saref:Occupancy",
	"saref:Power",
	"saref:Temperature",
}

// PropertyType validates a measurement type against the known property
// vocabulary. Matching is case- and whitespace-insensitive and accepts the
// bare name without its namespace prefix; the canonical spelling is returned.
func PropertyType(raw string) (string, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	for _, member := range properties {
		lowered := strings.ToLower(member)
		if lowered == normalized || lowered == "ic:"+normalized || lowered == "saref:"+normalized {
			return member, nil
		}
	}
	return "", fmt.Errorf("invalid property type %q. Must be one of: %s", raw, strings.Join(properties, ", "))
}

// deviceModels is the closed set of device models/types.
var deviceModels = []string{
	"Airwits",
	"SmartThings",
	"Sensor Hub",
}

// DeviceType validates a device model against the known model list,
// ignoring case and embedded spaces.
func DeviceType(raw string) (string, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	for _, member := range deviceModels {
		if strings.ToLower(strings.ReplaceAll(member, " ", "")) == normalized {
			return member, nil
		}
	}
	return "", fmt.Errorf("invalid device type %q. Must be one of: %s", raw, strings.Join(deviceModels, ", "))
}

// DeviceStatus validates a device status flag. "active" maps to "1",
// "inactive" to "0"; the literals pass through.
func DeviceStatus(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	switch {
	case value == "0" || value == "1":
		return value, nil
	case strings.EqualFold(value, "active"):
		return "1", nil
	case strings.EqualFold(value, "inactive"):
		return "0", nil
	}
	return "", fmt.Errorf("device status must be '1', '0', 'active', or 'inactive'")
}
