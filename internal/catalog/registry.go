package catalog

// Field descriptions double as user-facing prompts when parameters are
// missing, so they carry format examples.

const (
	deviceDesc   = "The URI of the device to query."
	floorDesc    = "The URI of the floor to query (e.g., ic:VL_floor_7)."
	minTimeDesc  = "Start time in ISO format (YYYY-MM-DDTHH:MM:SS)."
	maxTimeDesc  = "End time in ISO format (YYYY-MM-DDTHH:MM:SS)."
	propertyDesc = "The URI of the measurement type (e.g., saref:Temperature, ic:BatteryLevel, ic:CO2Level, saref:Humidity)."
)

// Default returns the fixed template catalog for the building sensor graph.
func Default() *Catalog {
	return New(
		&Descriptor{
			Name:        "avg_measurement_by_device",
			Description: "Calculates the average of a specific numeric measurement for a single device over a given time period.",
			Fields: []Field{
				{Name: "device", Type: FieldDeviceID, Description: deviceDesc},
				{Name: "property_type", Type: FieldPropertyType, Description: propertyDesc},
				{Name: "min_time", Type: FieldTimestamp, Description: minTimeDesc},
				{Name: "max_time", Type: FieldTimestamp, Description: maxTimeDesc},
			},
		},
		&Descriptor{
			Name:        "avg_measurement_by_floor",
			Description: "Calculates the average of a specific numeric measurement for all devices on a given floor over a given time period.",
			Fields: []Field{
				{Name: "floor", Type: FieldFloorID, Description: floorDesc},
				{Name: "property_type", Type: FieldPropertyType, Description: propertyDesc},
				{Name: "min_time", Type: FieldTimestamp, Description: minTimeDesc},
				{Name: "max_time", Type: FieldTimestamp, Description: maxTimeDesc},
			},
		},
		&Descriptor{
			Name:        "count_type_on_floor",
			Description: "Counts the number of devices of a specific model/type that are located on a specific floor.",
			Fields: []Field{
				{Name: "floor", Type: FieldFloorID, Description: floorDesc},
				{Name: "device_type", Type: FieldDeviceType, Description: "The string representing the device model/type (e.g., 'Airwits')."},
			},
		},
		&Descriptor{
			Name:        "count_devices_on_floor",
			Description: "Counts the total number of unique devices located on a specific floor.",
			Fields: []Field{
				{Name: "floor", Type: FieldFloorID, Description: floorDesc},
			},
		},
		&Descriptor{
			Name:        "count_rooms_on_floor",
			Description: "Counts the total number of unique rooms located on a specific floor.",
			Fields: []Field{
				{Name: "floor", Type: FieldFloorID, Description: floorDesc},
			},
		},
		&Descriptor{
			Name:        "latest_measurement_from_device",
			Description: "Fetches the single most recent value of a specific numeric measurement from a single device.",
			Fields: []Field{
				{Name: "device", Type: FieldDeviceID, Description: deviceDesc},
				{Name: "property_type", Type: FieldPropertyType, Description: propertyDesc},
			},
		},
		&Descriptor{
			Name:        "max_measurement_in_building",
			Description: "Finds the highest value ever recorded for a specific numeric measurement across all devices.",
			Fields: []Field{
				{Name: "property_type", Type: FieldPropertyType, Description: propertyDesc},
			},
		},
		&Descriptor{
			Name:        "min_measurement_in_building",
			Description: "Finds the lowest value ever recorded for a specific numeric measurement across all devices.",
			Fields: []Field{
				{Name: "property_type", Type: FieldPropertyType, Description: propertyDesc},
			},
		},
		&Descriptor{
			Name:        "count_devices_by_status",
			Description: "Counts the number of unique devices that reported a specific status within a given time period.",
			Fields: []Field{
				{Name: "status", Type: FieldDeviceStatus, Description: "The device status to count ('active' or 'inactive')."},
				{Name: "min_time", Type: FieldTimestamp, Description: minTimeDesc},
				{Name: "max_time", Type: FieldTimestamp, Description: maxTimeDesc},
			},
		},
		&Descriptor{
			Name:        "was_window_opened_on_floor",
			Description: "Checks if a window (contact sensor) was opened on a floor during a time period.",
			Fields: []Field{
				{Name: "floor", Type: FieldFloorID, Description: floorDesc},
				{Name: "min_time", Type: FieldTimestamp, Description: minTimeDesc},
				{Name: "max_time", Type: FieldTimestamp, Description: maxTimeDesc},
			},
		},
		&Descriptor{
			Name:        "count_window_openings_on_floor",
			Description: "Counts how many times a window (contact sensor) was opened on a floor during a time period.",
			Fields: []Field{
				{Name: "floor", Type: FieldFloorID, Description: floorDesc},
				{Name: "min_time", Type: FieldTimestamp, Description: minTimeDesc},
				{Name: "max_time", Type: FieldTimestamp, Description: maxTimeDesc},
			},
		},
		&Descriptor{
			Name:        "list_device_properties",
			Description: "Lists all measurement properties a given device is capable of, returned as a single comma-separated string.",
			Fields: []Field{
				{Name: "device", Type: FieldDeviceID, Description: deviceDesc},
			},
		},
		&Descriptor{
			Name:        "list_devices_and_types_on_floor",
			Description: "Lists every device located on a specific floor together with its model/type.",
			Fields: []Field{
				{Name: "floor", Type: FieldFloorID, Description: floorDesc},
			},
		},
	)
}
