// Package tuya keeps the map of Tuya devices reported by the cloud
// connector and carries data point commands back to it.
//
// The connector is an external process that talks to the Tuya cloud and
// relays over MQTT:
//
//	graylogic/discovery/tuya            device announcements and removals
//	graylogic/state/tuya/{device_id}    status and online updates
//	graylogic/ack/tuya/{device_id}      command acknowledgements
//	graylogic/command/tuya/{device_id}  commands published by Manager
//
// Devices expose two declaration lists: function (writable data points)
// and status_range (readable ones). Each entry carries a type and a JSON
// values string; for Enum points that is {"range":[...]}.
//
// Listeners registered with OnDiscovery, OnStatusUpdate and OnRemoval are
// called one at a time from a single goroutine.
package tuya
