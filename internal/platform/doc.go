// Package platform hosts entities built by protocol integrations.
//
// A Registry receives batches of Select entities, persists their
// registration in SQLite, and keeps the operator's enabled choice across
// restarts. For each enabled select it writes state to:
//
//   - MQTT, retained on graylogic/core/entity/{unique_id}/state
//   - registered StateListeners (the WebSocket hub)
//   - InfluxDB, when the current option changed
//
// Writes go through Registry.SelectOption, which rejects unknown,
// disabled and unavailable entities and options outside the entity's list
// before the entity sees them.
package platform
