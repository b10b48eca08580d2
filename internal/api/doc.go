// Package api implements the HTTP REST API and WebSocket server for the
// Tuya select bridge.
//
// This package provides:
//   - REST endpoints to list selects, read one, request an option and
//     enable or disable it
//   - The category table, with aliases, for commissioning tools
//   - A WebSocket feed of select state with option writes
//   - Middleware: request ID, logging, recovery, CORS, body limit
//
// # Architecture
//
// The server sits on top of the platform registry. Option writes go through
// the registry, which checks them before the device manager publishes the
// command over MQTT. The device's confirmation comes back as a state
// update, which the registry hands to BroadcastState.
//
// Routes live under /api/v1:
//
//	GET   /health
//	GET   /categories
//	GET   /selects
//	GET   /selects/unregistered
//	GET   /selects/{id}
//	PATCH /selects/{id}          {"enabled": false}
//	POST  /selects/{id}/option   {"option": "last"}
//	GET   /ws
//
// PATCH also accepts the id of a stored select whose device is offline;
// the flag is stored and applied when the device returns.
//
// # WebSocket feed
//
// Browser upgrades must come from cors.allowed_origins, or from the API's
// own host when that list is empty.
//
// A client receives nothing until it subscribes. Subscribing replaces the
// filter and answers with a snapshot of matching selects; state changes
// follow as select.state_changed events:
//
//	-> {"type":"subscribe","id":"1","payload":{"device_ids":["bf01"]}}
//	<- {"type":"response","id":"1",...}
//	<- {"type":"snapshot","id":"1","payload":{"selects":[...],"count":2}}
//	<- {"type":"event","event_type":"select.state_changed","payload":{...}}
//
// Options can be written over the same connection and go through the same
// checks as POST /selects/{id}/option:
//
//	-> {"type":"select_option","id":"2","payload":{"unique_id":"tuya.bf01relay_status","option":"last"}}
package api
