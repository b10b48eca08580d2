// Package tuya exposes Enum data points of Tuya devices as select entities.
//
// A SelectRegistry maps each Tuya category code to the data points its
// devices may expose as selects. Some categories are aliases and share the
// canonical category's slice. When the device manager announces devices,
// the Discoverer keeps only the descriptions whose data point is in the
// device's live status and hands one SelectEntity per match to the entity
// platform in a single batch.
//
// A SelectEntity resolves its options once from the device's Enum
// declaration, preferring the function list over status_range. Its current
// option is the live status value when that value is one of the options.
// Selecting an option publishes one command and changes nothing locally.
//
// SelectPlatform ties it together: an initial discovery pass at Start,
// subscriptions to discovery, status and removal events, and a
// HealthReporter on graylogic/health/tuya. Stop cancels the subscriptions.
package tuya
