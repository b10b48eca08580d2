// Package mqtt provides the broker connection shared by the Tuya manager,
// the select platform, and the health reporter.
//
// The bridge process sits between the Tuya protocol bridge and the rest of
// Gray Logic:
//
//	Tuya bridge ↔ MQTT broker ↔ graylogic-tuya (select platform)
//
// Inbound: device maps on graylogic/discovery/tuya, status on
// graylogic/state/tuya/{device_id}, acknowledgements on graylogic/ack/tuya/+.
// Outbound: commands on graylogic/command/tuya/{device_id}, retained entity
// state on graylogic/core/entity/{unique_id}/state and bridge health on
// graylogic/health/tuya.
//
// Subscriptions survive reconnects. Handlers run on paho goroutines and
// are wrapped with panic recovery.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	client.SetLogger(logger)
package mqtt
