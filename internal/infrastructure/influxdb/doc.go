// Package influxdb records select entity history in InfluxDB.
//
// Every option change the platform observes is written to the
// select_option measurement, tagged by unique_id, device_id and dp_code.
// The health reporter adds a select_entities point per interval.
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // history disabled
//	}
//	client.WriteSelectOption("tuya.bf01mode", "bf01", "mode", "eco")
//
// Writes are batched by the underlying client (batch_size, flush_interval).
package influxdb
