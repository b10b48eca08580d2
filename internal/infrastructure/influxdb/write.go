package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementSelectOption = "select_option"
	MeasurementSelectCount  = "select_entities"
)

// WriteSelectOption records the option a select entity reported.
// Tags are low-cardinality identifiers; the option is the field value.
func (c *Client) WriteSelectOption(uniqueID, deviceID, code, option string) {
	c.writePoint(MeasurementSelectOption,
		map[string]string{
			"unique_id": uniqueID,
			"device_id": deviceID,
			"dp_code":   code,
		},
		map[string]any{"option": option},
		time.Now(),
	)
}

// WriteSelectCount records how many select entities are registered and
// how many of those are enabled.
func (c *Client) WriteSelectCount(bridgeID string, total, enabled int) {
	c.writePoint(MeasurementSelectCount,
		map[string]string{"bridge_id": bridgeID},
		map[string]any{"total": total, "enabled": enabled},
		time.Now(),
	)
}

func (c *Client) writePoint(measurement string, tags map[string]string, fields map[string]any, ts time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, ts))
}
