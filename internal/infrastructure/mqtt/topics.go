package mqtt

import "fmt"

// Topic prefixes.
//
// Bridge traffic uses the flat scheme graylogic/{category}/{protocol}/{address}.
// Entity state owned by this process lives under graylogic/core.
const (
	TopicPrefixBridge = "graylogic"
	TopicPrefixCore   = "graylogic/core"
	TopicPrefixSystem = "graylogic/system"
)

// Topics provides builders for Gray Logic MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.BridgeCommand("tuya", "bf0123abcd")
//	// graylogic/command/tuya/bf0123abcd
type Topics struct{}

// BridgeState returns the topic a bridge publishes device status on.
func (Topics) BridgeState(protocol, address string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefixBridge, protocol, address)
}

// BridgeCommand returns the topic for commands to a bridge device.
func (Topics) BridgeCommand(protocol, address string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefixBridge, protocol, address)
}

// BridgeAck returns the topic for command acknowledgements.
func (Topics) BridgeAck(protocol, address string) string {
	return fmt.Sprintf("%s/ack/%s/%s", TopicPrefixBridge, protocol, address)
}

// BridgeHealth returns the retained health topic for a bridge.
func (Topics) BridgeHealth(protocol string) string {
	return fmt.Sprintf("%s/health/%s", TopicPrefixBridge, protocol)
}

// BridgeDiscovery returns the topic a bridge announces its device map on.
func (Topics) BridgeDiscovery(protocol string) string {
	return fmt.Sprintf("%s/discovery/%s", TopicPrefixBridge, protocol)
}

// BridgeStates matches every device state message from one protocol.
//
// Pattern: graylogic/state/{protocol}/+
func (Topics) BridgeStates(protocol string) string {
	return fmt.Sprintf("%s/state/%s/+", TopicPrefixBridge, protocol)
}

// BridgeAcks matches every acknowledgement from one protocol.
//
// Pattern: graylogic/ack/{protocol}/+
func (Topics) BridgeAcks(protocol string) string {
	return fmt.Sprintf("%s/ack/%s/+", TopicPrefixBridge, protocol)
}

// CoreEntityState returns the retained state topic for a platform entity.
//
// Example: graylogic/core/entity/tuya.bf0123abcdmode/state
func (Topics) CoreEntityState(uniqueID string) string {
	return fmt.Sprintf("%s/entity/%s/state", TopicPrefixCore, uniqueID)
}

// CoreEvent returns the topic for process events.
//
// Example: graylogic/core/event/select_added
func (Topics) CoreEvent(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixCore, eventType)
}

// ClientStatus returns the retained online/offline topic for a client.
// The LWT is registered on the same topic.
func (Topics) ClientStatus(clientID string) string {
	return fmt.Sprintf("%s/status/%s", TopicPrefixSystem, clientID)
}

// LastSegment returns the final level of a topic, which for state and
// ack topics is the device address.
func LastSegment(topic string) string {
	for i := len(topic) - 1; i >= 0; i-- {
		if topic[i] == '/' {
			return topic[i+1:]
		}
	}
	return topic
}
