package state

import (
	"encoding/json"
	"time"
)

// mqttConfigWire mirrors the subset of MQTT.GetConfig's result this cache
// tracks as parsed fields.
type mqttConfigWire struct {
	Enable        bool   `json:"enable"`
	Server        string `json:"server"`
	ClientID      string `json:"client_id"`
	User          string `json:"user"`
	TopicPrefix   string `json:"topic_prefix"`
	SSLCA         string `json:"ssl_ca"`
	EnableControl bool   `json:"enable_control"`
	EnableRPC     bool   `json:"enable_rpc"`
	RPCNotify     bool   `json:"rpc_ntf"`
	StatusNotify  bool   `json:"status_ntf"`
	UseClientCert bool   `json:"use_client_cert"`
}

func sslCAFromWire(v string) SSLCAMode {
	switch v {
	case "user_ca.pem":
		return SSLCAUser
	case "ca.pem":
		return SSLCADefault
	default:
		return SSLCANone
	}
}

// UpdateMQTTConfig applies an MQTT.GetConfig result, mirroring
// UpdateSysConfig's replace-wholesale, set-valid, bump-timestamp shape.
func (c *Cache) UpdateMQTTConfig(resultJSON []byte) error {
	var wire mqttConfigWire
	if err := json.Unmarshal(resultJSON, &wire); err != nil {
		return &ErrInvalidJSON{Cause: err}
	}

	c.withLock(func() {
		c.MQTT.Enable = wire.Enable
		c.MQTT.Server = wire.Server
		c.MQTT.ClientID = wire.ClientID
		c.MQTT.User = wire.User
		c.MQTT.TopicPrefix = wire.TopicPrefix
		c.MQTT.SSLCA = sslCAFromWire(wire.SSLCA)
		c.MQTT.EnableControl = wire.EnableControl
		c.MQTT.EnableRPC = wire.EnableRPC
		c.MQTT.RPCNotify = wire.RPCNotify
		c.MQTT.StatusNotify = wire.StatusNotify
		c.MQTT.UseClientCert = wire.UseClientCert
		c.MQTT.RawJSON = string(resultJSON)
		c.MQTT.Valid = true
		c.MQTT.LastUpdated = time.Now()
	})
	return nil
}

// MQTTConfigJSON returns the raw cached JSON for file reads.
func (c *Cache) MQTTConfigJSON() (string, bool) {
	var out string
	var ok bool
	c.withLock(func() {
		out, ok = c.MQTT.RawJSON, c.MQTT.Valid
	})
	return out, ok
}

// MQTTConfigMTime returns the cached MQTT config's last-updated time.
func (c *Cache) MQTTConfigMTime() time.Time {
	var out time.Time
	c.withLock(func() {
		out = c.MQTT.LastUpdated
	})
	return out
}
