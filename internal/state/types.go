// Package state implements the device-state cache (C4): a thread-safe
// mirror of the device's configuration and live status, with per-field
// modification times fine-grained enough for a filesystem layer to
// surface exactly which value changed and when.
//
// Every mutator here is pure bookkeeping: it never performs network I/O,
// and it never holds the cache's mutex across anything that could block.
// JSON marshalling of outgoing requests belongs to the intention layer
// (package session), not here.
package state

import "time"

const (
	// MaxSwitches bounds the switch slot array.
	MaxSwitches = 16
	// MaxInputs bounds the input slot array.
	MaxInputs = 16
	// MaxScripts bounds the script slot array.
	MaxScripts = 10
	// MaxSchedules bounds the schedule slot array.
	MaxSchedules = 20
	// MaxScheduleCalls bounds the calls array within one schedule.
	MaxScheduleCalls = 5
	// MaxDeviceNameLen bounds the system config's device name field.
	MaxDeviceNameLen = 64
	// MaxScriptCodeLen bounds a single script's code size.
	MaxScriptCodeLen = 20480
	// ScriptChunkSize is the per-frame chunk size used by the chunked
	// script transfer protocols (get and put).
	ScriptChunkSize = 2048
	// DiscoveryWindow is the number of switch/input instances proactively
	// queried on connect; higher ids only ever surface via notifications
	// (see DESIGN.md's open-question decisions).
	DiscoveryWindow = 4
)

// SSLCAMode is the MQTT SSL-CA verification scheme.
type SSLCAMode int

const (
	SSLCANone SSLCAMode = iota
	SSLCAUser
	SSLCADefault
)

func (m SSLCAMode) String() string {
	switch m {
	case SSLCAUser:
		return "user_ca.pem"
	case SSLCADefault:
		return "ca.pem"
	default:
		return ""
	}
}

// SwitchInMode is how a switch reacts to its paired input.
type SwitchInMode int

const (
	SwitchInMomentary SwitchInMode = iota
	SwitchInFollow
	SwitchInFlip
	SwitchInDetached
	SwitchInUnknown
)

func (m SwitchInMode) String() string {
	switch m {
	case SwitchInMomentary:
		return "momentary"
	case SwitchInFollow:
		return "follow"
	case SwitchInFlip:
		return "flip"
	case SwitchInDetached:
		return "detached"
	default:
		return "unknown"
	}
}

// SwitchInitialState is the output state a switch assumes on boot.
type SwitchInitialState int

const (
	SwitchInitialOn SwitchInitialState = iota
	SwitchInitialOff
	SwitchInitialRestoreLast
	SwitchInitialMatchInput
	SwitchInitialUnknown
)

func (s SwitchInitialState) String() string {
	switch s {
	case SwitchInitialOn:
		return "on"
	case SwitchInitialOff:
		return "off"
	case SwitchInitialRestoreLast:
		return "restore_last"
	case SwitchInitialMatchInput:
		return "match_input"
	default:
		return "unknown"
	}
}

// InputType is the physical wiring kind of an input.
type InputType int

const (
	InputTypeSwitch InputType = iota
	InputTypeButton
	InputTypeAnalog
	InputTypeUnknown
)

func (t InputType) String() string {
	switch t {
	case InputTypeSwitch:
		return "switch"
	case InputTypeButton:
		return "button"
	case InputTypeAnalog:
		return "analog"
	default:
		return "unknown"
	}
}

// SysConfig mirrors Sys.GetConfig.
type SysConfig struct {
	DeviceName  string
	Location    string
	Timezone    string
	EcoMode     bool
	SNTPEnabled bool

	RawJSON     string
	Valid       bool
	LastUpdated time.Time
}

// MQTTConfig mirrors MQTT.GetConfig.
type MQTTConfig struct {
	Enable          bool
	Server          string
	ClientID        string
	User            string
	TopicPrefix     string
	SSLCA           SSLCAMode
	EnableControl   bool
	EnableRPC       bool
	RPCNotify       bool
	StatusNotify    bool
	UseClientCert   bool

	RawJSON     string
	Valid       bool
	LastUpdated time.Time
}

// SwitchConfig is one switch slot's configuration half.
type SwitchConfig struct {
	Name              string
	InMode            SwitchInMode
	InputLocked       bool
	InitialState      SwitchInitialState
	AutoOn            bool
	AutoOnDelay       float64
	AutoOff           bool
	AutoOffDelay      float64
	PowerLimit        int
	VoltageLimit      int
	AutorecoverVolt   bool
	CurrentLimit      float64
}

// SwitchStatus is one switch slot's live telemetry, with a modification
// time per field so external watchers can tell exactly what changed.
type SwitchStatus struct {
	ID              int
	Source          string
	Output          bool
	APower          float64
	Voltage         float64
	Current         float64
	Freq            float64
	EnergyTotal     float64
	RetEnergyTotal  float64
	TemperatureC    float64
	TemperatureF    float64
	Overtemperature bool

	MTimeID              time.Time
	MTimeSource          time.Time
	MTimeOutput          time.Time
	MTimeAPower          time.Time
	MTimeVoltage         time.Time
	MTimeCurrent         time.Time
	MTimeFreq            time.Time
	MTimeEnergy          time.Time
	MTimeRetEnergy       time.Time
	MTimeTemperature     time.Time
}

// Switch is one of the (up to MaxSwitches) switch slots.
type Switch struct {
	ID     int
	Config SwitchConfig
	Status SwitchStatus

	RawJSON     string
	Valid       bool
	LastUpdated time.Time
}

// InputConfig is one input slot's configuration half.
type InputConfig struct {
	Name         string
	Type         InputType
	Enable       bool
	Invert       bool
	FactoryReset bool
}

// InputStatus is one input slot's live telemetry.
type InputStatus struct {
	ID    int
	State bool

	MTimeID    time.Time
	MTimeState time.Time
}

// Input is one of the (up to MaxInputs) input slots.
type Input struct {
	ID     int
	Config InputConfig
	Status InputStatus

	RawJSON     string
	Valid       bool
	LastUpdated time.Time
}

// ScriptStatus is a script's runtime status, reported by notifications.
type ScriptStatus struct {
	Running bool
	MemUsed int
	MemPeak int
	Errors  string

	LastStatusUpdate time.Time
}

// Script is one of the (up to MaxScripts) script slots.
type Script struct {
	ID     int
	Name   string
	Enable bool
	Code   string

	CreateTime time.Time
	ModifyTime time.Time

	Status ScriptStatus

	Valid bool

	// LastUploadReqID is the request id of the final chunk of the most
	// recent PutCode upload; the response handler recognises upload
	// completion solely by comparing an incoming response id against this
	// value.
	LastUploadReqID int

	// CodeFetched marks whether a full Script.GetCode retrieval has
	// completed for this slot since the last Script.List or completed
	// upload reset it.
	CodeFetched bool
}

// retrievalCursor is the single in-flight script-code retrieval in
// progress, shared across all script slots.
type retrievalCursor struct {
	retrievingID  int
	currentOffset int
	chunkBuffer   []byte
}

// ScheduleCall is one RPC invocation a schedule fires.
type ScheduleCall struct {
	Method     string
	ParamsJSON string
}

// Schedule is one of the (up to MaxSchedules) schedule slots.
type Schedule struct {
	ID       int
	Enable   bool
	Timespec string
	Calls    []ScheduleCall
	Valid    bool
}
