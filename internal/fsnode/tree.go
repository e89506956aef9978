package fsnode

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shusefs/shusefs/internal/session"
	"github.com/shusefs/shusefs/internal/state"
)

// BuildRoot wires a Session's cache (reads) and intention verbs (writes)
// into the tree described in the filesystem surface: top-level config
// and crontab files, a scripts directory, and a /proc tree of per-field
// switch/input status leaves. Every directory is dynamic, so an instance
// the cache doesn't yet consider valid simply doesn't appear yet.
func BuildRoot(sess *session.Session) Node {
	return NewDir("/", func() []string {
		names := []string{"sys_config.json", "mqtt_config.json", "crontab", "scripts", "proc"}
		for id := 0; id < state.MaxSwitches; id++ {
			if sw, err := sess.Cache.GetSwitch(id); err == nil && sw.Valid {
				names = append(names, fmt.Sprintf("switch_%d_config.json", id))
			}
		}
		for id := 0; id < state.MaxInputs; id++ {
			if in, err := sess.Cache.GetInput(id); err == nil && in.Valid {
				names = append(names, fmt.Sprintf("input_%d_config.json", id))
			}
		}
		return names
	}, func(name string) (Node, error) {
		switch name {
		case "sys_config.json":
			return sysConfigFile(sess), nil
		case "mqtt_config.json":
			return mqttConfigFile(sess), nil
		case "crontab":
			return crontabFile(sess), nil
		case "scripts":
			return scriptsDir(sess), nil
		case "proc":
			return procDir(sess), nil
		}
		if id, ok := parseIndexed(name, "switch_", "_config.json"); ok {
			if sw, err := sess.Cache.GetSwitch(id); err == nil && sw.Valid {
				return switchConfigFile(sess, id), nil
			}
		}
		if id, ok := parseIndexed(name, "input_", "_config.json"); ok {
			if in, err := sess.Cache.GetInput(id); err == nil && in.Valid {
				return inputConfigFile(sess, id), nil
			}
		}
		return nil, &ErrNotFound{Path: "/" + name}
	})
}

// parseIndexed extracts the integer id from a name of the form
// prefix+id+suffix, e.g. "switch_3_config.json" with prefix "switch_"
// and suffix "_config.json" yields (3, true).
func parseIndexed(name, prefix, suffix string) (int, bool) {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return 0, false
	}
	mid := name[len(prefix) : len(name)-len(suffix)]
	id, err := strconv.Atoi(mid)
	if err != nil {
		return 0, false
	}
	return id, true
}

// wrapWrite maps a *session.ErrInvalidParams (malformed user JSON) onto
// the filesystem's ErrInvalidArgument; any other error (e.g. a full
// pending queue, or a failed validator.v9 struct-tag check) propagates
// as-is for the caller to surface as a generic I/O error.
func wrapWrite(path string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*session.ErrInvalidParams); ok {
		return &ErrInvalidArgument{Path: path}
	}
	return err
}

func sysConfigFile(sess *session.Session) *File {
	const path = "/sys_config.json"
	return NewFile(path, 0664,
		func() ([]byte, error) {
			j, ok := sess.Cache.SysConfigJSON()
			if !ok {
				return []byte("{}\n"), nil
			}
			return []byte(j), nil
		},
		func(data []byte) error {
			_, err := sess.SetSysConfig(data)
			return wrapWrite(path, err)
		},
		func() time.Time {
			return sess.Cache.SysConfigMTime()
		},
	)
}

func mqttConfigFile(sess *session.Session) *File {
	const path = "/mqtt_config.json"
	return NewFile(path, 0664,
		func() ([]byte, error) {
			j, ok := sess.Cache.MQTTConfigJSON()
			if !ok {
				return []byte("{}\n"), nil
			}
			return []byte(j), nil
		},
		func(data []byte) error {
			_, err := sess.SetMQTTConfig(data)
			return wrapWrite(path, err)
		},
		func() time.Time {
			return sess.Cache.MQTTConfigMTime()
		},
	)
}

func switchConfigFile(sess *session.Session, id int) *File {
	path := fmt.Sprintf("/switch_%d_config.json", id)
	return NewFile(path, 0664,
		func() ([]byte, error) {
			sw, err := sess.Cache.GetSwitch(id)
			if err != nil {
				return nil, err
			}
			if !sw.Valid {
				return []byte("{}\n"), nil
			}
			return []byte(sw.RawJSON), nil
		},
		func(data []byte) error {
			_, err := sess.SetSwitchConfig(id, data)
			return wrapWrite(path, err)
		},
		func() time.Time {
			sw, _ := sess.Cache.GetSwitch(id)
			return sw.LastUpdated
		},
	)
}

func inputConfigFile(sess *session.Session, id int) *File {
	path := fmt.Sprintf("/input_%d_config.json", id)
	return NewFile(path, 0664,
		func() ([]byte, error) {
			in, err := sess.Cache.GetInput(id)
			if err != nil {
				return nil, err
			}
			if !in.Valid {
				return []byte("{}\n"), nil
			}
			return []byte(in.RawJSON), nil
		},
		func(data []byte) error {
			_, err := sess.SetInputConfig(id, data)
			return wrapWrite(path, err)
		},
		func() time.Time {
			in, _ := sess.Cache.GetInput(id)
			return in.LastUpdated
		},
	)
}

func crontabFile(sess *session.Session) *File {
	const path = "/crontab"
	return NewFile(path, 0644,
		func() ([]byte, error) {
			return []byte(sess.Cache.RenderCrontab()), nil
		},
		func(data []byte) error {
			sess.SyncCrontab(string(data))
			return nil
		},
		nil,
	)
}

func scriptsDir(sess *session.Session) *Dir {
	return NewDir("/scripts", func() []string {
		var names []string
		for id := 0; id < state.MaxScripts; id++ {
			if sc, err := sess.Cache.GetScript(id); err == nil && sc.Valid {
				names = append(names, fmt.Sprintf("script_%d.js", id))
			}
		}
		return names
	}, func(name string) (Node, error) {
		id, ok := parseIndexed(name, "script_", ".js")
		if !ok {
			return nil, &ErrNotFound{Path: "/scripts/" + name}
		}
		sc, err := sess.Cache.GetScript(id)
		if err != nil || !sc.Valid {
			return nil, &ErrNotFound{Path: "/scripts/" + name}
		}
		return scriptFile(sess, id), nil
	})
}

func scriptFile(sess *session.Session, id int) *File {
	path := fmt.Sprintf("/scripts/script_%d.js", id)
	return NewFile(path, 0664,
		func() ([]byte, error) {
			code, err := sess.Cache.GetScriptCodeStr(id)
			if err != nil {
				return nil, err
			}
			return []byte(code), nil
		},
		func(data []byte) error {
			if len(data) > state.MaxScriptCodeLen {
				return &ErrInvalidArgument{Path: path}
			}
			_, err := sess.UploadScript(id, data)
			return wrapWrite(path, err)
		},
		func() time.Time {
			sc, _ := sess.Cache.GetScript(id)
			return sc.ModifyTime
		},
	)
}

func procDir(sess *session.Session) *Dir {
	return NewDir("/proc", func() []string {
		return []string{"switch", "input"}
	}, func(name string) (Node, error) {
		switch name {
		case "switch":
			return procSwitchDir(sess), nil
		case "input":
			return procInputDir(sess), nil
		}
		return nil, &ErrNotFound{Path: "/proc/" + name}
	})
}

func procSwitchDir(sess *session.Session) *Dir {
	return NewDir("/proc/switch", func() []string {
		var names []string
		for id := 0; id < state.MaxSwitches; id++ {
			if sw, err := sess.Cache.GetSwitch(id); err == nil && sw.Valid {
				names = append(names, strconv.Itoa(id))
			}
		}
		return names
	}, func(name string) (Node, error) {
		id, err := strconv.Atoi(name)
		if err != nil {
			return nil, &ErrNotFound{Path: "/proc/switch/" + name}
		}
		sw, err := sess.Cache.GetSwitch(id)
		if err != nil || !sw.Valid {
			return nil, &ErrNotFound{Path: "/proc/switch/" + name}
		}
		return procSwitchInstanceDir(sess, id), nil
	})
}

var switchProcFields = []string{
	"output", "id", "source", "apower", "voltage", "current", "freq",
	"energy", "ret_energy", "temperature",
}

func procSwitchInstanceDir(sess *session.Session, id int) *Dir {
	path := fmt.Sprintf("/proc/switch/%d", id)
	return NewDir(path, func() []string {
		return append([]string(nil), switchProcFields...)
	}, func(name string) (Node, error) {
		return procSwitchField(sess, id, name)
	})
}

func procSwitchField(sess *session.Session, id int, field string) (Node, error) {
	path := fmt.Sprintf("/proc/switch/%d/%s", id, field)
	status := func() (state.SwitchStatus, error) {
		sw, err := sess.Cache.GetSwitch(id)
		if err != nil {
			return state.SwitchStatus{}, err
		}
		return sw.Status, nil
	}

	switch field {
	case "output":
		return NewFile(path, 0664,
			func() ([]byte, error) {
				st, err := status()
				if err != nil {
					return nil, err
				}
				return fmtBool(st.Output), nil
			},
			func(data []byte) error {
				on, ok := parseBoolInput(data)
				if !ok {
					return &ErrInvalidArgument{Path: path}
				}
				_, err := sess.SetSwitchOutput(id, on)
				return wrapWrite(path, err)
			},
			func() time.Time {
				st, _ := status()
				return st.MTimeOutput
			},
		), nil
	case "id":
		return NewFile(path, 0444,
			func() ([]byte, error) {
				st, err := status()
				if err != nil {
					return nil, err
				}
				return fmtInt(st.ID), nil
			},
			nil,
			func() time.Time {
				st, _ := status()
				return st.MTimeID
			},
		), nil
	case "source":
		return NewFile(path, 0444,
			func() ([]byte, error) {
				st, err := status()
				if err != nil {
					return nil, err
				}
				return fmtString(st.Source), nil
			},
			nil,
			func() time.Time {
				st, _ := status()
				return st.MTimeSource
			},
		), nil
	case "apower":
		return NewFile(path, 0444,
			func() ([]byte, error) {
				st, err := status()
				if err != nil {
					return nil, err
				}
				return fmtFloat1(st.APower), nil
			},
			nil,
			func() time.Time {
				st, _ := status()
				return st.MTimeAPower
			},
		), nil
	case "voltage":
		return NewFile(path, 0444,
			func() ([]byte, error) {
				st, err := status()
				if err != nil {
					return nil, err
				}
				return fmtFloat1(st.Voltage), nil
			},
			nil,
			func() time.Time {
				st, _ := status()
				return st.MTimeVoltage
			},
		), nil
	case "current":
		return NewFile(path, 0444,
			func() ([]byte, error) {
				st, err := status()
				if err != nil {
					return nil, err
				}
				return fmtFloat3(st.Current), nil
			},
			nil,
			func() time.Time {
				st, _ := status()
				return st.MTimeCurrent
			},
		), nil
	case "freq":
		return NewFile(path, 0444,
			func() ([]byte, error) {
				st, err := status()
				if err != nil {
					return nil, err
				}
				return fmtFloat1(st.Freq), nil
			},
			nil,
			func() time.Time {
				st, _ := status()
				return st.MTimeFreq
			},
		), nil
	case "energy":
		return NewFile(path, 0444,
			func() ([]byte, error) {
				st, err := status()
				if err != nil {
					return nil, err
				}
				return fmtFloat3(st.EnergyTotal), nil
			},
			nil,
			func() time.Time {
				st, _ := status()
				return st.MTimeEnergy
			},
		), nil
	case "ret_energy":
		return NewFile(path, 0444,
			func() ([]byte, error) {
				st, err := status()
				if err != nil {
					return nil, err
				}
				return fmtFloat3(st.RetEnergyTotal), nil
			},
			nil,
			func() time.Time {
				st, _ := status()
				return st.MTimeRetEnergy
			},
		), nil
	case "temperature":
		return NewFile(path, 0444,
			func() ([]byte, error) {
				st, err := status()
				if err != nil {
					return nil, err
				}
				return fmtFloat1(st.TemperatureC), nil
			},
			nil,
			func() time.Time {
				st, _ := status()
				return st.MTimeTemperature
			},
		), nil
	}
	return nil, &ErrNotFound{Path: path}
}

var inputProcFields = []string{"id", "state"}

func procInputDir(sess *session.Session) *Dir {
	return NewDir("/proc/input", func() []string {
		var names []string
		for id := 0; id < state.MaxInputs; id++ {
			if in, err := sess.Cache.GetInput(id); err == nil && in.Valid {
				names = append(names, strconv.Itoa(id))
			}
		}
		return names
	}, func(name string) (Node, error) {
		id, err := strconv.Atoi(name)
		if err != nil {
			return nil, &ErrNotFound{Path: "/proc/input/" + name}
		}
		in, err := sess.Cache.GetInput(id)
		if err != nil || !in.Valid {
			return nil, &ErrNotFound{Path: "/proc/input/" + name}
		}
		return procInputInstanceDir(sess, id), nil
	})
}

func procInputInstanceDir(sess *session.Session, id int) *Dir {
	path := fmt.Sprintf("/proc/input/%d", id)
	return NewDir(path, func() []string {
		return append([]string(nil), inputProcFields...)
	}, func(name string) (Node, error) {
		return procInputField(sess, id, name)
	})
}

func procInputField(sess *session.Session, id int, field string) (Node, error) {
	path := fmt.Sprintf("/proc/input/%d/%s", id, field)
	status := func() (state.InputStatus, error) {
		in, err := sess.Cache.GetInput(id)
		if err != nil {
			return state.InputStatus{}, err
		}
		return in.Status, nil
	}

	switch field {
	case "id":
		return NewFile(path, 0444,
			func() ([]byte, error) {
				st, err := status()
				if err != nil {
					return nil, err
				}
				return fmtInt(st.ID), nil
			},
			nil,
			func() time.Time {
				st, _ := status()
				return st.MTimeID
			},
		), nil
	case "state":
		return NewFile(path, 0444,
			func() ([]byte, error) {
				st, err := status()
				if err != nil {
					return nil, err
				}
				return fmtBool(st.State), nil
			},
			nil,
			func() time.Time {
				st, _ := status()
				return st.MTimeState
			},
		), nil
	}
	return nil, &ErrNotFound{Path: path}
}

// parseBoolInput implements the /proc/switch/N/output write rule: content
// beginning with "true" or "1" means on, beginning with "false" or "0"
// means off, anything else is rejected.
func parseBoolInput(data []byte) (bool, bool) {
	s := strings.TrimSpace(string(data))
	switch {
	case strings.HasPrefix(s, "true"), strings.HasPrefix(s, "1"):
		return true, true
	case strings.HasPrefix(s, "false"), strings.HasPrefix(s, "0"):
		return false, true
	default:
		return false, false
	}
}
