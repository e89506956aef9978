package state

import (
	"fmt"
	"regexp"
	"strings"
)

// CrontabOpKind identifies what a CrontabOp asks the intention layer to do.
type CrontabOpKind int

const (
	// OpCreate means no schedule with this id exists yet; the device
	// assigns the id on Schedule.Create.
	OpCreate CrontabOpKind = iota
	// OpUpdate means the id exists and its enable flag, timespec, or
	// first call changed.
	OpUpdate
	// OpDelete means a cached schedule's id was not seen anywhere in
	// the parsed text.
	OpDelete
)

// CrontabOp is one line of a crontab diff against the cache.
type CrontabOp struct {
	Kind     CrontabOpKind
	ID       int // -1 for OpCreate
	Enable   bool
	Timespec string
	Calls    []ScheduleCall
}

// CrontabWarning describes a line that could not be turned into an
// operation; the line is skipped rather than aborting the whole sync.
type CrontabWarning struct {
	Line   string
	Reason string
}

var idCommentRE = regexp.MustCompile(`^#\s*id:(-?\d+)`)

// RenderCrontab renders the schedule list as a non-strict crontab
// variant: a header block, then for each valid schedule a "# id:<N>"
// comment (suffixed "(disabled)" for readability when enable=false),
// one line per call of "<prefix><timespec> <method>[ <params_json>]",
// and a blank line terminating the block. <prefix> is empty when the
// schedule is enabled, "#! " when disabled.
func (c *Cache) RenderCrontab() string {
	var b strings.Builder
	b.WriteString("# shusefs crontab\n")
	b.WriteString("# fields: sec min hour dom month dow method [params_json]\n")

	c.withLock(func() {
		b.WriteString(fmt.Sprintf("# revision %d\n", c.scheduleRevision))
		b.WriteByte('\n')
		for i := range c.schedule {
			s := &c.schedule[i]
			if !s.Valid {
				continue
			}
			writeScheduleBlock(&b, s)
		}
	})
	return b.String()
}

func writeScheduleBlock(b *strings.Builder, s *Schedule) {
	comment := fmt.Sprintf("# id:%d", s.ID)
	if !s.Enable {
		comment += " (disabled)"
	}
	b.WriteString(comment)
	b.WriteByte('\n')

	prefix := ""
	if !s.Enable {
		prefix = disabledPrefix
	}
	for _, call := range s.Calls {
		line := prefix + s.Timespec + " " + call.Method
		if call.ParamsJSON != "" {
			line += " " + call.ParamsJSON
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
}

// disabledPrefix marks a schedule line as commented out, i.e. the
// schedule it encodes has Enable=false.
const disabledPrefix = "#! "

// ParseCrontab parses rendered crontab text and diffs it against the
// cache, following the differential-sync algorithm: a "# id:<N>"
// comment sets a sticky current-id consumed by the very next schedule
// line; lines with fewer than 6 timespec tokens plus a method are
// rejected with a warning and skipped rather than aborting the whole
// parse; schedule ids present in the text but absent from the cache
// are also warned-and-skipped, since the client cannot assign ids.
// After every line is processed, any cache slot never marked "seen"
// is emitted as an OpDelete.
func (c *Cache) ParseCrontab(text string) ([]CrontabOp, []CrontabWarning) {
	var ops []CrontabOp
	var warnings []CrontabWarning
	seen := make(map[int]bool)

	c.withLock(func() {
		currentID := -1

		for _, raw := range strings.Split(text, "\n") {
			line := strings.TrimRight(raw, "\r")
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}

			if m := idCommentRE.FindStringSubmatch(trimmed); m != nil {
				var id int
				fmt.Sscanf(m[1], "%d", &id)
				currentID = id
				continue
			}
			if strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, disabledPrefix) {
				// Pure comment line, not a disabled schedule line.
				continue
			}

			enable := true
			body := trimmed
			if strings.HasPrefix(body, disabledPrefix) {
				enable = false
				body = strings.TrimSpace(body[len(disabledPrefix):])
			}

			fields := strings.Fields(body)
			if len(fields) < 7 {
				warnings = append(warnings, CrontabWarning{
					Line:   raw,
					Reason: "fewer than 6 timespec tokens plus a method",
				})
				currentID = -1
				continue
			}
			timespec := strings.Join(fields[:6], " ")
			method := fields[6]
			params := strings.TrimSpace(strings.Join(fields[7:], " "))

			id := currentID
			currentID = -1

			call := ScheduleCall{Method: method, ParamsJSON: params}

			if id == -1 {
				ops = append(ops, CrontabOp{
					Kind:     OpCreate,
					ID:       -1,
					Enable:   enable,
					Timespec: timespec,
					Calls:    []ScheduleCall{call},
				})
				continue
			}

			if id < 0 || id >= MaxSchedules || !c.schedule[id].Valid {
				warnings = append(warnings, CrontabWarning{
					Line:   raw,
					Reason: "id not present in cache; ids cannot be client-assigned",
				})
				continue
			}

			seen[id] = true
			cur := &c.schedule[id]
			var firstCall ScheduleCall
			if len(cur.Calls) > 0 {
				firstCall = cur.Calls[0]
			}
			if cur.Enable != enable || cur.Timespec != timespec || firstCall.Method != method || firstCall.ParamsJSON != params {
				ops = append(ops, CrontabOp{
					Kind:     OpUpdate,
					ID:       id,
					Enable:   enable,
					Timespec: timespec,
					Calls:    []ScheduleCall{call},
				})
			}
		}

		for i := range c.schedule {
			if c.schedule[i].Valid && !seen[i] {
				ops = append(ops, CrontabOp{Kind: OpDelete, ID: i})
			}
		}
	})

	return ops, warnings
}
