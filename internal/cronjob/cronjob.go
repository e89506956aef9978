// Package cronjob wraps gopkg.in/robfig/cron.v2 for the session's
// housekeeping jobs (the network loop schedules log flushing). It is
// deliberately not used for the network loop's 1s tick: that tick needs
// tight control over a tick counter (sweep every 10th tick) that cron's
// cadence abstraction doesn't expose.
package cronjob

import (
	"gopkg.in/robfig/cron.v2"
)

// Provider schedules recurring functions by cron spec.
type Provider interface {
	AddFunc(spec string, cmd func()) (int, error)
	RemoveFunc(id int)
}

type provider struct {
	cron *cron.Cron
}

// New constructs and starts a cron scheduler.
func New() Provider {
	p := &provider{cron: cron.New()}
	p.cron.Start()
	return p
}

func (p *provider) AddFunc(spec string, cmd func()) (int, error) {
	id, err := p.cron.AddFunc(spec, cmd)
	return int(id), err
}

func (p *provider) RemoveFunc(id int) {
	p.cron.Remove(cron.EntryID(id))
}
