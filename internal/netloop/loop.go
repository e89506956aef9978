package netloop

import (
	"context"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/shusefs/shusefs/internal/cronjob"
	"github.com/shusefs/shusefs/internal/logging"
	"github.com/shusefs/shusefs/internal/session"
	"github.com/shusefs/shusefs/internal/wire"
)

// Tick is the network task's drive interval, per §5.
const Tick = 1 * time.Second

// SweepEveryTicks calls sweep_timeouts once per this many ticks, per §5.
const SweepEveryTicks = 10

// maxBackoff bounds the reconnect backoff.
const maxBackoff = 30 * time.Second

// Loop owns a single *websocket.Conn across its lifetime, reconnecting
// with backoff on failure. The cache it drives through Sess is never
// invalidated across a reconnect — only the connect burst is re-run.
type Loop struct {
	URL  string
	Sess *session.Session
	Log  logging.Provider
	Cron cronjob.Provider

	conn    *websocket.Conn
	backoff time.Duration
}

// New constructs a Loop ready to Run.
func New(url string, sess *session.Session, log logging.Provider, cron cronjob.Provider) *Loop {
	return &Loop{URL: url, Sess: sess, Log: log, Cron: cron, backoff: time.Second}
}

// Run drives connect/reconnect until ctx is cancelled and then returns
// nil. Every connect or session failure is logged and retried, so Run
// does not return a non-nil error.
func (l *Loop) Run(ctx context.Context) error {
	if l.Cron != nil {
		if _, err := l.Cron.AddFunc("@every 10s", func() { l.Log.Flush() }); err != nil {
			l.Log.Warn("logger-flush cron job not scheduled", logging.FieldError, err.Error())
		}
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := l.connect(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.Log.Warn("connect failed, backing off", logging.FieldError, err.Error())
			if !sleepBackoff(ctx, l.nextBackoff()) {
				return nil
			}
			continue
		}
		l.backoff = time.Second

		if err := l.Sess.ConnectBurst(); err != nil {
			l.Log.Error("connect burst failed", err)
		}

		err := l.runSession(ctx)
		l.conn.Close()
		l.conn = nil

		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			l.Log.Warn("session ended, reconnecting", logging.FieldError, err.Error())
		}
	}
}

func (l *Loop) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.URL, nil)
	if err != nil {
		return errors.Wrap(err, "dial device")
	}
	l.conn = conn
	return nil
}

func (l *Loop) nextBackoff() time.Duration {
	cur := l.backoff
	l.backoff *= 2
	if l.backoff > maxBackoff {
		l.backoff = maxBackoff
	}
	return cur
}

func sleepBackoff(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// runSession drives one connection's lifetime: a read-pump goroutine
// forwards raw frames on a channel; the tick loop drains inbound
// frames, drains and sends queued-but-unsent requests, and sweeps
// timeouts every SweepEveryTicks ticks. It returns when the read pump
// reports the connection is gone or ctx is cancelled.
func (l *Loop) runSession(ctx context.Context) error {
	frames := make(chan []byte, 64)
	readErr := make(chan error, 1)

	go l.readPump(frames, readErr)

	ticker := time.NewTicker(Tick)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-readErr:
			return err

		case raw := <-frames:
			l.handleInboundFrame(raw)

		case <-ticker.C:
			tick++
			l.drainAndSend()
			if tick%SweepEveryTicks == 0 {
				l.Sess.Pending.SweepTimeouts(time.Now())
			}
		}
	}
}

func (l *Loop) readPump(frames chan<- []byte, readErr chan<- error) {
	for {
		_, msg, err := l.conn.ReadMessage()
		if err != nil {
			readErr <- err
			return
		}
		frames <- msg
	}
}

func (l *Loop) handleInboundFrame(raw []byte) {
	frame, err := wire.Classify(raw)
	if err != nil {
		l.Log.Warn("malformed frame skipped", logging.FieldError, err.Error())
		return
	}
	l.Sess.Dispatch(frame)
}

// drainAndSend sends every currently StateQueued request in FIFO
// order. A send failure breaks the drain for this tick (not the whole
// loop) so the loop backs off to the next tick rather than spinning;
// the entry is left StateQueued, so TakeNextQueued hands it right back
// out on the next tick instead of losing it.
func (l *Loop) drainAndSend() {
	for {
		id, payload, ok := l.Sess.Pending.TakeNextQueued()
		if !ok {
			return
		}
		if err := l.conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
			l.Log.Warn("send failed, retrying next tick", logging.FieldReqID, strconv.Itoa(id), logging.FieldError, err.Error())
			return
		}
		if err := l.Sess.Pending.MarkSent(id); err != nil {
			l.Log.Warn("mark_sent failed", logging.FieldReqID, strconv.Itoa(id), logging.FieldError, err.Error())
		}
	}
}
