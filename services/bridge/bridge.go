// Package bridge turns the relay's serial event stream into robot commands.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"roland-ctrl/bus"
	"roland-ctrl/errcode"
	"roland-ctrl/types"
)

var StateTopic = bus.T("bridge", "state")

// EventTopic is where decoded relay events are published (retained).
func EventTopic(ch types.Channel) bus.Topic { return bus.T("relay", ch.String()) }

const (
	backoffMin = 250 * time.Millisecond
	backoffMax = 5 * time.Second

	// maxReadErrors consecutive non-timeout read errors count as a lost link.
	maxReadErrors = 8
)

// Service owns the robot connection, the serial link and the key State.
// Everything except bus publishing happens on the Run goroutine.
type Service struct {
	cfg   Config
	conn  *bus.Connection
	state State
	robot Robot
	now   func() time.Time
}

func New(cfg Config, conn *bus.Connection) *Service {
	return &Service{cfg: cfg, conn: conn, now: time.Now}
}

// linkLost marks a serial failure that is retried rather than returned.
type linkLost struct{ err error }

func (e *linkLost) Error() string { return "link lost: " + e.err.Error() }
func (e *linkLost) Unwrap() error { return e.err }

// Run dials the robot once and then supervises the serial link until ctx is
// done (nil) or a decode or robot error occurs (returned).
func (s *Service) Run(ctx context.Context) error {
	s.publishState(types.LevelIdle, "starting", nil)

	r, err := RobotDial(ctx, s.cfg.Robot.Addr)
	if err != nil {
		s.publishState(types.LevelError, "robot_dial_failed", err)
		return errcode.Wrap(errcode.LinkDown, "robot", s.cfg.Robot.Addr, err)
	}
	s.robot = r
	defer func() {
		_ = r.Stop()
		_ = r.Close()
	}()

	backoff := backoffSeq(backoffMin, backoffMax)
	for {
		if ctx.Err() != nil {
			s.publishState(types.LevelIdle, "stopped", nil)
			return nil
		}

		rwc, err := SerialDial(ctx, s.cfg.Serial)
		if err != nil {
			delay := backoff()
			glog.Warningf("serial: open %s: %v (retry in %s)", s.cfg.Serial.Port, err, delay)
			s.publishState(types.LevelDegraded, "dial_failed_retrying", fmt.Errorf("%v (retry in %s)", err, delay))
			if !sleep(ctx, delay) {
				s.publishState(types.LevelIdle, "stopped", nil)
				return nil
			}
			continue
		}

		backoff = backoffSeq(backoffMin, backoffMax)
		glog.Infof("serial: %s open at %d baud", s.cfg.Serial.Port, s.cfg.Serial.Baud)
		s.publishState(types.LevelUp, "link_established", nil)

		err = s.handleLink(ctx, rwc)
		_ = rwc.Close()

		var lost *linkLost
		switch {
		case ctx.Err() != nil:
			s.publishState(types.LevelIdle, "stopped", nil)
			return nil
		case errors.As(err, &lost):
			delay := backoff()
			glog.Warningf("serial: %v (retry in %s)", lost.err, delay)
			s.publishState(types.LevelDegraded, "link_lost_retrying", fmt.Errorf("%v (retry in %s)", lost.err, delay))
			if !sleep(ctx, delay) {
				s.publishState(types.LevelIdle, "stopped", nil)
				return nil
			}
		default:
			s.publishState(types.LevelError, string(errcode.Of(err)), err)
			return err
		}
	}
}

// handleLink reads lines until the link fails, ctx ends or a line is fatal.
func (s *Service) handleLink(ctx context.Context, rwc io.ReadWriteCloser) error {
	stop := context.AfterFunc(ctx, func() { _ = rwc.Close() })
	defer stop()

	lr := newLineReader(rwc)
	errs := 0
	for ctx.Err() == nil {
		line, err := lr.ReadLine()
		switch {
		case err == nil:
			errs = 0
		case errors.Is(err, errcode.Timeout):
			continue
		case errors.Is(err, errcode.MalformedLine):
			return err
		case isClosed(err):
			return &linkLost{err}
		default:
			errs++
			glog.Warningf("serial: read: %v", err)
			if errs >= maxReadErrors {
				return &linkLost{err}
			}
			continue
		}

		if IsBanner(line) {
			glog.Info("relay: ready")
			continue
		}
		if glog.V(1) {
			glog.Infof("relay: %s", strings.TrimSpace(line))
		}
		ev, err := HandleLine(&s.state, s.robot, line)
		if err != nil {
			return err
		}
		s.conn.Publish(s.conn.NewMessage(EventTopic(ev.Channel), ev, true))
	}
	return nil
}

func isClosed(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrClosed) {
		return true
	}
	var pe *serial.PortError
	return errors.As(err, &pe) && pe.Code() == serial.PortClosed
}

func (s *Service) publishState(level types.Level, status string, err error) {
	st := types.LinkState{
		Level:  level,
		Status: status,
		TS:     s.now().UnixMilli(),
	}
	if err != nil {
		st.Error = err.Error()
	}
	s.conn.Publish(s.conn.NewMessage(StateTopic, st, true))
}

// -----------------------------------------------------------------------------
// Utilities
// -----------------------------------------------------------------------------

func backoffSeq(min, max time.Duration) func() time.Duration {
	if min <= 0 {
		min = 100 * time.Millisecond
	}
	if max < min {
		max = min
	}
	cur := min
	return func() time.Duration {
		d := cur
		cur *= 2
		if cur > max {
			cur = max
		}
		return d
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
