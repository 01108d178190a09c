package bridge

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Robot is the subset of the robot API the bridge drives. Calls are
// synchronous and in order.
type Robot interface {
	// Drive sets the wheel speeds as fractions of full speed (-1..1).
	Drive(left, right float64) error
	Stop() error
	// Servo moves the camera servo to an absolute angle in degrees.
	Servo(deg float64) error
	// Buzzer sets the buzzer pulse width; 1 is silent.
	Buzzer(pw float64) error
	Close() error
}

// RobotDial opens the robot command connection. Tests replace it.
var RobotDial = DialRobot

const robotWriteTimeout = time.Second

// DialRobot connects to the robot's text command socket at addr.
func DialRobot(ctx context.Context, addr string) (Robot, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	glog.Infof("robot: connected to %s", addr)
	return NewTextRobot(c), nil
}

// TextRobot speaks the line protocol: one command per line,
//
//	m <left> <right>   drive
//	s                  stop
//	a <deg>            servo angle
//	z <pw>             buzzer
type TextRobot struct {
	mu  sync.Mutex
	c   net.Conn
	w   *bufio.Writer
	buf []byte
}

func NewTextRobot(c net.Conn) *TextRobot {
	return &TextRobot{c: c, w: bufio.NewWriter(c), buf: make([]byte, 0, 48)}
}

func (r *TextRobot) Drive(left, right float64) error { return r.send('m', left, right) }
func (r *TextRobot) Stop() error                     { return r.send('s') }
func (r *TextRobot) Servo(deg float64) error         { return r.send('a', deg) }
func (r *TextRobot) Buzzer(pw float64) error         { return r.send('z', pw) }
func (r *TextRobot) Close() error                    { return r.c.Close() }

func (r *TextRobot) send(cmd byte, args ...float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := append(r.buf[:0], cmd)
	for _, a := range args {
		b = append(b, ' ')
		b = strconv.AppendFloat(b, a, 'f', -1, 64)
	}
	b = append(b, '\n')
	r.buf = b

	if glog.V(1) {
		glog.Infof("robot: %s", b[:len(b)-1])
	}
	_ = r.c.SetWriteDeadline(time.Now().Add(robotWriteTimeout))
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	return r.w.Flush()
}
