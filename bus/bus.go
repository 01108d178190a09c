// Package bus is a small in-process pub/sub with retained messages and
// MQTT-style wildcards. Delivery never blocks a publisher: a full
// subscriber queue drops its oldest message.
package bus

import (
	"sync"
)

const (
	// Single matches exactly one topic level.
	Single = "+"
	// Multi matches the remaining levels (zero or more); it must be last.
	Multi = "#"
)

// Topic is a path of levels, e.g. Topic{"relay", "speed"}.
type Topic []string

// T builds a topic from its levels.
func T(levels ...string) Topic { return Topic(levels) }

func (t Topic) String() string {
	s := ""
	for i, l := range t {
		if i > 0 {
			s += "/"
		}
		s += l
	}
	return s
}

// Message is one publication. A retained message with a nil Payload clears
// the retained value of its topic.
type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// deliver enqueues m, evicting the oldest entry when full. Callers hold the bus lock.
func (s *Subscription) deliver(m *Message) {
	for {
		select {
		case s.ch <- m:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// -----------------------------------------------------------------------------
// Trie
// -----------------------------------------------------------------------------

type node struct {
	children map[string]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(level string, create bool) *node {
	if c, ok := n.children[level]; ok || !create {
		return c
	}
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	c := &node{}
	n.children[level] = c
	return c
}

func (n *node) empty() bool {
	return len(n.subs) == 0 && len(n.children) == 0 && n.retained == nil
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu   sync.Mutex
	subs *node // keyed by subscription pattern
	ret  *node // keyed by concrete topic, holds retained messages
	qLen int
}

// NewBus creates a bus whose subscriptions buffer queueLen messages.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{subs: &node{}, ret: &node{}, qLen: queueLen}
}

// NewMessage is a convenience constructor.
func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish delivers msg to every matching subscription and updates the
// retained store.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg.Retained {
		b.retain(msg)
	}
	b.match(b.subs, msg.Topic, func(s *Subscription) { s.deliver(msg) })
}

func (b *Bus) retain(msg *Message) {
	if msg.Payload != nil {
		n := b.ret
		for _, l := range msg.Topic {
			n = n.child(l, true)
		}
		n.retained = msg
		return
	}
	path := []*node{b.ret}
	n := b.ret
	for _, l := range msg.Topic {
		if n = n.child(l, false); n == nil {
			return
		}
		path = append(path, n)
	}
	n.retained = nil
	prune(path, msg.Topic)
}

// match walks the pattern trie for a concrete topic.
func (b *Bus) match(n *node, topic Topic, fn func(*Subscription)) {
	if c := n.child(Multi, false); c != nil {
		for _, s := range c.subs {
			fn(s)
		}
	}
	if len(topic) == 0 {
		for _, s := range n.subs {
			fn(s)
		}
		return
	}
	if c := n.child(topic[0], false); c != nil {
		b.match(c, topic[1:], fn)
	}
	if c := n.child(Single, false); c != nil {
		b.match(c, topic[1:], fn)
	}
}

// retainedFor collects retained messages whose topic matches pattern.
func retainedFor(n *node, pattern Topic, out []*Message) []*Message {
	if len(pattern) == 0 {
		if n.retained != nil {
			out = append(out, n.retained)
		}
		return out
	}
	switch pattern[0] {
	case Multi:
		if n.retained != nil {
			out = append(out, n.retained)
		}
		for _, c := range n.children {
			out = retainedFor(c, pattern, out)
		}
	case Single:
		for _, c := range n.children {
			out = retainedFor(c, pattern[1:], out)
		}
	default:
		if c := n.child(pattern[0], false); c != nil {
			out = retainedFor(c, pattern[1:], out)
		}
	}
	return out
}

func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.subs
	for _, l := range sub.topic {
		n = n.child(l, true)
	}
	n.subs = append(n.subs, sub)

	for _, m := range retainedFor(b.ret, sub.topic, nil) {
		sub.deliver(m)
	}
}

func (b *Bus) removeSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := []*node{b.subs}
	n := b.subs
	for _, l := range sub.topic {
		if n = n.child(l, false); n == nil {
			return
		}
		path = append(path, n)
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
	prune(path, sub.topic)
}

// prune drops empty nodes bottom-up; path[i+1] is path[i].children[topic[i]].
func prune(path []*node, topic Topic) {
	for i := len(topic) - 1; i >= 0; i-- {
		if !path[i+1].empty() {
			return
		}
		delete(path[i].children, topic[i])
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

// Connection groups the subscriptions of one client so they can be torn
// down together.
type Connection struct {
	bus  *Bus
	id   string
	mu   sync.Mutex
	subs []*Subscription
}

func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Subscribe registers pattern; matching retained messages are queued at once.
func (c *Connection) Subscribe(pattern Topic) *Subscription {
	sub := &Subscription{
		topic: pattern,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	c.bus.addSubscription(sub)
	return sub
}

// Unsubscribe removes sub and closes its channel. Repeated calls are no-ops.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.mu.Lock()
	found := false
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}
	c.bus.removeSubscription(sub)
	close(sub.ch)
}

// Disconnect closes every subscription of the connection.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.removeSubscription(sub)
		close(sub.ch)
	}
}
