package bus

import (
	"sort"
	"testing"
	"time"
)

func TestBasicPubSub(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("relay", "speed"))
	conn.Publish(conn.NewMessage(T("relay", "speed"), uint16(50), false))

	select {
	case got := <-sub.Channel():
		if got.Payload.(uint16) != 50 {
			t.Fatalf("payload = %v, want 50", got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
}

func TestRetainedDeliveredOnSubscribe(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(T("bridge", "state"), "up", true))
	sub := conn.Subscribe(T("bridge", "state"))
	expectOneOf(t, sub, "up")
}

func TestNonRetainedNotStored(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("test")
	c.Publish(b.NewMessage(T("relay", "w"), "x", false))
	expectNoMessage(t, c.Subscribe(T("relay", "w")))
}

func TestWildcardSingleLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	all := c.Subscribe(T("relay", Single))
	speed := c.Subscribe(T("relay", "speed"))
	state := c.Subscribe(T(Single, "state"))

	c.Publish(b.NewMessage(T("relay", "speed"), "s", false))
	expectOneOf(t, all, "s")
	expectOneOf(t, speed, "s")
	expectNoMessage(t, state)

	c.Publish(b.NewMessage(T("relay", "servo", "extra"), "deep", false))
	expectNoMessage(t, all)

	c.Publish(b.NewMessage(T("bridge", "state"), "up", false))
	expectOneOf(t, state, "up")
	expectNoMessage(t, all)
}

func TestWildcardMultiLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	sub := c.Subscribe(T("relay", Multi))
	root := c.Subscribe(T(Multi))

	c.Publish(b.NewMessage(T("relay"), "p0", false))
	c.Publish(b.NewMessage(T("relay", "w"), "p1", false))
	c.Publish(b.NewMessage(T("relay", "w", "x"), "p2", false))
	c.Publish(b.NewMessage(T("bridge", "state"), "p3", false))

	assertUnorderedEqual(t, drainPayloads(t, sub, 3), []string{"p0", "p1", "p2"})
	assertUnorderedEqual(t, drainPayloads(t, root, 4), []string{"p0", "p1", "p2", "p3"})
}

func TestWildcardRetainedDelivery(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	c.Publish(b.NewMessage(T("relay", "speed"), "r1", true))
	c.Publish(b.NewMessage(T("relay", "w"), "r2", true))
	c.Publish(b.NewMessage(T("bridge", "state"), "r3", true))

	assertUnorderedEqual(t, drainPayloads(t, c.Subscribe(T("relay", Single)), 2), []string{"r1", "r2"})
	assertUnorderedEqual(t, drainPayloads(t, c.Subscribe(T(Multi)), 3), []string{"r1", "r2", "r3"})
}

func TestRetainedClear(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")

	c.Publish(b.NewMessage(T("relay", "w"), "keep", true))
	c.Publish(b.NewMessage(T("relay", "a"), "other", true))
	c.Publish(b.NewMessage(T("relay", "w"), nil, true))

	expectNoMessage(t, c.Subscribe(T("relay", "w")))
	expectOneOf(t, c.Subscribe(T("relay", "a")), "other")
}

func TestQueueDropsOldest(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("test")
	sub := c.Subscribe(T("relay", "speed"))

	for _, p := range []string{"1", "2", "3"} {
		c.Publish(b.NewMessage(T("relay", "speed"), p, false))
	}
	got := drainPayloads(t, sub, 2)
	if got[0] != "2" || got[1] != "3" {
		t.Fatalf("queue = %v, want [2 3]", got)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("test")
	sub := c.Subscribe(T("relay", "w"))
	sub.Unsubscribe()
	sub.Unsubscribe()

	if _, ok := <-sub.Channel(); ok {
		t.Fatal("channel still open after Unsubscribe")
	}
	// Publishing after unsubscribe must not panic on the closed channel.
	c.Publish(b.NewMessage(T("relay", "w"), "late", false))
}

func TestDisconnectClosesAll(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("mirror")
	s1 := c.Subscribe(T("relay", Single))
	s2 := c.Subscribe(T("bridge", "state"))
	c.Disconnect()

	for _, s := range []*Subscription{s1, s2} {
		if _, ok := <-s.Channel(); ok {
			t.Fatalf("subscription %v still open", s.Topic())
		}
	}
	other := b.NewConnection("other")
	other.Publish(b.NewMessage(T("bridge", "state"), "up", false))
}

func TestTopicString(t *testing.T) {
	if got := T("relay", "buzzer").String(); got != "relay/buzzer" {
		t.Fatalf("String() = %q", got)
	}
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

func expectOneOf(t *testing.T, sub *Subscription, want string) {
	t.Helper()
	select {
	case m := <-sub.Channel():
		if s, _ := m.Payload.(string); s != want {
			t.Fatalf("payload = %#v, want %q", m.Payload, want)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for %q", want)
	}
}

func expectNoMessage(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case m := <-sub.Channel():
		t.Fatalf("unexpected message on %v: %#v", m.Topic, m.Payload)
	case <-time.After(10 * time.Millisecond):
	}
}

func drainPayloads(t *testing.T, sub *Subscription, n int) []string {
	t.Helper()
	var out []string
	for i := 0; i < n; i++ {
		select {
		case m := <-sub.Channel():
			s, ok := m.Payload.(string)
			if !ok {
				t.Fatalf("non-string payload: %#v", m.Payload)
			}
			out = append(out, s)
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("drainPayloads: got %d of %d (%v)", len(out), n, out)
		}
	}
	return out
}

func assertUnorderedEqual(t *testing.T, got, want []string) {
	t.Helper()
	sort.Strings(got)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
