// Package queue implements the three interpretation-specific event queues
// (Min/Max/Sim) the propagator drains one device at a time: an ordered
// main/delay pair of sub-queues, keyed by event time, each holding an
// intrusive singly-linked list of device ids over one flat arena.
package queue

import (
	"fmt"
	"sort"

	"github.com/cvcgo/cvc/pkg/ids"
)

// Type names which of the three propagation interpretations a queue serves.
type Type int

const (
	MinQueue Type = iota
	MaxQueue
	SimQueue
)

func (t Type) String() string {
	switch t {
	case MinQueue:
		return "min"
	case MaxQueue:
		return "max"
	default:
		return "sim"
	}
}

// EventKey orders events within a sub-queue. For MaxQueue it is stored
// negated so the ordinary ascending-key iteration still drains
// highest-voltage-first (original_source/src/CEventQueue.cc AddEvent:
// "if ( queueType == MAX_QUEUE ) theEventKey = - theEventKey").
type EventKey int64

// MaxEventTime is returned by QueueTime when a sub-queue is empty
// (original_source/src/CEventQueue.cc CEventSubQueue::QueueTime).
const MaxEventTime EventKey = 1<<63 - 1

// Position selects where AddEvent inserts a device
// (original_source/src/CEventQueue.hh queuePosition_t).
type Position int

const (
	QueueHiZ   Position = -3
	Skip       Position = -2
	MosDiode   Position = -1
	MainBack   Position = 0
	DelayFront Position = 1
	DelayBack  Position = 2
)

// notQueued marks an arena slot as belonging to no list.
const notQueued = ids.UnknownDevice

// eventList is an intrusive singly-linked list of device ids threaded
// through the queue's shared arena: arena[d] holds d's successor,
// or d itself if d is the list's last element (self-reference is the
// end-of-chain sentinel, distinct from notQueued — see push_back/push_front
// in original_source/src/CEventQueue.cc).
type eventList struct {
	arena       []ids.DeviceId
	first, last ids.DeviceId
	size        int
}

func newEventList(arena []ids.DeviceId) *eventList {
	return &eventList{arena: arena, first: notQueued, last: notQueued}
}

func (l *eventList) empty() bool { return l.first == notQueued }

func (l *eventList) pushBack(d ids.DeviceId) {
	if l.arena[d] != notQueued {
		panic(fmt.Sprintf("queue: device %d already queued", d))
	}
	if l.first == notQueued {
		l.first = d
		l.arena[d] = d
	} else {
		l.arena[l.last] = d
		l.arena[d] = d
	}
	l.last = d
	l.size++
}

func (l *eventList) pushFront(d ids.DeviceId) {
	if l.arena[d] != notQueued {
		panic(fmt.Sprintf("queue: device %d already queued", d))
	}
	if l.first == notQueued {
		l.last = d
		l.arena[d] = d
	} else {
		l.arena[d] = l.first
	}
	l.first = d
	l.size++
}

func (l *eventList) popFront() ids.DeviceId {
	if l.first == notQueued {
		panic("queue: pop from empty event list")
	}
	d := l.first
	if l.first == l.arena[l.first] { // last element in its own list
		l.first, l.last = notQueued, notQueued
	} else {
		l.first = l.arena[l.first]
	}
	l.arena[d] = notQueued
	l.size--
	return d
}

// subQueue is an ordered map from EventKey to an eventList, mirroring
// original_source/src/CEventQueue.hh's CEventSubQueue (a std::map).
// Go has no ordered-map primitive in the standard library or anywhere in
// the example pack, so the sorted-keys slice below stands in for it.
type subQueue struct {
	lists map[EventKey]*eventList
	keys  []EventKey // always kept sorted ascending
	arena []ids.DeviceId
}

func newSubQueue(arena []ids.DeviceId) *subQueue {
	return &subQueue{lists: make(map[EventKey]*eventList), arena: arena}
}

func (q *subQueue) empty() bool { return len(q.keys) == 0 }

func (q *subQueue) list(key EventKey) *eventList {
	if l, ok := q.lists[key]; ok {
		return l
	}
	l := newEventList(q.arena)
	q.lists[key] = l
	i := sort.Search(len(q.keys), func(i int) bool { return q.keys[i] >= key })
	q.keys = append(q.keys, 0)
	copy(q.keys[i+1:], q.keys[i:])
	q.keys[i] = key
	return l
}

func (q *subQueue) firstKey() EventKey { return q.keys[0] }

func (q *subQueue) popFrontOfFirst() ids.DeviceId {
	key := q.keys[0]
	l := q.lists[key]
	d := l.popFront()
	if l.empty() {
		delete(q.lists, key)
		q.keys = q.keys[1:]
	}
	return d
}

func (q *subQueue) queueTime() EventKey {
	if q.empty() {
		return MaxEventTime
	}
	return q.firstKey()
}

// LeakKey identifies a pair of powers a leak path was found between,
// ordered so (a,b) and (b,a) collide (original_source/src/CEventQueue.cc
// AddLeak).
type LeakKey struct {
	Low, High ids.NetId
}

func newLeakKey(a, b ids.NetId) LeakKey {
	if a < b {
		return LeakKey{a, b}
	}
	return LeakKey{b, a}
}

// Queue is one interpretation's event queue: a main sub-queue (mos-diode
// and regular updates) and a delay sub-queue (resistor/fuse propagation,
// deferred relative to main), sharing one device-id arena.
type Queue struct {
	Type Type

	arena      []ids.DeviceId
	main       *subQueue
	delay      *subQueue
	LeakMap    map[LeakKey][]ids.DeviceId
	started    bool
	Enqueued   int64
	Dequeued   int64
	Requeued   int64
}

// New builds a Queue sized for deviceCount devices, all initially unqueued.
func New(t Type, deviceCount int) *Queue {
	arena := make([]ids.DeviceId, deviceCount)
	for i := range arena {
		arena[i] = notQueued
	}
	return &Queue{
		Type:    t,
		arena:   arena,
		main:    newSubQueue(arena),
		delay:   newSubQueue(arena),
		LeakMap: make(map[LeakKey][]ids.DeviceId),
	}
}

// Reset clears the queue back to empty, reusing its arena.
func (q *Queue) Reset() {
	for i := range q.arena {
		q.arena[i] = notQueued
	}
	q.main = newSubQueue(q.arena)
	q.delay = newSubQueue(q.arena)
	q.LeakMap = make(map[LeakKey][]ids.DeviceId)
	q.started = false
	q.Enqueued, q.Dequeued, q.Requeued = 0, 0, 0
}

// rawKey negates key for MaxQueue so ascending iteration order still drains
// highest-time-first (original_source/src/CEventQueue.cc AddEvent).
func (q *Queue) rawKey(key EventKey) EventKey {
	if q.Type == MaxQueue {
		return -key
	}
	return key
}

// AddEvent queues device at key under position. Skip is a programming
// error — callers never send a Skip-tagged event to a real queue.
func (q *Queue) AddEvent(key EventKey, device ids.DeviceId, position Position) {
	q.started = true
	rk := q.rawKey(key)
	switch position {
	case QueueHiZ, MosDiode:
		q.main.list(rk).pushFront(device)
	case MainBack:
		q.main.list(rk).pushBack(device)
	case DelayFront:
		q.delay.list(rk).pushFront(device)
	case DelayBack:
		q.delay.list(rk).pushBack(device)
	default:
		panic(fmt.Sprintf("queue: invalid queue position %d", position))
	}
	q.Enqueued++
}

// isNextMain reports whether the next event should come from the main
// queue rather than the delay queue (original_source/src/CEventQueue.cc
// IsNextMainQueue: Sim always prefers main; Min/Max prefer main unless the
// delay queue's key sorts earlier).
func (q *Queue) isNextMain() bool {
	if q.main.empty() {
		return false
	}
	if q.delay.empty() {
		return true
	}
	if q.Type == SimQueue {
		return true
	}
	return q.main.firstKey() <= q.delay.firstKey()
}

// Empty reports whether both sub-queues are empty.
func (q *Queue) Empty() bool { return q.main.empty() && q.delay.empty() }

// Pop dequeues and returns the next device to process.
func (q *Queue) Pop() ids.DeviceId {
	q.Dequeued++
	if q.isNextMain() {
		return q.main.popFrontOfFirst()
	}
	return q.delay.popFrontOfFirst()
}

// QueueTime returns the next event's key in caller-facing (un-negated)
// terms, or 0 if the queue has never been started or both sub-queues are
// currently empty (original_source/src/CEventQueue.cc QueueTime).
func (q *Queue) QueueTime() EventKey {
	if !q.started || q.Empty() {
		return 0
	}
	mt, dt := q.main.queueTime(), q.delay.queueTime()
	raw := mt
	if dt < raw {
		raw = dt
	}
	if q.Type == MaxQueue {
		return -raw
	}
	return raw
}

// Later reports whether key is strictly later (in propagation order, i.e.
// further from zero along this queue's direction) than the queue's current
// head.
func (q *Queue) Later(key EventKey) bool {
	if q.Type == MaxQueue {
		return key < q.QueueTime()
	}
	return key > q.QueueTime()
}

// LaterOf reports whether a is strictly later than b in this queue's
// ordering direction.
func (q *Queue) LaterOf(a, b EventKey) bool {
	if q.Type == MaxQueue {
		return a < b
	}
	return a > b
}

// SimKey packs voltage and a candidate device's resistance into the
// composite key the Sim queue orders events by: (voltage << 16) |
// resistance, so that two devices reaching the same net at the same
// simulated voltage still break the tie by resistance — the lower-
// resistance path, the "closer" source, dequeues first
// (original_source/src/CCvcDb.cc EnqueueAttachedDevicesByTerminal keys the
// newly-discovered device by its own resistance, not the triggering
// device's). Min and Max queues never see a tie worth breaking this way —
// they key purely on voltage — so SimKey is a no-op outside SimQueue.
func (q *Queue) SimKey(voltage EventKey, resistance ids.Resistance) EventKey {
	if q.Type != SimQueue {
		return voltage
	}
	r := resistance
	if r > 0xffff {
		r = 0xffff
	}
	return EventKey(int64(voltage)<<16 | int64(r))
}

// AddLeak records that device sits on a leak path between two powers,
// keyed so the order of discovery doesn't matter (original_source/src/
// CEventQueue.cc AddLeak).
func (q *Queue) AddLeak(device ids.DeviceId, sourcePower, drainPower ids.NetId) {
	key := newLeakKey(sourcePower, drainPower)
	q.LeakMap[key] = append(q.LeakMap[key], device)
}

// Size returns the number of events still queued.
func (q *Queue) Size() int64 { return q.Enqueued - q.Dequeued }

// Queued reports whether device currently sits in either sub-queue.
func (q *Queue) Queued(device ids.DeviceId) bool {
	return q.arena[device] != notQueued
}
