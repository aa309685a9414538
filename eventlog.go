package slave

// eventLogCapacity is the number of entries the comm event log retains
// (spec.md §4.8); the oldest entry is dropped once full.
const eventLogCapacity = 64

// Event byte layout (spec.md §6). RECV events carry EventRecv (bit 7);
// SEND events carry EventSend (bit 6, with bit 7 clear). COMM_RESTART
// and ENTERED_LISTEN_ONLY are standalone byte values, not bit flags.
const (
	EventRecv            uint8 = 0x80
	EventRecvCommError   uint8 = 0x02
	EventRecvCharOverrun uint8 = 0x10
	EventRecvListenMode  uint8 = 0x20
	EventRecvBroadcast   uint8 = 0x40

	EventSend              uint8 = 0x40
	EventSendReadEx        uint8 = 0x01
	EventSendAbortEx       uint8 = 0x02
	EventSendBusyEx        uint8 = 0x04
	EventSendNAKEx         uint8 = 0x08
	EventSendWriteTimeout  uint8 = 0x10
	EventSendListenOnly    uint8 = 0x20

	EventCommRestart       uint8 = 0x00
	EventEnteredListenOnly uint8 = 0x04
)

// eventLog is a fixed-capacity ring buffer of comm event bytes, newest
// entry last internally but always read back newest-first (spec.md
// §4.8).
type eventLog struct {
	entries []uint8
}

func newEventLog() *eventLog {
	return &eventLog{entries: make([]uint8, 0, eventLogCapacity)}
}

// append records a new event byte, discarding the oldest entry once the
// log is at capacity.
func (l *eventLog) append(event uint8) {
	if len(l.entries) >= eventLogCapacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:eventLogCapacity-1]
	}
	l.entries = append(l.entries, event)
}

// clear empties the log, as happens on a restart-communications-option
// request with 0xFF00 (spec.md §4.5.1 sub-function 0x01).
func (l *eventLog) clear() {
	l.entries = l.entries[:0]
}

func (l *eventLog) count() int {
	return len(l.entries)
}

// snapshot returns the log contents newest-first, as returned by the
// Get Comm Event Log request (spec.md §4.5 function 0x0C, §4.8).
func (l *eventLog) snapshot() []uint8 {
	out := make([]uint8, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}
