package hx711

import (
	"errors"
	"time"

	"github.com/l0nax/go-spew/spew"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

var pprint = spew.ConfigState{
	Indent:                  "\t",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

const fakeProgramMemory = 32

// fakeHardware simulates one chip with two sequencer blocks and a DMA
// controller. Conversions queued in words are delivered in order as the
// state machines request them
type fakeHardware struct {
	clock physic.Frequency

	installs   map[BlockID]int
	memoryUsed map[BlockID]int
	machines   map[[2]uint8]*fakeStateMachine

	pinBlock map[Pin]BlockID
	pulls    map[Pin]gpio.Pull
	pinErr   error

	dmaChannels int
	claimed     map[DMAChannel]bool
	pending     map[DMAChannel]*fakeTransfer
	claims      int

	// words are the conversions the amplifier will produce. A nil slice
	// models a disconnected amplifier
	words []uint32

	events []string
}

type fakeTransfer struct {
	t    Transfer
	done bool
}

func newFakeHardware() *fakeHardware {
	return &fakeHardware{
		clock:       125 * physic.MegaHertz,
		installs:    make(map[BlockID]int),
		memoryUsed:  make(map[BlockID]int),
		machines:    make(map[[2]uint8]*fakeStateMachine),
		pinBlock:    make(map[Pin]BlockID),
		pulls:       make(map[Pin]gpio.Pull),
		dmaChannels: 12,
		claimed:     make(map[DMAChannel]bool),
		pending:     make(map[DMAChannel]*fakeTransfer),
	}
}

// hardware returns the services with a private registry so tests do not
// share installed programs
func (f *fakeHardware) hardware() Hardware {
	return Hardware{
		Pins:      f,
		Clock:     f,
		Sequencer: f,
		DMA:       f,
		Registry:  NewProgramRegistry(),
	}
}

func (f *fakeHardware) log(ev string) {
	f.events = append(f.events, ev)
}

func (f *fakeHardware) ConfigureSequencerPin(pin Pin, block BlockID) error {
	if f.pinErr != nil {
		return f.pinErr
	}
	f.pinBlock[pin] = block
	return nil
}

func (f *fakeHardware) SetPull(pin Pin, pull gpio.Pull) error {
	f.pulls[pin] = pull
	return nil
}

func (f *fakeHardware) SystemClock() physic.Frequency {
	return f.clock
}

func (f *fakeHardware) AddProgram(block BlockID, program []uint16, origin int8) (uint8, error) {
	if block > 1 {
		return 0, errors.New("no such block")
	}
	used := f.memoryUsed[block]
	if used+len(program) > fakeProgramMemory {
		return 0, errors.New("program does not fit")
	}
	f.installs[block]++
	f.memoryUsed[block] = used + len(program)
	return uint8(used), nil
}

func (f *fakeHardware) StateMachine(block BlockID, slot SlotID) (StateMachine, error) {
	if block > 1 || slot > 3 {
		return nil, errors.New("no such state machine")
	}
	key := [2]uint8{uint8(block), uint8(slot)}
	sm, ok := f.machines[key]
	if !ok {
		sm = &fakeStateMachine{hw: f, block: block, slot: slot}
		f.machines[key] = sm
	}
	if sm.claimed {
		return nil, errors.New("state machine already claimed")
	}
	sm.claimed = true
	return sm, nil
}

func (f *fakeHardware) Claim(ch DMAChannel) error {
	if ch < 0 || int(ch) >= f.dmaChannels {
		return errors.New("no such channel")
	}
	if f.claimed[ch] {
		return errors.New("channel already claimed")
	}
	f.claimed[ch] = true
	f.claims++
	return nil
}

func (f *fakeHardware) ClaimUnused() (DMAChannel, error) {
	for ch := DMAChannel(0); int(ch) < f.dmaChannels; ch++ {
		if !f.claimed[ch] {
			f.claimed[ch] = true
			f.claims++
			f.log("dma-claim")
			return ch, nil
		}
	}
	return 0, errors.New("all channels in use")
}

func (f *fakeHardware) Unclaim(ch DMAChannel) {
	f.log("dma-unclaim")
	delete(f.claimed, ch)
	delete(f.pending, ch)
}

func (f *fakeHardware) Start(ch DMAChannel, t Transfer) error {
	if !f.claimed[ch] {
		return errors.New("channel not claimed")
	}
	f.log("dma-start")
	f.pending[ch] = &fakeTransfer{t: t}
	return nil
}

func (f *fakeHardware) Wait(ch DMAChannel, timeout time.Duration) error {
	f.log("dma-wait")
	p, ok := f.pending[ch]
	if !ok {
		return errors.New("no transfer")
	}
	if p.done {
		delete(f.pending, ch)
		return nil
	}
	if timeout > 0 {
		return ErrTimedOut
	}
	panic("fake DMA: wait without timeout would block forever")
}

func (f *fakeHardware) Abort(ch DMAChannel) {
	f.log("dma-abort")
	delete(f.pending, ch)
}

// transferFor returns the pending transfer reading from src
func (f *fakeHardware) transferFor(src Source) *fakeTransfer {
	for _, p := range f.pending {
		if p.t.Source == src && !p.done {
			return p
		}
	}
	return nil
}

// fakeStateMachine models the parts of a state machine the capture
// protocol depends on: enable state, FIFOs, the input shift counter and
// the transmit queue word that starts the program
type fakeStateMachine struct {
	hw    *fakeHardware
	block BlockID
	slot  SlotID

	claimed     bool
	initialised bool
	offset      uint8
	cfg         StateMachineConfig

	enabled bool
	// isrCount is the number of bits sitting in the input shift register
	isrCount int
	rxFIFO   []uint32
}

func (sm *fakeStateMachine) Init(offset uint8, cfg StateMachineConfig) error {
	sm.initialised = true
	sm.offset = offset
	sm.cfg = cfg
	sm.enabled = false
	return nil
}

func (sm *fakeStateMachine) SetEnabled(enabled bool) {
	if enabled {
		sm.hw.log("enable")
	} else {
		sm.hw.log("disable")
	}
	sm.enabled = enabled
}

func (sm *fakeStateMachine) ClearFIFOs() {
	sm.hw.log("clear")
	sm.rxFIFO = nil
}

func (sm *fakeStateMachine) Restart() {
	sm.hw.log("restart")
	sm.isrCount = 0
}

func (sm *fakeStateMachine) Put(word uint32) {
	sm.hw.log("put:" + utoa(word))
	if !sm.enabled {
		panic("fake state machine: put while disabled would block forever")
	}

	n := int(word) + 1
	p := sm.hw.transferFor(sm.RxFIFO())
	for i := 0; i < n && len(sm.hw.words) > 0; i++ {
		w := sm.hw.words[0]
		sm.hw.words = sm.hw.words[1:]
		if i == 0 && sm.isrCount != 0 {
			// Leftover bits complete the first word early
			w = w >> sm.isrCount
		}
		if p != nil && i < len(p.t.Dest) {
			p.t.Dest[i] = w & sampleMask
			if i == len(p.t.Dest)-1 {
				p.done = true
			}
		} else {
			sm.rxFIFO = append(sm.rxFIFO, w)
		}
	}
	// Capturing stops on a word boundary; bits clocked in afterwards by a
	// stray pulse stay in the ISR until the next restart
	sm.isrCount = 5
}

func (sm *fakeStateMachine) Release() {
	sm.hw.log("release")
	sm.enabled = false
	sm.claimed = false
}

func (sm *fakeStateMachine) RxFIFO() Source {
	return Source{
		Addr: 0x50200020 + uintptr(sm.block)*0x100000 + uintptr(sm.slot)*4,
		DREQ: uint8(sm.block)*8 + 4 + uint8(sm.slot),
	}
}

// encode24 converts a signed value to the 24-bit form the amplifier sends
func encode24(v int32) uint32 {
	return uint32(v) & sampleMask
}
