package hx711

import "sync"

// ProgramRegistry remembers where the acquisition program is resident in
// each block's instruction memory. The program is installed at most once
// per block; every state machine in that block shares it
type ProgramRegistry struct {
	mu      sync.Mutex
	offsets map[BlockID]uint8
}

// DefaultRegistry is the process-wide registry used when Hardware.Registry
// is nil. Instruction memory is cleared by a hardware reset, which also
// restarts the process, so it never needs to be invalidated
var DefaultRegistry = NewProgramRegistry()

// NewProgramRegistry creates an empty registry
func NewProgramRegistry() *ProgramRegistry {
	return &ProgramRegistry{offsets: make(map[BlockID]uint8)}
}

// EnsureLoaded returns the load offset of the program in block, installing
// it through seq on first use. A failed install is not cached
func (r *ProgramRegistry) EnsureLoaded(seq Sequencer, block BlockID) (uint8, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if offset, ok := r.offsets[block]; ok {
		return offset, nil
	}

	offset, err := seq.AddProgram(block, Program, ProgramOrigin)
	if err != nil {
		return 0, &hwError{op: "install program in PIO" + utoa(uint32(block)), kind: ErrProgramSpace, err: err}
	}
	r.offsets[block] = offset

	debug("program loaded in PIO" + utoa(uint32(block)) + " at offset " + utoa(uint32(offset)))
	return offset, nil
}

// Loaded reports the offset of the program in block, if installed
func (r *ProgramRegistry) Loaded(block BlockID) (uint8, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	offset, ok := r.offsets[block]
	return offset, ok
}

// Reset forgets all installed programs. Only valid after the sequencer
// blocks themselves were reset
func (r *ProgramRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offsets = make(map[BlockID]uint8)
}
