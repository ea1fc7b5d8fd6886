package hx711

// Acquisition program for the sequencer.
//
//	.program hx711
//	    pull block          ; OSR = conversions - 1
//	    mov x, osr          ; X = remaining conversions
//	read:
//	    wait 0 pin 0        ; DOUT low: conversion ready
//	    set y, 23           ; 24 data bits
//	bitloop:
//	    set pins, 1         ; PD_SCK high
//	    in pins, 1          ; sample DOUT, autopush after 24 bits
//	    set pins, 0         ; PD_SCK low
//	    jmp y-- bitloop
//	    set pins, 1         ; 25th pulse: channel A, gain 128
//	    set pins, 0
//	    jmp x-- read
//	    ; wraps to "pull block" and stalls until the next request
//
// At the 2MHz execution rate every instruction takes 500ns, so PD_SCK
// stays high for 1us per bit, well under the 60us power-down threshold.
// The X count is N-1 because the first pass through "read" needs no jump
var Program = []uint16{
	// .wrap_target
	0x80a0, //  0: pull   block
	0xa027, //  1: mov    x, osr
	0x2020, //  2: wait   0 pin, 0
	0xe057, //  3: set    y, 23
	0xe001, //  4: set    pins, 1
	0x4001, //  5: in     pins, 1
	0xe000, //  6: set    pins, 0
	0x0084, //  7: jmp    y--, 4
	0xe001, //  8: set    pins, 1
	0xe000, //  9: set    pins, 0
	0x0042, // 10: jmp    x--, 2
	// .wrap
}

const (
	// ProgramOrigin lets the hardware layer place the program anywhere
	ProgramOrigin int8 = -1

	programWrapTarget = 0
	programWrap       = 10

	// SampleBits is the width of one conversion
	SampleBits = 24
)
