// Package bf implements a lexer, parser, and tree-walking interpreter for the
// eight-instruction tape language:
//   - `>` and `<` move the pointer right and left.
//   - `+` and `-` increment and decrement the current cell, wrapping modulo 256.
//   - `.` writes the current cell and `,` reads one byte into it.
//   - `[` ... `]` repeats its body while the current cell is nonzero.
//
// Whitespace is ignored; every other character is a lexing error. Programs run
// against a fixed tape of TapeSize cells and an injected IO capability, so the
// runtime can be driven by a terminal or by in-memory buffers.
package bf
