// Package config defines the explicit configuration object shared by the
// transport, cache store, and assembler.
//
// The configuration lifecycle is load-once: build a Config (literal or
// LoadFile), let WithDefaults fill the blanks, Validate it, and hand it to
// the constructors. Per-call overrides happen through option funcs on the
// individual operations, never by mutating a shared Config. Environment
// variables and command-line flags are deliberately not read here.
package config
