// Package conv provides overflow-checked integer conversions used when
// table sizes cross between int and the 32-bit slot space.
package conv
