// Package hash provides the checksum used to verify archived snapshots.
//
// CRC32-Castagnoli is hardware accelerated on x86 (SSE4.2) and ARM and
// detects all single-bit and double-bit errors. It is not a cryptographic
// hash and does not detect tampering.
package hash
