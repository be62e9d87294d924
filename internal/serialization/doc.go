// Package serialization implements the .brook checkpoint format: a magic
// prefix, a format version, a SHA-256 checksum over the data section, a JSON
// header describing each tensor (name, dtype, shape, device, offset, size),
// and the raw little-endian tensor data.
//
// The format round-trips exact buffer bytes: loading a file yields tensors
// bit-identical to the ones saved, with their shape, dtype, and device tag
// preserved.
package serialization
