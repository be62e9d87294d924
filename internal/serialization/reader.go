package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/brook-ml/brook/internal/tensor"
)

// Load reads a .brook stream and returns its tensors, header, and nothing
// else. Every tensor gets its own freshly allocated buffer; the stream is
// fully consumed.
func Load(r io.Reader) (map[string]*tensor.RawTensor, Header, error) {
	var header Header

	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, header, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if !bytes.Equal(magic, []byte(MagicBytes)) {
		return nil, header, fmt.Errorf("%w: got %q, want %q", ErrInvalidMagic, magic, MagicBytes)
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, header, fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return nil, header, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	var checksum [ChecksumSize]byte
	if _, err := io.ReadFull(r, checksum[:]); err != nil {
		return nil, header, fmt.Errorf("failed to read checksum: %w", err)
	}

	var headerLen uint32
	if err := binary.Read(r, binary.LittleEndian, &headerLen); err != nil {
		return nil, header, fmt.Errorf("failed to read header length: %w", err)
	}
	if headerLen > MaxHeaderSize {
		return nil, header, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerLen)
	}

	headerJSON := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, header, fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, header, fmt.Errorf("failed to parse header: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, header, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := ValidateChecksum(ComputeChecksum(data), checksum); err != nil {
		return nil, header, err
	}

	tensors := make(map[string]*tensor.RawTensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		raw, err := materialize(meta, data)
		if err != nil {
			return nil, header, fmt.Errorf("tensor %q: %w", meta.Name, err)
		}
		tensors[meta.Name] = raw
	}
	return tensors, header, nil
}

// materialize builds a RawTensor from its metadata and the data section.
func materialize(meta TensorMeta, data []byte) (*tensor.RawTensor, error) {
	dtype, ok := stringToDtype(meta.DType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDType, meta.DType)
	}
	shape := tensor.Shape(meta.Shape)

	raw, err := tensor.NewRaw(shape, dtype, stringToDevice(meta.Device))
	if err != nil {
		return nil, err
	}

	want := int64(raw.ByteSize())
	if meta.Size != want {
		return nil, fmt.Errorf("%w: size %d does not match shape %v (%d bytes)",
			ErrOutOfBounds, meta.Size, shape, want)
	}
	if meta.Offset < 0 || meta.Offset+meta.Size > int64(len(data)) {
		return nil, fmt.Errorf("%w: offset %d size %d, data section is %d bytes",
			ErrOutOfBounds, meta.Offset, meta.Size, len(data))
	}

	copy(raw.Data(), data[meta.Offset:meta.Offset+meta.Size])
	return raw, nil
}

// LoadFile reads the .brook file at path and returns its tensors and custom
// metadata.
func LoadFile(path string) (map[string]*tensor.RawTensor, map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	tensors, header, err := Load(file)
	if err != nil {
		return nil, nil, err
	}
	return tensors, header.Metadata, nil
}
