package serialization

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brook-ml/brook/internal/tensor"
)

func float32Raw(t *testing.T, shape tensor.Shape, values []float32, device tensor.Device) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, device)
	if err != nil {
		t.Fatalf("NewRaw(%v) failed: %v", shape, err)
	}
	copy(raw.AsFloat32(), values)
	return raw
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.brook")

	weight := float32Raw(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6}, tensor.CPU)
	bias := float32Raw(t, tensor.Shape{3}, []float32{0.5, -0.5, 0.25}, tensor.GPU)
	steps, err := tensor.NewRaw(tensor.Shape{4}, tensor.Int32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	copy(steps.AsInt32(), []int32{1, -2, 3, -4})

	state := map[string]*tensor.RawTensor{
		"weight": weight,
		"bias":   bias,
		"steps":  steps,
	}
	metadata := map[string]string{"model_type": "TestModel", "note": "roundtrip"}

	if err := SaveFile(path, state, metadata); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	loaded, meta, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(loaded) != len(state) {
		t.Fatalf("loaded %d tensors, want %d", len(loaded), len(state))
	}
	if meta["model_type"] != "TestModel" || meta["note"] != "roundtrip" {
		t.Errorf("metadata not preserved: %v", meta)
	}

	for name, original := range state {
		got, ok := loaded[name]
		if !ok {
			t.Fatalf("tensor %q missing after load", name)
		}
		if !got.Shape().Equal(original.Shape()) {
			t.Errorf("tensor %q: shape %v, want %v", name, got.Shape(), original.Shape())
		}
		if got.DType() != original.DType() {
			t.Errorf("tensor %q: dtype %v, want %v", name, got.DType(), original.DType())
		}
		if got.Device() != original.Device() {
			t.Errorf("tensor %q: device %v, want %v", name, got.Device(), original.Device())
		}
		if !bytes.Equal(got.Data()[:got.ByteSize()], original.Data()[:original.ByteSize()]) {
			t.Errorf("tensor %q: bytes differ after roundtrip", name)
		}
		if got.SharesStorage(original) {
			t.Errorf("tensor %q: loaded tensor aliases the saved buffer", name)
		}
	}
}

func TestSaveDeterministic(t *testing.T) {
	state := map[string]*tensor.RawTensor{
		"b": float32Raw(t, tensor.Shape{2}, []float32{1, 2}, tensor.CPU),
		"a": float32Raw(t, tensor.Shape{2}, []float32{3, 4}, tensor.CPU),
	}
	header := Header{ModelType: "TestModel"}

	var first, second bytes.Buffer
	if err := Save(&first, state, header); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if err := Save(&second, state, header); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	// CreatedAt is stamped by Save; pin it for a byte comparison.
	if first.Len() != second.Len() {
		t.Errorf("save sizes differ: %d vs %d", first.Len(), second.Len())
	}
}

func TestLoadInvalidMagic(t *testing.T) {
	_, _, err := Load(bytes.NewReader([]byte("NOPE\x01\x00\x00\x00")))
	if !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestLoadUnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	state := map[string]*tensor.RawTensor{
		"w": float32Raw(t, tensor.Shape{1}, []float32{1}, tensor.CPU),
	}
	if err := Save(&buf, state, Header{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw := buf.Bytes()
	raw[4] = 99 // bump the little-endian version field past anything supported

	_, _, err := Load(bytes.NewReader(raw))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestLoadCorruptedData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.brook")
	state := map[string]*tensor.RawTensor{
		"weight": float32Raw(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4}, tensor.CPU),
	}
	if err := SaveFile(path, state, nil); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	raw[len(raw)-1] ^= 0xFF
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, _, err = LoadFile(path)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestChecksum(t *testing.T) {
	data := []byte("brook tensor data")
	sum := ComputeChecksum(data)

	fromReader, err := ComputeChecksumReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ComputeChecksumReader failed: %v", err)
	}
	if sum != fromReader {
		t.Error("reader checksum differs from in-memory checksum")
	}
	if err := ValidateChecksum(sum, fromReader); err != nil {
		t.Errorf("ValidateChecksum failed on matching sums: %v", err)
	}

	var other [32]byte
	if err := ValidateChecksum(sum, other); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestMaterializeOutOfBounds(t *testing.T) {
	var buf bytes.Buffer
	state := map[string]*tensor.RawTensor{
		"w": float32Raw(t, tensor.Shape{2}, []float32{1, 2}, tensor.CPU),
	}
	if err := Save(&buf, state, Header{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	meta := TensorMeta{
		Name:   "w",
		DType:  DTypeFloat32,
		Shape:  []int{2},
		Device: DeviceCPU,
		Offset: 4,
		Size:   8,
	}
	if _, err := materialize(meta, make([]byte, 8)); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}
