package serialization

import (
	"time"

	"github.com/brook-ml/brook/internal/tensor"
)

// Format constants.
const (
	MagicBytes    = "BROK"
	FormatVersion = 1  // v1: JSON header + SHA-256 checksum over the data section
	ChecksumSize  = 32 // SHA-256 checksum size (32 bytes)

	// MaxHeaderSize bounds the JSON header so a corrupt length field cannot
	// trigger an unbounded allocation.
	MaxHeaderSize = 16 << 20
)

// Data type string constants for serialization.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
	DTypeInt32   = "int32"
)

// Device string constants for serialization.
const (
	DeviceCPU = "cpu"
	DeviceGPU = "gpu"
)

// Header represents the JSON header in a .brook file.
type Header struct {
	FormatVersion int               `json:"format_version"` // Version of the .brook format
	BrookVersion  string            `json:"brook_version"`  // Version of Brook that created this file
	ModelType     string            `json:"model_type"`     // Type of model (e.g., "ProjectedTransformer")
	CreatedAt     time.Time         `json:"created_at"`     // When the file was created
	Tensors       []TensorMeta      `json:"tensors"`        // Tensor metadata
	Metadata      map[string]string `json:"metadata"`       // Custom metadata
}

// TensorMeta describes a tensor in the .brook file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "layers.0.attn.wq.weight")
	DType  string `json:"dtype"`  // Data type (e.g., "float32", "int32")
	Shape  []int  `json:"shape"`  // Tensor shape
	Device string `json:"device"` // Device tag the tensor was saved with
	Offset int64  `json:"offset"` // Offset in the data section (bytes from start of tensor data)
	Size   int64  `json:"size"`   // Size in bytes
}

// dtypeToString converts tensor.DataType to string representation.
func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	case tensor.Int32:
		return DTypeInt32
	default:
		return "unknown"
	}
}

// stringToDtype converts string representation to tensor.DataType.
func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeFloat64:
		return tensor.Float64, true
	case DTypeInt32:
		return tensor.Int32, true
	default:
		return 0, false
	}
}

// deviceToString converts tensor.Device to string representation.
func deviceToString(d tensor.Device) string {
	switch d {
	case tensor.GPU:
		return DeviceGPU
	default:
		return DeviceCPU
	}
}

// stringToDevice converts string representation to tensor.Device.
// Unknown tags fall back to CPU so files from newer versions still load.
func stringToDevice(s string) tensor.Device {
	if s == DeviceGPU {
		return tensor.GPU
	}
	return tensor.CPU
}
