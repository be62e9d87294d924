// Copyright 2025 Brook ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor operations in Brook.
//
// The package defines core types for type-safe tensor computation:
//   - Tensor[T]: High-level generic tensor with type safety
//   - RawTensor: Low-level tensor representation for advanced use cases
//   - Shape, DataType, Device: Core type definitions
//
// Example:
//
//	x, _ := tensor.Zeros[float32](tensor.Shape{2, 3}, tensor.CPU)
//	y, _ := tensor.Full[float32](tensor.Shape{2, 3}, 1, tensor.CPU)
//	z, _ := tensor.Add(x, y)
package tensor

import (
	"github.com/brook-ml/brook/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor data types.
// Supported types: float32, float64, int32.
type DType = tensor.DType

// Float is a constraint for floating-point tensor data types.
type Float = tensor.Float

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
)

// Device represents the device a tensor's data is tagged with.
type Device = tensor.Device

// Device constants.
const (
	CPU Device = tensor.CPU
	GPU Device = tensor.GPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Infer marks a dimension whose size Reshape computes from the others.
const Infer = tensor.Infer

// Tensor is a generic, type-safe view over a RawTensor.
type Tensor[T DType] = tensor.Tensor[T]

// RawTensor is the low-level tensor representation: shared buffer, shape,
// strides, data type, and device tag.
type RawTensor = tensor.RawTensor

// Sentinel errors.
var (
	ErrInvalidShape         = tensor.ErrInvalidShape
	ErrInvalidRange         = tensor.ErrInvalidRange
	ErrShapeMismatch        = tensor.ErrShapeMismatch
	ErrUnsupportedTranspose = tensor.ErrUnsupportedTranspose
)

// New wraps a RawTensor in a typed view.
// Panics if T does not match the raw tensor's data type.
func New[T DType](raw *RawTensor) *Tensor[T] {
	return tensor.New[T](raw)
}

// FromSlice creates a tensor from a flat data slice and shape.
func FromSlice[T DType](data []T, shape Shape, device Device) (*Tensor[T], error) {
	return tensor.FromSlice(data, shape, device)
}

// Zeros creates a zero-filled tensor.
func Zeros[T DType](shape Shape, device Device) (*Tensor[T], error) {
	return tensor.Zeros[T](shape, device)
}

// Full creates a tensor filled with a constant value.
func Full[T DType](shape Shape, value T, device Device) (*Tensor[T], error) {
	return tensor.Full(shape, value, device)
}

// Arange creates a 1-D tensor with evenly spaced values in [start, stop).
func Arange[T DType](start, stop, step T, device Device) (*Tensor[T], error) {
	return tensor.Arange(start, stop, step, device)
}

// Reshape returns a view with a new shape sharing the tensor's storage.
// One dimension may be Infer.
func Reshape[T DType](t *Tensor[T], newShape ...int) (*Tensor[T], error) {
	return tensor.Reshape(t, newShape...)
}

// Transpose swaps the last two axes of a rank-3 tensor, copying the data.
func Transpose[T DType](t *Tensor[T], axisA, axisB int) (*Tensor[T], error) {
	return tensor.Transpose(t, axisA, axisB)
}

// Add returns the element-wise sum of two same-shaped tensors.
func Add[T DType](a, b *Tensor[T]) (*Tensor[T], error) {
	return tensor.Add(a, b)
}

// Scale returns the tensor multiplied by a scalar.
func Scale[T DType](t *Tensor[T], scalar T) *Tensor[T] {
	return tensor.Scale(t, scalar)
}
