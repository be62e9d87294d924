package tensor

import "testing"

// Reshape tests

func TestReshapeIdentity(t *testing.T) {
	x, err := Zeros[float32](Shape{2, 3}, CPU)
	if err != nil {
		t.Fatalf("Zeros failed: %v", err)
	}

	y, err := Reshape(x, 2, 3)
	if err != nil {
		t.Fatalf("Reshape failed: %v", err)
	}

	assertEqualShape(t, x.Shape(), y.Shape(), "identity reshape")
	if !x.Raw().SharesStorage(y.Raw()) {
		t.Error("identity reshape must share storage")
	}
}

func TestReshapeIsView(t *testing.T) {
	x, err := Arange[float32](0, 6, 1, CPU)
	if err != nil {
		t.Fatalf("Arange failed: %v", err)
	}

	y, err := Reshape(x, 2, 3)
	if err != nil {
		t.Fatalf("Reshape failed: %v", err)
	}
	if !x.Raw().SharesStorage(y.Raw()) {
		t.Fatal("reshape must share storage with the input")
	}

	// Mutation through one alias is visible through the other.
	y.Set(42, 1, 2)
	assertEqualFloat32(t, 42, x.At(5), "mutation through reshaped alias")
}

func TestReshapeInfer(t *testing.T) {
	x, err := Arange[int32](0, 12, 1, CPU)
	if err != nil {
		t.Fatalf("Arange failed: %v", err)
	}

	y, err := Reshape(x, 3, Infer)
	if err != nil {
		t.Fatalf("Reshape failed: %v", err)
	}
	assertEqualShape(t, Shape{3, 4}, y.Shape(), "inferred dimension")

	z, err := Reshape(x, Infer, 2, 3)
	if err != nil {
		t.Fatalf("Reshape failed: %v", err)
	}
	assertEqualShape(t, Shape{2, 2, 3}, z.Shape(), "leading inferred dimension")
}

func TestReshapeMismatch(t *testing.T) {
	x, err := Arange[float32](0, 6, 1, CPU)
	if err != nil {
		t.Fatalf("Arange failed: %v", err)
	}

	_, err = Reshape(x, 2, 2)
	assertErrorIs(t, err, ErrShapeMismatch, "6 elements into [2, 2]")

	_, err = Reshape(x, Infer, Infer)
	assertErrorIs(t, err, ErrShapeMismatch, "two inferred dimensions")

	_, err = Reshape(x, 4, Infer)
	assertErrorIs(t, err, ErrShapeMismatch, "non-divisible inference")
}

// Transpose tests

func TestTransposeRoundTrip(t *testing.T) {
	x, err := Arange[float32](0, 24, 1, CPU)
	if err != nil {
		t.Fatalf("Arange failed: %v", err)
	}
	x3, err := Reshape(x, 2, 3, 4)
	if err != nil {
		t.Fatalf("Reshape failed: %v", err)
	}

	y, err := Transpose(x3, 1, 2)
	if err != nil {
		t.Fatalf("Transpose failed: %v", err)
	}
	assertEqualShape(t, Shape{2, 4, 3}, y.Shape(), "transposed shape")

	z, err := Transpose(y, 1, 2)
	if err != nil {
		t.Fatalf("Transpose failed: %v", err)
	}
	assertEqualShape(t, x3.Shape(), z.Shape(), "round-trip shape")

	xd, zd := x3.Data(), z.Data()
	for i := range xd {
		assertEqualFloat32(t, xd[i], zd[i], "round-trip value")
	}
}

func TestTransposeValues(t *testing.T) {
	// [1, 2, 3] laid out as (batch, time, channel)
	x, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{1, 2, 3}, CPU)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	y, err := Transpose(x, 1, 2)
	if err != nil {
		t.Fatalf("Transpose failed: %v", err)
	}

	assertEqualFloat32(t, x.At(0, 1, 2), y.At(0, 2, 1), "permuted element")
	assertEqualFloat32(t, x.At(0, 0, 1), y.At(0, 1, 0), "permuted element")
}

func TestTransposeCopies(t *testing.T) {
	x, err := Zeros[float32](Shape{1, 2, 3}, CPU)
	if err != nil {
		t.Fatalf("Zeros failed: %v", err)
	}

	y, err := Transpose(x, 1, 2)
	if err != nil {
		t.Fatalf("Transpose failed: %v", err)
	}
	if x.Raw().SharesStorage(y.Raw()) {
		t.Error("transpose result must not share storage")
	}
}

func TestTransposeUnsupported(t *testing.T) {
	x2, err := Zeros[float32](Shape{2, 3}, CPU)
	if err != nil {
		t.Fatalf("Zeros failed: %v", err)
	}
	_, err = Transpose(x2, 1, 2)
	assertErrorIs(t, err, ErrUnsupportedTranspose, "rank-2 transpose")

	x3, err := Zeros[float32](Shape{2, 3, 4}, CPU)
	if err != nil {
		t.Fatalf("Zeros failed: %v", err)
	}
	_, err = Transpose(x3, 0, 1)
	assertErrorIs(t, err, ErrUnsupportedTranspose, "axis pair (0, 1)")

	x4, err := Zeros[float32](Shape{2, 3, 4}, CPU)
	if err != nil {
		t.Fatalf("Zeros failed: %v", err)
	}
	_, err = Transpose(x4, 0, 2)
	assertErrorIs(t, err, ErrUnsupportedTranspose, "axis pair (0, 2)")
}

// Add tests

func TestAddCommutative(t *testing.T) {
	a, err := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, CPU)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	b, err := FromSlice([]float32{5, 6, 7, 8}, Shape{2, 2}, CPU)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	ab, err := Add(a, b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	ba, err := Add(b, a)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	abd, bad := ab.Data(), ba.Data()
	for i := range abd {
		assertEqualFloat32(t, abd[i], bad[i], "commutativity")
	}
	assertEqualFloat32(t, 6, ab.At(0, 0), "sum value")
}

func TestAddShapeMismatch(t *testing.T) {
	a, err := Zeros[float32](Shape{3}, CPU)
	if err != nil {
		t.Fatalf("Zeros failed: %v", err)
	}
	b, err := Zeros[float32](Shape{4}, CPU)
	if err != nil {
		t.Fatalf("Zeros failed: %v", err)
	}

	_, err = Add(a, b)
	assertErrorIs(t, err, ErrShapeMismatch, "add [3] and [4]")
}

// Scale tests

func TestScaleIdentityAndZero(t *testing.T) {
	x, err := FromSlice([]float32{1, -2, 3.5}, Shape{3}, CPU)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	one := Scale(x, 1)
	xd, od := x.Data(), one.Data()
	for i := range xd {
		assertEqualFloat32(t, xd[i], od[i], "scale by 1")
	}

	zero := Scale(x, 0)
	for i, v := range zero.Data() {
		if v != 0 {
			t.Errorf("scale by 0: element %d = %v, want 0", i, v)
		}
	}
}

func TestScaleValues(t *testing.T) {
	x, err := FromSlice([]float64{1, 2, 3}, Shape{3}, CPU)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	y := Scale(x, 2.5)
	want := []float64{2.5, 5, 7.5}
	for i, v := range y.Data() {
		if v != want[i] {
			t.Errorf("element %d = %v, want %v", i, v, want[i])
		}
	}
}
