package dbtypes

import "testing"

func TestStringArrayRoundTrip(t *testing.T) {
	in := StringArray{"web design", "go", `quote"inside`}
	val, err := in.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}

	var out StringArray
	if err := out.Scan(val); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d elements, got %d", len(in), len(out))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("element %d mismatch: %q vs %q", i, in[i], out[i])
		}
	}
}

func TestStringArrayScanEmpty(t *testing.T) {
	var out StringArray
	if err := out.Scan("{}"); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty array, got %v", out)
	}

	if err := out.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) returned error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty array after nil scan, got %v", out)
	}
}
