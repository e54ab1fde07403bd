package domain

import "testing"

func TestFieldSetUnionDoesNotMutate(t *testing.T) {
	a := NewFieldSet(FieldName)
	b := NewFieldSet(FieldDescription)

	u := a.Union(b)
	if u.Len() != 2 || !u.Has(FieldName) || !u.Has(FieldDescription) {
		t.Fatalf("union: got %v", u.Sorted())
	}
	if a.Len() != 1 || b.Len() != 1 {
		t.Fatalf("operands mutated: a=%v b=%v", a.Sorted(), b.Sorted())
	}
}

func TestFieldSetWithout(t *testing.T) {
	s := NewFieldSet(FieldName, FieldDescription, FieldImageURL)
	got := s.Without(NewFieldSet(FieldDescription, FieldVisualStyleID))
	if !got.Equal(NewFieldSet(FieldName, FieldImageURL)) {
		t.Fatalf("without: got %v", got.Sorted())
	}
	if s.Len() != 3 {
		t.Fatalf("receiver mutated: %v", s.Sorted())
	}
}

func TestFieldSetScanValueRoundTrip(t *testing.T) {
	s := NewFieldSet(FieldVisualStyleID, FieldName)

	v, err := s.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	// Stored form is sorted for stable rows.
	if v.(string) != `["name","visual_style_id"]` {
		t.Fatalf("stored form: %q", v)
	}

	var back FieldSet
	if err := back.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !back.Equal(s) {
		t.Fatalf("round trip: got %v", back.Sorted())
	}
}

func TestFieldSetScanNil(t *testing.T) {
	var s FieldSet
	if err := s.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty set, got %v", s.Sorted())
	}
}
