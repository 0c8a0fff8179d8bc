package tensor

import "testing"

func TestVersionCounterBump(t *testing.T) {
	vc := NewVersionCounter(3)
	if vc.Current() != 3 {
		t.Fatalf("Current = %d, want 3", vc.Current())
	}

	if got := vc.Bump(); got != 4 {
		t.Errorf("Bump = %d, want 4", got)
	}
	if vc.Current() != 4 {
		t.Errorf("Current = %d, want 4", vc.Current())
	}
}

func TestVersionSharedAcrossViews(t *testing.T) {
	raw, _ := NewRaw(Shape{4}, Float32, CPU)
	view := raw.Clone()

	view.MarkMutated()
	view.MarkMutated()

	if raw.Version() != 2 {
		t.Errorf("raw.Version = %d, want 2 after two mutations through a view", raw.Version())
	}
}

func TestShapeString(t *testing.T) {
	if got := (Shape{2, 3}).String(); got != "[2, 3]" {
		t.Errorf("String = %q, want [2, 3]", got)
	}
	if got := (Shape{}).String(); got != "[]" {
		t.Errorf("String = %q, want []", got)
	}
}
