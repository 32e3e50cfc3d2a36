package techdetect

import "testing"

func TestFindings_MaxCombine(t *testing.T) {
	f := newFindings()
	f.Add("X", 70, "")
	f.Add("X", 40, "")
	f.Add("X", 90, "")
	f.Add("X", 50, "")

	fd, ok := f.Get("X")
	if !ok {
		t.Fatal("finding missing")
	}
	if fd.Confidence != 90 {
		t.Errorf("Confidence: got %d, want 90", fd.Confidence)
	}
	if fd.Matches != 4 {
		t.Errorf("Matches: got %d, want 4", fd.Matches)
	}
}

func TestFindings_Clamp(t *testing.T) {
	f := newFindings()
	f.Add("X", 140, "")
	f.Add("Y", -5, "")

	if fd, _ := f.Get("X"); fd.Confidence != 100 {
		t.Errorf("X confidence: got %d, want 100", fd.Confidence)
	}
	if fd, _ := f.Get("Y"); fd.Confidence != 0 {
		t.Errorf("Y confidence: got %d, want 0", fd.Confidence)
	}
}

func TestFindings_FirstVersionWins(t *testing.T) {
	f := newFindings()
	f.Add("X", 50, "")
	f.Add("X", 60, "1.2.3")
	f.Add("X", 70, "9.9.9")

	if fd, _ := f.Get("X"); fd.Version != "1.2.3" {
		t.Errorf("Version: got %q, want 1.2.3", fd.Version)
	}
}

func TestFindings_OrderStable(t *testing.T) {
	f := newFindings()
	f.Add("C", 10, "")
	f.Add("A", 20, "")
	f.Add("B", 30, "")
	f.Add("A", 99, "")

	got := f.Names()
	want := []string{"C", "A", "B"}
	if len(got) != len(want) {
		t.Fatalf("Names: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names: got %v, want %v", got, want)
		}
	}
}

func TestFindings_WithoutDoesNotMutateInput(t *testing.T) {
	f := newFindings()
	f.Add("A", 50, "")
	f.Add("B", 60, "")

	g := f.without("A")
	if g.Has("A") {
		t.Error("without: A still present in copy")
	}
	if !f.Has("A") {
		t.Error("without: input snapshot mutated")
	}
}
