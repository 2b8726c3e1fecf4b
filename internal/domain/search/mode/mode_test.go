package mode

import "testing"

func TestIsValid(t *testing.T) {
	valid := []Mode{Fused, Lexical, Vector}
	for _, m := range valid {
		if !m.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", m)
		}
	}

	invalid := []Mode{"", "hybrid", "semantic", "keyword", "FUSED"}
	for _, m := range invalid {
		if m.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", m)
		}
	}
}

func TestNeedsEmbedding(t *testing.T) {
	if Lexical.NeedsEmbedding() {
		t.Error("lexical mode should not need an embedding")
	}
	if !Vector.NeedsEmbedding() {
		t.Error("vector mode needs an embedding")
	}
	if !Fused.NeedsEmbedding() {
		t.Error("fused mode needs an embedding")
	}
}
