package vector

import "testing"

func TestEncodeDecodeEmbedding_RoundTrip(t *testing.T) {
	orig := []float32{0.0, 1.5, -2.25, 3.75}

	b, err := EncodeEmbedding(orig)
	if err != nil {
		t.Fatalf("EncodeEmbedding failed: %v", err)
	}
	decoded, err := DecodeEmbeddingDim(b, len(orig))
	if err != nil {
		t.Fatalf("DecodeEmbeddingDim failed: %v", err)
	}
	for i := range orig {
		if got, want := decoded[i], orig[i]; got != want {
			t.Fatalf("decoded[%d] = %v, want %v", i, got, want)
		}
	}
	if _, err := DecodeEmbeddingDim(b, 3); err == nil {
		t.Fatalf("expected dim mismatch error")
	}
}

func TestDecodeEmbedding_InvalidLength(t *testing.T) {
	if _, err := DecodeEmbedding([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for blob length 3")
	}
	vec, err := DecodeEmbedding(nil)
	if err != nil || len(vec) != 0 {
		t.Fatalf("DecodeEmbedding(nil) = %v, %v; want empty, nil", vec, err)
	}
}
