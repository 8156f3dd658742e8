package preview

import (
	"testing"
)

func TestPDFDecoderRejectsGarbage(t *testing.T) {
	d := NewPDFDecoder(t.TempDir())

	_, err := d.Decode([]byte("this is not a pdf"))
	if err == nil {
		t.Fatal("expected decode failure")
	}
	if KindOf(err) != KindMalformed {
		t.Errorf("expected malformed kind, got %v (%v)", KindOf(err), err)
	}
}

func TestPDFDecoderRejectsEmptyInput(t *testing.T) {
	d := NewPDFDecoder(t.TempDir())
	if _, err := d.Decode(nil); err == nil {
		t.Fatal("expected decode failure for empty input")
	}
}
