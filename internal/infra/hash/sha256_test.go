package hash

import "testing"

func TestSumHex(t *testing.T) {
	got := (SHA256{}).SumHex([]byte("abc"))
	want := "sha256:ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestSumHexDiffersPerPayload(t *testing.T) {
	hasher := SHA256{}
	if hasher.SumHex([]byte(`{"title":"a"}`)) == hasher.SumHex([]byte(`{"title":"b"}`)) {
		t.Fatalf("expected distinct digests")
	}
}
