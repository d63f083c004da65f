package ingest

import "testing"

func TestChecksum(t *testing.T) {
	content := []byte("# Intro\n\nSome documentation.\n")

	if Checksum(content) != Checksum([]byte("# Intro\n\nSome documentation.\n")) {
		t.Error("identical bytes produced different checksums")
	}

	changed := append([]byte{}, content...)
	changed[0] = '~'
	if Checksum(content) == Checksum(changed) {
		t.Error("single byte change did not change the checksum")
	}

	// Known vector: sha256("") base64-encoded.
	if got := Checksum(nil); got != "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=" {
		t.Errorf("Checksum(nil) = %q", got)
	}
}
