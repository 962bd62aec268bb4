package utils

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestSanitizeContentStripsScript(t *testing.T) {
	in := `<p>hello</p><script>alert(1)</script>`
	out := Sanitize(in)
	if out == in {
		t.Error("script tag survived sanitization")
	}
	if got := Sanitize("plain text"); got != "plain text" {
		t.Errorf("plain text mangled: %q", got)
	}
}
