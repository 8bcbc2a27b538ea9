package cipher

import (
	"bytes"
	"testing"
)

func TestAESCipherRoundTrip(t *testing.T) {
	c := AESCipher{}
	password := []byte("correct horse battery staple")
	filename := []byte("movie.mp4")

	for _, size := range []int{0, 1, 31, 32, 33, 1000} {
		data := bytes.Repeat([]byte{0x42}, size)
		ciphertext, err := c.Encrypt(data, password, filename)
		if err != nil {
			t.Fatalf("encrypt size=%d: %v", size, err)
		}
		got, err := c.Decrypt(ciphertext, password, filename)
		if err != nil {
			t.Fatalf("decrypt size=%d: %v", size, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("round trip mismatch for size=%d", size)
		}
	}
}

func TestAESCipherWrongPasswordFails(t *testing.T) {
	c := AESCipher{}
	filename := []byte("f")
	ciphertext, err := c.Encrypt([]byte("secret contents"), []byte("right"), filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decrypt(ciphertext, []byte("wrong"), filename); err == nil {
		t.Fatalf("expected decrypt with wrong password to fail or produce garbage padding error")
	}
}
