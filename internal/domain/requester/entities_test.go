package requester

import (
	"errors"
	"strings"
	"testing"
)

func TestRequester_Password(t *testing.T) {
	var r Requester
	if err := r.SetPassword("s3cret"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if r.PasswordHash == "s3cret" || !strings.HasPrefix(r.PasswordHash, "$2") {
		t.Fatalf("password not hashed: %q", r.PasswordHash)
	}
	if !r.CheckPassword("s3cret") {
		t.Fatalf("CheckPassword rejected the right password")
	}
	if r.CheckPassword("wrong") {
		t.Fatalf("CheckPassword accepted a wrong password")
	}
}

func TestRequester_SetPasswordEmpty(t *testing.T) {
	var r Requester
	if err := r.SetPassword("  "); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("want ErrMissingFields, got %v", err)
	}
}
