package common

import (
	"errors"
	"testing"
)

func TestNodeErrIs(t *testing.T) {
	err := NewNodeErr("Ledger", Replay, "42")

	if !Is(err, Replay) {
		t.Fatalf("err should be a Replay error")
	}

	if Is(err, Malformed) {
		t.Fatalf("err should not be a Malformed error")
	}

	if Is(errors.New("plain"), Replay) {
		t.Fatalf("plain errors are not NodeErr")
	}

	if err.Error() != "Ledger, 42, Replay" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestWrapNodeErr(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapNodeErr("Router", Unreachable, "127.0.0.1:9000", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("cause should be reachable through Unwrap")
	}

	if err.Key() != "127.0.0.1:9000" {
		t.Fatalf("key should be the target address, not %s", err.Key())
	}

	expected := "Router, 127.0.0.1:9000, Unreachable: connection refused"
	if err.Error() != expected {
		t.Fatalf("message should be %q, not %q", expected, err.Error())
	}
}
