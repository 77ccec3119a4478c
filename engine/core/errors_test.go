package core

import (
	"errors"
	"testing"
)

func TestSetupErrorUnwraps(t *testing.T) {
	cause := errors.New("no GL 3.2 context")
	err := error(&SetupError{Stage: "window", Err: cause})
	if err.Error() != "setup window: no GL 3.2 context" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to reach the cause")
	}
}
