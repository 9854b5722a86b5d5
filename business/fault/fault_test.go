package fault_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hamidoujand/user-service/business/fault"
)

func TestKindOf(t *testing.T) {
	tests := map[string]struct {
		err  error
		kind fault.Kind
	}{
		"not found":  {err: fault.NotFound("Object not Found. id%s, Type: %s", "1", "UserResponse"), kind: fault.KindNotFound},
		"conflict":   {err: fault.Conflict("Email [%s] already exists.", "a@b.com"), kind: fault.KindConflict},
		"validation": {err: fault.Validation("Exception in validation attributes", nil), kind: fault.KindValidation},
		"internal":   {err: fault.Internal(errors.New("boom")), kind: fault.KindInternal},
		"wrapped":    {err: fmt.Errorf("save: %w", fault.Conflict("dup")), kind: fault.KindConflict},
		"plain":      {err: errors.New("plain"), kind: fault.KindInternal},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if got := fault.KindOf(test.err); got != test.kind {
				t.Errorf("kind= %s, got %s", test.kind, got)
			}
		})
	}
}

func TestCallerCaptured(t *testing.T) {
	err := fault.NotFound("missing")

	var fe *fault.Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected a *fault.Error, got %T", err)
	}

	if !strings.Contains(fe.FileName, "fault_test.go") {
		t.Errorf("expected file name to point at the caller, got %s", fe.FileName)
	}

	if !strings.Contains(fe.FuncName, "TestCallerCaptured") {
		t.Errorf("expected func name to point at the caller, got %s", fe.FuncName)
	}
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := fault.Internal(cause)

	if !errors.Is(err, cause) {
		t.Errorf("expected internal error to wrap its cause")
	}
}
