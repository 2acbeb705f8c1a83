package apperror

import (
	"errors"
	"strings"
	"testing"
)

func TestNew_DefaultsFromCode(t *testing.T) {
	tests := []struct {
		code Code
		kind Kind
	}{
		{CodeMempoolFetchFailed, KindTransient},
		{CodeWebSocketConnectionError, KindTransient},
		{CodeCircuitOpen, KindTransient},
		{CodeOriginNotFound, KindPrerequisite},
		{CodeMempoolDecodeFailed, KindMalformed},
		{CodeMalformedBlock, KindMalformed},
		{CodeEngineLoadFailed, KindUnavailable},
		{CodeRenderFailed, KindInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code)
			if err.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", err.Kind, tt.kind)
			}
			if err.Message != messages[tt.code] {
				t.Errorf("message = %q", err.Message)
			}
		})
	}
}

func TestAppError_WrapsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Transient(CodeMempoolFetchFailed, "GET /api/v1/fees/mempool-blocks", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if !errors.Is(err, New(CodeMempoolFetchFailed)) {
		t.Error("errors.Is should match on code")
	}
	if !IsTransient(err) {
		t.Error("expected transient")
	}
	if !strings.Contains(err.Error(), "refused") {
		t.Errorf("Error() = %q, want cause text", err.Error())
	}
}

func TestWrap_KeepsExistingAppError(t *testing.T) {
	orig := New(CodeOriginNotFound)
	wrapped := Wrap(orig, CodeInternalError, "activate")

	if wrapped != orig {
		t.Fatal("Wrap should return the existing AppError")
	}
	if wrapped.Context != "activate" {
		t.Errorf("context = %q", wrapped.Context)
	}
	if Wrap(nil, CodeInternalError, "") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestGetKind_ForeignError(t *testing.T) {
	if GetKind(errors.New("boom")) != KindInternal {
		t.Error("foreign errors are internal")
	}
	if GetCode(errors.New("boom")) != CodeUnknownError {
		t.Error("foreign errors have unknown code")
	}
}
