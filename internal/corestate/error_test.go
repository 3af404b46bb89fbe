package corestate

import (
	"errors"
	"testing"
)

func TestErrorIsComparesByKindOnly(t *testing.T) {
	err1 := New("registry.create", KindUnderrun, errors.New("param pool empty"))
	err2 := New("registry.create", KindUnderrun, errors.New("stat pool empty"))

	if !errors.Is(err1, err2) {
		t.Errorf("expected errors with the same Kind to compare equal")
	}
	if !errors.Is(err1, Underrun) {
		t.Errorf("expected err1 to match the Underrun sentinel")
	}
	if errors.Is(err1, InvalidStream) {
		t.Errorf("expected err1 not to match an unrelated sentinel")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := New("controller.start", KindDeviceError, cause)

	if !errors.Is(err, cause) {
		t.Errorf("expected Unwrap to expose the wrapped cause")
	}
}

func TestPackageLevelIs(t *testing.T) {
	err := New("frameregistry.create", KindUnderrun, nil)
	if !Is(err, KindUnderrun) {
		t.Errorf("Is() should report true for matching kind")
	}
	if Is(err, KindNotFound) {
		t.Errorf("Is() should report false for non-matching kind")
	}
	if Is(nil, KindUnderrun) {
		t.Errorf("Is() should report false for nil error")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindUnderrun:          "underrun",
		KindInvalidStream:     "invalid_stream",
		KindNotFound:          "not_found",
		KindConfigInvalid:     "config_invalid",
		KindConfigAdjusted:    "config_adjusted",
		KindDeviceError:       "device_error",
		KindIPAUnavailable:    "ipa_unavailable",
		KindTimelineMisconfig: "timeline_misconfig",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
