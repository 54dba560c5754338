package protocol

import (
	"testing"

	"parkcraft.ai/internal/gameaction"
)

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		ErrProtoBadRequest,
		ErrProtoVersion,
		ErrNoPermission,
		ErrRateLimit,
		ErrBusy,
		ErrUnknownAction,
		ErrBadParams,
		ErrRejected,
		ErrInternal,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestCodeForStatus(t *testing.T) {
	if CodeForStatus(gameaction.StatusOk) != "" {
		t.Fatalf("ok carries no code")
	}
	if CodeForStatus(gameaction.StatusNotOwned) != ErrRejected {
		t.Fatalf("rule failures are rejections")
	}
}
