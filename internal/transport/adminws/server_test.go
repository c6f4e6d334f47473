package adminws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"worldvault/internal/protocol"
	"worldvault/internal/vault/codec"
	"worldvault/internal/vault/profile"
	"worldvault/internal/world/grid"
)

func TestCodeForMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("p1/WorldDocumentV1: %w", codec.ErrNotFound), protocol.ErrNotFound},
		{grid.ErrNoPlacement, protocol.ErrNotFound},
		{&codec.DecodeError{Type: "WorldDocumentV1", Err: errors.New("bad tag")}, protocol.ErrDecode},
		{&codec.EncodeError{Type: "WorldDocumentV1", Err: errors.New("cycle")}, protocol.ErrEncode},
		{&grid.OverlapError{Cell: grid.Cell{X: 1, Y: 1}}, protocol.ErrConflict},
		{profile.ValidateID("../escape"), protocol.ErrBadRequest},
		{profile.ValidateID(""), protocol.ErrBadRequest},
		{os.ErrPermission, protocol.ErrIO},
		{context.Canceled, protocol.ErrInternal},
		{errors.New("something unexpected"), protocol.ErrInternal},
	}
	for _, tc := range cases {
		if got := codeFor(tc.err); got != tc.want {
			t.Fatalf("codeFor(%v): got %s want %s", tc.err, got, tc.want)
		}
		if !protocol.IsKnownCode(codeFor(tc.err)) {
			t.Fatalf("codeFor(%v) returned unknown code", tc.err)
		}
	}
}
