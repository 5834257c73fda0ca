package domain

import (
	"testing"

	"github.com/pkg/errors"
)

func TestCheckpointKindsMatchParent(t *testing.T) {
	for _, kind := range []error{ErrCheckpointNotFound, ErrCheckpointCorrupt, ErrCheckpointIncompatible} {
		var err = errors.Wrap(kind, "load netG")
		if !errors.Is(err, ErrCheckpoint) {
			t.Errorf("%v does not match ErrCheckpoint", err)
		}
		if !errors.Is(err, kind) {
			t.Errorf("%v does not match its own kind", err)
		}
		if Kind(err) != "CheckpointError" {
			t.Errorf("unexpected kind %v", Kind(err))
		}
	}
	if errors.Is(ErrCheckpointCorrupt, ErrCheckpointNotFound) {
		t.Error("sibling kinds must not match")
	}
}

func TestKind(t *testing.T) {
	if Kind(Configurationf("unknown dataset %v", "mnist")) != "ConfigurationError" {
		t.Error("configuration kind")
	}
	if Kind(Computationf("loss is NaN")) != "RuntimeComputationError" {
		t.Error("computation kind")
	}
	if Kind(errors.New("other")) != "Error" {
		t.Error("plain kind")
	}
	if Kind(nil) != "" {
		t.Error("nil kind")
	}
}
