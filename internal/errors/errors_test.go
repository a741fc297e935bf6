package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	e := NewPlanningError(CodeUnresolvedColumn, "column x not found")
	want := "[PLANNING:UNRESOLVED_COLUMN] column x not found"
	if e.Error() != want {
		t.Errorf("got %q, want %q", e.Error(), want)
	}

	wrapped := NewCatalogError(CodeListFailed, "listing table t1", fmt.Errorf("io timeout"))
	if wrapped.Error() != "[CATALOG:LIST_FAILED] listing table t1: io timeout" {
		t.Errorf("unexpected formatting: %q", wrapped.Error())
	}
}

func TestUnwrapAndIs(t *testing.T) {
	cause := fmt.Errorf("disk full")
	e := NewStorageError(CodeDownloadFailed, "fetching index sidecar", cause)

	if !errors.Is(e, cause) {
		t.Errorf("expected Is to find the cause")
	}
	if !errors.Is(e, NewStorageError(CodeDownloadFailed, "other message", nil)) {
		t.Errorf("Is must match on category and code, not message")
	}
	if errors.Is(e, NewStorageError(CodeObjectNotFound, "fetching index sidecar", nil)) {
		t.Errorf("Is must not match a different code")
	}
}

func TestCategoryAndCodeExtraction(t *testing.T) {
	e := NewIndexError(CodeMetaCorrupt, "bad sidecar", nil)
	outer := fmt.Errorf("planning table t1: %w", e)

	if GetCategory(outer) != ErrCategoryIndex {
		t.Errorf("expected INDEX category, got %s", GetCategory(outer))
	}
	if GetCode(outer) != CodeMetaCorrupt {
		t.Errorf("expected %s, got %s", CodeMetaCorrupt, GetCode(outer))
	}

	if GetCategory(fmt.Errorf("plain")) != "" {
		t.Errorf("expected empty category for plain error")
	}
}
