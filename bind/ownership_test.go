package bind

import "testing"

func TestDefaultOwnership(t *testing.T) {
	tests := []struct {
		form ValueForm
		want Ownership
	}{
		{FormValue, ValueCopy},
		{FormPointer, Borrowed},
		{FormReference, Borrowed},
	}
	for _, tt := range tests {
		if got := DefaultOwnership(tt.form); got != tt.want {
			t.Errorf("DefaultOwnership(%s) = %s, want %s", tt.form, got, tt.want)
		}
	}
}

func TestResolveOwnership(t *testing.T) {
	explicit := &Class{Ownership: Owned}
	if got := ResolveOwnership(explicit, ValueCopy); got != Owned {
		t.Errorf("explicit mode overridden: %s", got)
	}

	ptrCtx := &Class{ptrReceiver: true}
	if got := ResolveOwnership(ptrCtx, ValueCopy); got != Borrowed {
		t.Errorf("pointer context: %s", got)
	}

	plain := &Class{}
	if got := ResolveOwnership(plain, ValueCopy); got != ValueCopy {
		t.Errorf("fallback: %s", got)
	}
	if got := ResolveOwnership(plain, Borrowed); got != Borrowed {
		t.Errorf("configured fallback: %s", got)
	}
	if got := ResolveOwnership(plain, OwnershipUnresolved); got != ValueCopy {
		t.Errorf("unset fallback should use the documented default: %s", got)
	}
}
