package repositories

import (
	"context"
	"testing"

	"github.com/medisetu/medisetu_backend/wizard"
)

func TestMemoryDraftStoreRoundTrip(t *testing.T) {
	store := NewMemoryDraftStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "sess-1", wizard.RoleDoctor); err != ErrDraftNotFound {
		t.Errorf("Get on empty store = %v, want ErrDraftNotFound", err)
	}

	d := wizard.NewDraft("sess-1", wizard.RoleDoctor)
	s := wizard.SchemaFor(wizard.RoleDoctor)
	d.Apply(s, wizard.Mutation{Field: "firstName", Value: "Asha"})
	if err := store.Save(ctx, d); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Get(ctx, "sess-1", wizard.RoleDoctor)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.GetString("firstName") != "Asha" {
		t.Errorf("firstName = %q, want Asha", got.GetString("firstName"))
	}

	// Drafts are keyed per role, so the same session can run two wizards.
	if _, err := store.Get(ctx, "sess-1", wizard.RoleNurse); err != ErrDraftNotFound {
		t.Errorf("Get for other role = %v, want ErrDraftNotFound", err)
	}

	if err := store.Delete(ctx, "sess-1", wizard.RoleDoctor); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "sess-1", wizard.RoleDoctor); err != ErrDraftNotFound {
		t.Errorf("Get after delete = %v, want ErrDraftNotFound", err)
	}
}
