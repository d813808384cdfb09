package thread

import (
	"context"
	"errors"
	"testing"

	"ouvidoria.app/internal/auth"
)

func individual(id string) auth.Principal {
	return auth.Individual{Profile: auth.Profile{ID: id, Email: id + "@example.com", Name: id}}
}

func orgMember(id, competenciaID string) auth.Principal {
	return auth.OrganizationMember{
		Profile:       auth.Profile{ID: id, Email: id + "@example.com", Name: id},
		CompetenciaID: competenciaID,
	}
}

func newTestService(t *testing.T) (*Service, *InMemoryStore, *InMemoryMessageStore) {
	t.Helper()
	threads := NewInMemoryStore()
	messages := NewInMemoryMessageStore()
	return NewService(threads, messages), threads, messages
}

func TestCreateStartsOpen(t *testing.T) {
	svc, _, _ := newTestService(t)

	created, err := svc.Create(context.Background(), individual("u1"), "Buraco na rua", "comp-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != StatusAberto {
		t.Fatalf("initial status = %s, want %s", created.Status, StatusAberto)
	}
	if created.UserID != "u1" || created.CompetenciaID != "comp-1" {
		t.Fatalf("ownership not recorded: %+v", created)
	}
}

func TestCreateForbiddenForOrganizationAccounts(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Create(context.Background(), orgMember("a1", "comp-1"), "Titulo", "comp-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}

func TestListIsScopedByRole(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	t1, _ := svc.Create(ctx, individual("u1"), "Buraco", "comp-1")
	t2, _ := svc.Create(ctx, individual("u2"), "Lixo", "comp-1")
	t3, _ := svc.Create(ctx, individual("u1"), "Poste", "comp-2")

	mine, err := svc.List(ctx, individual("u1"), "")
	if err != nil {
		t.Fatalf("List as individual: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("individual sees %d threads, want 2", len(mine))
	}
	for _, th := range mine {
		if th.ID != t1.ID && th.ID != t3.ID {
			t.Fatalf("individual sees foreign thread %s", th.ID)
		}
	}

	orgView, err := svc.List(ctx, orgMember("a1", "comp-1"), "")
	if err != nil {
		t.Fatalf("List as organization: %v", err)
	}
	if len(orgView) != 2 {
		t.Fatalf("organization sees %d threads, want 2", len(orgView))
	}
	for _, th := range orgView {
		if th.ID != t1.ID && th.ID != t2.ID {
			t.Fatalf("organization sees foreign thread %s", th.ID)
		}
	}

	filtered, err := svc.List(ctx, individual("u1"), "Poste")
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != t3.ID {
		t.Fatalf("title filter broken: %+v", filtered)
	}
}

func TestUpdateRoleMatrix(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, _ := svc.Create(ctx, individual("u1"), "Buraco", "comp-1")

	// Organization member of the right competência can change the status.
	status := StatusEmAndamento
	updated, err := svc.Update(ctx, orgMember("a1", "comp-1"), created.ID, Update{Status: &status})
	if err != nil {
		t.Fatalf("org status update: %v", err)
	}
	if updated.Status != StatusEmAndamento {
		t.Fatalf("status not applied: %s", updated.Status)
	}

	// Wrong competência cannot even see the thread.
	if _, err := svc.Update(ctx, orgMember("a2", "comp-2"), created.ID, Update{Status: &status}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign org: want ErrNotFound, got %v", err)
	}

	// Organization members cannot retitle.
	title := "Novo titulo"
	if _, err := svc.Update(ctx, orgMember("a1", "comp-1"), created.ID, Update{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("org retitle: want ErrForbidden, got %v", err)
	}

	// The author can retitle and reassign but not change status.
	newOrg := "comp-2"
	updated, err = svc.Update(ctx, individual("u1"), created.ID, Update{Title: &title, CompetenciaID: &newOrg})
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if updated.Title != title || updated.CompetenciaID != newOrg {
		t.Fatalf("author update not applied: %+v", updated)
	}
	if _, err := svc.Update(ctx, individual("u1"), created.ID, Update{Status: &status}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("author status change: want ErrForbidden, got %v", err)
	}

	// Non-author individuals are rejected.
	if _, err := svc.Update(ctx, individual("u2"), created.ID, Update{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-author: want ErrForbidden, got %v", err)
	}

	// comp-2 owns the thread after the reassignment above.
	bad := Status("fechado")
	if _, err := svc.Update(ctx, orgMember("a2", "comp-2"), created.ID, Update{Status: &bad}); err == nil {
		t.Fatal("invalid status accepted")
	}
}

func TestDeleteAuthorOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, _ := svc.Create(ctx, individual("u1"), "Buraco", "comp-1")

	if err := svc.Delete(ctx, individual("u2"), created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-author delete: want ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, individual("u1"), created.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted thread still visible: %v", err)
	}
	if err := svc.Delete(ctx, individual("u1"), created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: want ErrNotFound, got %v", err)
	}
}

func TestMessagesNotFoundWhenEmpty(t *testing.T) {
	svc, _, messages := newTestService(t)
	ctx := context.Background()

	created, _ := svc.Create(ctx, individual("u1"), "Buraco", "comp-1")

	if _, err := svc.Messages(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty history: want ErrNotFound, got %v", err)
	}

	_ = messages.Create(ctx, &Message{ThreadID: created.ID, UserID: "u1", Text: "oi"})
	msgs, err := svc.Messages(ctx, created.ID)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Text != "oi" {
		t.Fatalf("unexpected history: %+v", msgs)
	}

	// History (the socket replay path) tolerates an empty set.
	th, hist, err := svc.History(ctx, created.ID)
	if err != nil || th.ID != created.ID || len(hist) != 1 {
		t.Fatalf("History: %v %v %d", err, th, len(hist))
	}
}
