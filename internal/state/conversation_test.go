package state

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

func TestSaveAndGetConversation(t *testing.T) {
	db := setupTestDB(t)

	s := models.NewConversation("What is my premium?")
	s.Identifiers.Fill(models.KindPolicyNumber, "POL000001")
	s.IterationCount = 2
	s.Pending = &models.PendingQuestion{Question: "Which policy?", MissingInfo: "policy number"}
	s.Flags.AwaitingUserInput = true

	if err := db.SaveConversation(s); err != nil {
		t.Fatalf("SaveConversation failed: %v", err)
	}

	got, err := db.GetConversation(s.ID)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if diff := cmp.Diff(s, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveConversation_Upsert(t *testing.T) {
	db := setupTestDB(t)

	s := models.NewConversation("hello")
	if err := db.SaveConversation(s); err != nil {
		t.Fatalf("SaveConversation failed: %v", err)
	}

	s.Append(models.RoleAssistant, "done")
	s.Flags.ConversationEnded = true
	if err := db.SaveConversation(s); err != nil {
		t.Fatalf("second SaveConversation failed: %v", err)
	}

	list, err := db.ListConversations(nil, 0)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if list[0].Status != models.StatusResolved {
		t.Errorf("status = %q, want %q", list[0].Status, models.StatusResolved)
	}
}

func TestSaveConversation_MissingID(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SaveConversation(&models.ConversationState{}); err == nil {
		t.Error("expected error for conversation without id")
	}
}

func TestGetConversation_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetConversation("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListConversations_FilterAndLimit(t *testing.T) {
	db := setupTestDB(t)

	base := time.Now().Add(-time.Hour)
	for i, q := range []string{"first", "second", "third"} {
		s := models.NewConversation(q)
		s.UpdatedAt = base.Add(time.Duration(i) * time.Minute)
		if i == 1 {
			s.Flags.EscalationRequired = true
		}
		if err := db.SaveConversation(s); err != nil {
			t.Fatalf("SaveConversation failed: %v", err)
		}
	}

	all, err := db.ListConversations(nil, 2)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(all) != 2 || all[0].Question != "third" {
		t.Errorf("unexpected listing: %+v", all)
	}

	escalated := models.StatusEscalated
	only, err := db.ListConversations(&escalated, 0)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(only) != 1 || only[0].Question != "second" {
		t.Errorf("unexpected filtered listing: %+v", only)
	}
}

func TestPurgeOldConversations(t *testing.T) {
	db := setupTestDB(t)

	old := models.NewConversation("old")
	old.UpdatedAt = time.Now().Add(-48 * time.Hour)
	fresh := models.NewConversation("fresh")
	for _, s := range []*models.ConversationState{old, fresh} {
		if err := db.SaveConversation(s); err != nil {
			t.Fatalf("SaveConversation failed: %v", err)
		}
	}

	n, err := db.PurgeOldConversations(24 * time.Hour)
	if err != nil {
		t.Fatalf("PurgeOldConversations failed: %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1", n)
	}
	if _, err := db.GetConversation(fresh.ID); err != nil {
		t.Errorf("fresh conversation was purged: %v", err)
	}
}

func TestRecoveryManager(t *testing.T) {
	db := setupTestDB(t)
	rm := NewRecoveryManager(db)

	stuck := models.NewConversation("stuck")
	stuck.IterationCount = 2
	stuck.UpdatedAt = time.Now().Add(-time.Hour)

	waiting := models.NewConversation("waiting")
	waiting.Flags.AwaitingUserInput = true
	waiting.UpdatedAt = time.Now().Add(-time.Hour)

	done := models.NewConversation("done")
	done.Flags.ConversationEnded = true

	for _, s := range []*models.ConversationState{stuck, waiting, done} {
		if err := db.SaveConversation(s); err != nil {
			t.Fatalf("SaveConversation failed: %v", err)
		}
	}

	found, err := rm.CheckForInterrupted(10 * time.Minute)
	if err != nil {
		t.Fatalf("CheckForInterrupted failed: %v", err)
	}
	if len(found) != 1 || found[0].ConversationID != stuck.ID || found[0].Iteration != 2 {
		t.Fatalf("unexpected interrupted list: %+v", found)
	}

	s, err := rm.Resume(stuck.ID)
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if s.Question != "stuck" {
		t.Errorf("resumed question = %q", s.Question)
	}

	if _, err := rm.Resume(done.ID); err == nil {
		t.Error("expected error resuming a finished conversation")
	}

	if err := rm.Clean(stuck.ID); err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if _, err := db.GetConversation(stuck.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cleaned conversation still present: %v", err)
	}
}
