package pending

import (
	"sync"
	"testing"
	"time"

	"github.com/kazuph/slack-bridge/internal/models"
)

func TestRegisterDuplicate(t *testing.T) {
	table := NewTable()
	if err := table.Register("q1", &Entry{}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if err := table.Register("q1", &Entry{}); err == nil {
		t.Fatal("expected error on duplicate register, got nil")
	}
}

func TestResolveDeliversAnswer(t *testing.T) {
	table := NewTable()
	entry := &Entry{}
	if err := table.Register("q1", entry); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	want := models.Answer{Answer: "Yes", OptionIndex: 0, Timestamp: 42}
	if _, ok := table.Resolve("q1", want); !ok {
		t.Fatal("resolve reported not found for pending entry")
	}

	select {
	case got := <-entry.Wait():
		if got.Answer != want.Answer || got.OptionIndex != want.OptionIndex {
			t.Errorf("got %+v, want %+v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("no answer delivered on waiter channel")
	}

	if table.Size() != 0 {
		t.Errorf("entry not removed, size = %d", table.Size())
	}
}

func TestResolveAfterExpireFails(t *testing.T) {
	table := NewTable()
	entry := &Entry{}
	if err := table.Register("q1", entry); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, ok := table.Expire("q1"); !ok {
		t.Fatal("expire reported not found for pending entry")
	}
	if _, ok := table.Resolve("q1", models.Answer{Answer: "late"}); ok {
		t.Fatal("resolve succeeded after expire")
	}

	got := <-entry.Wait()
	if !got.Timeout() {
		t.Errorf("waiter received %+v, want timeout answer", got)
	}
	if got.OptionIndex != -1 {
		t.Errorf("timeout optionIndex = %d, want -1", got.OptionIndex)
	}
}

func TestExpireAfterResolveFails(t *testing.T) {
	table := NewTable()
	entry := &Entry{}
	if err := table.Register("q1", entry); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, ok := table.Resolve("q1", models.Answer{Answer: "Yes"}); !ok {
		t.Fatal("resolve reported not found")
	}
	if _, ok := table.Expire("q1"); ok {
		t.Fatal("expire succeeded after resolve")
	}

	if got := <-entry.Wait(); got.Timeout() {
		t.Errorf("waiter received timeout, want the real answer")
	}
}

func TestConcurrentResolveExpireSingleWinner(t *testing.T) {
	for i := 0; i < 100; i++ {
		table := NewTable()
		entry := &Entry{}
		if err := table.Register("q1", entry); err != nil {
			t.Fatalf("register failed: %v", err)
		}

		var wg sync.WaitGroup
		var resolveWon, expireWon bool
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, resolveWon = table.Resolve("q1", models.Answer{Answer: "Yes"})
		}()
		go func() {
			defer wg.Done()
			_, expireWon = table.Expire("q1")
		}()
		wg.Wait()

		if resolveWon == expireWon {
			t.Fatalf("resolveWon=%v expireWon=%v, want exactly one winner", resolveWon, expireWon)
		}
		// Exactly one answer was buffered either way.
		answer := <-entry.Wait()
		if resolveWon && answer.Timeout() {
			t.Fatal("resolve won but waiter received the timeout answer")
		}
		if expireWon && !answer.Timeout() {
			t.Fatal("expire won but waiter received the real answer")
		}
	}
}

func TestTmuxModeHasNoWaiter(t *testing.T) {
	table := NewTable()
	entry := &Entry{Mode: ModeTmux, PaneID: "%3"}
	if err := table.Register("q1", entry); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if entry.Wait() != nil {
		t.Fatal("tmux-mode entry has a waiter channel")
	}
	// Resolving must not block or panic without a waiter.
	if _, ok := table.Resolve("q1", models.Answer{Answer: "Yes"}); !ok {
		t.Fatal("resolve reported not found")
	}
}

func TestLookupDoesNotTransition(t *testing.T) {
	table := NewTable()
	if err := table.Register("q1", &Entry{MessageTS: "123.456"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	got, ok := table.Lookup("q1")
	if !ok {
		t.Fatal("lookup missed pending entry")
	}
	if got.MessageTS != "123.456" {
		t.Errorf("MessageTS = %q, want %q", got.MessageTS, "123.456")
	}
	if _, ok := table.Resolve("q1", models.Answer{}); !ok {
		t.Fatal("entry no longer pending after lookup")
	}
}
