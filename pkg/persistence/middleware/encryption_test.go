package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/scrumhand/scrumhand/pkg/adapters/memory"
	"github.com/scrumhand/scrumhand/pkg/domain"
	"github.com/scrumhand/scrumhand/pkg/persistence/middleware"
	"github.com/scrumhand/scrumhand/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	key := generateKey(t)
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	sessionID := "test-session"
	originalState := domain.NewState(10)
	originalState.Append(domain.NewUserMessage("the sprint goal is confidential"))

	if err := secureStore.Save(ctx, sessionID, originalState); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The underlying store must hold only the opaque envelope.
	storedState, err := underlyingStore.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if len(storedState.Messages) != 1 {
		t.Fatalf("Expected single envelope message, got %d", len(storedState.Messages))
	}
	if storedState.Messages[0].Content == "the sprint goal is confidential" {
		t.Fatal("Transcript reached the backing store in clear")
	}

	// Loading through the middleware restores the real transcript.
	loadedState, err := secureStore.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if len(loadedState.Messages) != 1 || loadedState.Messages[0].Content != "the sprint goal is confidential" {
		t.Errorf("Decrypted state mismatch: %+v", loadedState.Messages)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	// Save with the old key.
	mwOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})
	stateToSave := domain.NewState(10)
	stateToSave.Append(domain.NewUserMessage("rotate me"))
	if err := mwOld(underlyingStore).Save(ctx, "rotated", stateToSave); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load with the new key active and the old key as fallback.
	mwNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	loaded, err := mwNew(underlyingStore).Load(ctx, "rotated")
	if err != nil {
		t.Fatalf("Load with rotated keys failed: %v", err)
	}
	if loaded.Messages[0].Content != "rotate me" {
		t.Errorf("Unexpected content: %q", loaded.Messages[0].Content)
	}

	// Without the fallback, decryption must fail rather than return garbage.
	mwMissing := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})
	if _, err := mwMissing(underlyingStore).Load(ctx, "rotated"); err == nil {
		t.Fatal("Expected decryption failure without fallback key")
	}
}

func TestEncryptionMiddleware_FailsSecureOnPlainState(t *testing.T) {
	underlyingStore := memory.NewStore()
	ctx := context.Background()

	plain := domain.NewState(10)
	plain.Append(domain.NewUserMessage("not encrypted"))
	if err := underlyingStore.Save(ctx, "plain", plain); err != nil {
		t.Fatal(err)
	}

	var secureStore ports.StateStore = middleware.NewEncryptionMiddleware(
		middleware.EncryptionConfig{ActiveKey: generateKey(t)},
	)(underlyingStore)

	if _, err := secureStore.Load(ctx, "plain"); err == nil {
		t.Fatal("Expected error loading non-envelope state through encryption middleware")
	}
}

func TestChain(t *testing.T) {
	store := memory.NewStore()
	chained := middleware.Chain(store,
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)

	ctx := context.Background()
	if err := chained.Save(ctx, "chained", domain.NewState(3)); err != nil {
		t.Fatal(err)
	}
	loaded, err := chained.Load(ctx, "chained")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.RemainingSteps != 3 {
		t.Errorf("Expected 3 remaining steps, got %d", loaded.RemainingSteps)
	}
}
