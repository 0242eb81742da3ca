package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"
	"testing"
	"time"

	"github.com/aretw0/triage/pkg/adapters/memory"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/persistence/middleware"
	"github.com/aretw0/triage/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secure(t *testing.T, inner ports.SessionStore, cfg middleware.EncryptionConfig) ports.SessionStore {
	t.Helper()
	mw, err := middleware.NewEncryption(cfg)
	require.NoError(t, err)
	return middleware.Chain(inner, mw)
}

func TestEncryption_Contract(t *testing.T) {
	store := secure(t, memory.NewSessionStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunSessionStoreContract(t, store)
}

func TestEncryption_Roundtrip(t *testing.T) {
	inner := memory.NewSessionStore()
	store := secure(t, inner, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	s := domain.NewSession("s1", time.Now())
	s.Language = "pt-BR"
	s.CurrentQuestion = 3
	s.Answers[1] = "Maria Silva"
	s.Answers[2] = "1980-01-01"
	require.NoError(t, store.Save(ctx, s))

	raw, err := inner.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, raw.Answers, "answers must not reach the inner store in clear")
	assert.NotEmpty(t, raw.Sealed)
	assert.Equal(t, "pt-BR", raw.Language, "routing metadata stays visible")
	assert.Equal(t, 3, raw.CurrentQuestion)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", loaded.Answers[1])
	assert.Equal(t, "1980-01-01", loaded.Answers[2])
	assert.Empty(t, loaded.Sealed)

	assert.Equal(t, "Maria Silva", s.Answers[1], "caller's session is untouched")
}

func TestEncryption_KeyRotation(t *testing.T) {
	inner := memory.NewSessionStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	s := domain.NewSession("rot", time.Now())
	s.Answers[1] = "secret"
	require.NoError(t, secure(t, inner, middleware.EncryptionConfig{ActiveKey: oldKey}).Save(ctx, s))

	rotated := secure(t, inner, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := rotated.Load(ctx, "rot")
	require.NoError(t, err)
	assert.Equal(t, "secret", loaded.Answers[1])

	// Without the fallback the old payload is unreadable.
	_, err = secure(t, inner, middleware.EncryptionConfig{ActiveKey: newKey}).Load(ctx, "rot")
	assert.Error(t, err)
}

func TestEncryption_SealBoundToSession(t *testing.T) {
	inner := memory.NewSessionStore()
	store := secure(t, inner, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	a := domain.NewSession("a", time.Now())
	a.Answers[1] = "Alice"
	require.NoError(t, store.Save(ctx, a))
	require.NoError(t, store.Save(ctx, domain.NewSession("b", time.Now())))

	rawA, err := inner.Load(ctx, "a")
	require.NoError(t, err)
	rawB, err := inner.Load(ctx, "b")
	require.NoError(t, err)
	rawB.Sealed = rawA.Sealed
	require.NoError(t, inner.Save(ctx, rawB))

	_, err = store.Load(ctx, "b")
	assert.Error(t, err, "a payload moved to another session must not open")
}

func TestEncryption_PlainSessionRejected(t *testing.T) {
	inner := memory.NewSessionStore()
	ctx := context.Background()
	require.NoError(t, inner.Save(ctx, domain.NewSession("plain", time.Now())))

	store := secure(t, inner, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrMissingEnvelope)
}

func TestNewEncryption_KeyLength(t *testing.T) {
	_, err := middleware.NewEncryption(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)

	_, err = middleware.NewEncryption(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)

	fromHex, err := middleware.ParseKey(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, fromHex)

	fromB64, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, fromB64)

	_, err = middleware.ParseKey("not-a-key")
	assert.Error(t, err)
}
