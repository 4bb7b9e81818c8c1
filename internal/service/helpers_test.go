package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/nostella/nostella/internal/service"
	"github.com/nostella/nostella/internal/storage"
	"github.com/nostella/nostella/internal/store/drivers/sqlite"
	"github.com/nostella/nostella/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testIssuer = "nostella-test"

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newSigner(t *testing.T) *jwtx.HS256 {
	t.Helper()

	signer, err := jwtx.NewHS256(testSecret, testIssuer)
	require.NoError(t, err)
	return signer
}

type sentMail struct {
	Email string
	Code  string
}

// fakeMailer records every send and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, sentMail{Email: email, Code: code})
	return nil
}

func (m *fakeMailer) IsEnabled() bool { return true }

func (m *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

// fakeObjects is an in-memory ObjectStore.
type fakeObjects struct {
	mu      sync.Mutex
	n       int
	objects map[string][]byte
	failPut bool
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (f *fakeObjects) Put(_ context.Context, _ string, body io.Reader) (storage.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut {
		return storage.UploadResult{}, errors.New("storage: unavailable")
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return storage.UploadResult{}, err
	}

	f.n++
	key := fmt.Sprintf("memories/test/%d", f.n)
	f.objects[key] = data
	return storage.UploadResult{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (f *fakeObjects) PresignGet(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[key]; !ok {
		return "", errors.New("storage: no such key")
	}
	return "https://signed.test/" + key, nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeObjects) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

// fakeGenerator returns a canned story.
type fakeGenerator struct {
	story string
	err   error
}

func (g *fakeGenerator) GenerateStory(_ context.Context, prompt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if g.story != "" {
		return g.story, nil
	}
	return "A story about: " + prompt, nil
}

func newAuthService(st *sqlite.Store, mailer *fakeMailer, signer *jwtx.HS256) *service.AuthService {
	return &service.AuthService{
		Store:    st,
		Mailer:   mailer,
		Signer:   signer,
		Issuer:   testIssuer,
		HashCost: bcrypt.MinCost,
	}
}
