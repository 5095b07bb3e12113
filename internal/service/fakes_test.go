package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/sakif/sageexcel/internal/apperror"
	"github.com/sakif/sageexcel/internal/auth"
	"github.com/sakif/sageexcel/internal/model"
	"github.com/sakif/sageexcel/internal/summary"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// memStore is an in-memory implementation of every repository interface.
// Back-references are derived on read, the same way the sqlite store does.
type memStore struct {
	users    map[string]*model.User
	files    map[string]*model.File
	analyses map[string]*model.Analysis
	blobs    map[string][]byte
	nextID   int
	clock    time.Time

	// set to simulate storage failures
	createFileErr error
	blobPutErr    error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*model.User),
		files:    make(map[string]*model.File),
		analyses: make(map[string]*model.Analysis),
		blobs:    make(map[string][]byte),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

// --- users ---

func (m *memStore) CreateUser(ctx context.Context, u *model.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperror.DuplicateEmail(u.Email)
		}
	}
	u.ID = m.id("user")
	u.CreatedAt = m.tick()
	u.UpdatedAt = u.CreatedAt
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *memStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	copied.UploadedFiles = []string{}
	copied.SavedAnalyses = []string{}
	for _, f := range m.sortedFiles() {
		if f.UploadedBy == id {
			copied.UploadedFiles = append(copied.UploadedFiles, f.ID)
		}
	}
	for _, a := range m.sortedAnalyses() {
		if a.UserID == id {
			copied.SavedAnalyses = append(copied.SavedAnalyses, a.ID)
		}
	}
	return &copied, nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return m.GetUserByID(ctx, u.ID)
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *memStore) UpdatePassword(ctx context.Context, id, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.PasswordHash = hash
	return nil
}

func (m *memStore) ListUserSummaries(ctx context.Context) ([]model.UserSummary, error) {
	var out []model.UserSummary
	for id := range m.users {
		u, _ := m.GetUserByID(ctx, id)
		out = append(out, model.UserSummary{
			ID: u.ID, Name: u.Name, IsAdmin: u.IsAdmin,
			FilesUploaded: len(u.UploadedFiles), AnalysesMade: len(u.SavedAnalyses),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- files ---

func (m *memStore) sortedFiles() []*model.File {
	var out []*model.File
	for _, f := range m.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadDate.Before(out[j].UploadDate) })
	return out
}

func (m *memStore) CreateFile(ctx context.Context, f *model.File) error {
	if m.createFileErr != nil {
		return m.createFileErr
	}
	if _, ok := m.users[f.UploadedBy]; !ok {
		return errors.New("FOREIGN KEY constraint failed")
	}
	if f.ID == "" {
		f.ID = m.id("file")
	}
	f.UploadDate = m.tick()
	copied := *f
	copied.Data = nil
	m.files[f.ID] = &copied
	return nil
}

func (m *memStore) GetFile(ctx context.Context, id string) (*model.File, error) {
	f, ok := m.files[id]
	if !ok {
		return nil, apperror.NotFound("file", id)
	}
	copied := *f
	copied.Analyses = []string{}
	for _, a := range m.sortedAnalyses() {
		if a.FileID == id {
			copied.Analyses = append(copied.Analyses, a.ID)
		}
	}
	return &copied, nil
}

func (m *memStore) ListFilesByUser(ctx context.Context, userID string) ([]model.File, error) {
	out := []model.File{}
	for _, f := range m.sortedFiles() {
		if f.UploadedBy == userID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *memStore) DeleteFile(ctx context.Context, id string) error {
	if _, ok := m.files[id]; !ok {
		return apperror.NotFound("file", id)
	}
	for aid, a := range m.analyses {
		if a.FileID == id {
			delete(m.analyses, aid)
		}
	}
	delete(m.files, id)
	return nil
}

// --- analyses ---

func (m *memStore) sortedAnalyses() []*model.Analysis {
	var out []*model.Analysis
	for _, a := range m.analyses {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *memStore) CreateAnalysis(ctx context.Context, a *model.Analysis) error {
	if _, ok := m.files[a.FileID]; !ok {
		return apperror.NotFound("file", a.FileID)
	}
	a.ID = m.id("analysis")
	a.CreatedAt = m.tick()
	copied := *a
	m.analyses[a.ID] = &copied
	return nil
}

func (m *memStore) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	a, ok := m.analyses[id]
	if !ok {
		return nil, apperror.NotFound("analysis", id)
	}
	copied := *a
	return &copied, nil
}

func (m *memStore) ListAnalysesByUser(ctx context.Context, userID string) ([]model.Analysis, error) {
	out := []model.Analysis{}
	all := m.sortedAnalyses()
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].UserID == userID {
			out = append(out, *all[i])
		}
	}
	return out, nil
}

func (m *memStore) DeleteAnalysis(ctx context.Context, id string) error {
	if _, ok := m.analyses[id]; !ok {
		return apperror.NotFound("analysis", id)
	}
	delete(m.analyses, id)
	return nil
}

// --- blobs ---

func (m *memStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	if m.blobPutErr != nil {
		return m.blobPutErr
	}
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, ok := m.blobs[key]
	if !ok {
		return nil, apperror.NotFound("blob", key)
	}
	return b, nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	delete(m.blobs, key)
	return nil
}

// fakeSummarizer records the request and returns a canned answer.
type fakeSummarizer struct {
	got summary.Request
	res *summary.Result
	err error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, req summary.Request) (*summary.Result, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// services bundles every service over one memStore.
type services struct {
	store     *memStore
	tokens    *auth.TokenService
	auth      *AuthService
	files     *FileService
	analyses  *AnalysisService
	dashboard *DashboardService
	charts    *ChartService
}

func newTestServices(t *testing.T) *services {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	// Cost 4 is the bcrypt minimum and keeps tests fast.
	passwords := auth.NewPasswordServiceForTest(4)

	store := newMemStore()
	logger := quietLogger()
	files := NewFileService(store, store, store, logger)
	analyses := NewAnalysisService(store, store, logger)

	return &services{
		store:     store,
		tokens:    tokens,
		auth:      NewAuthService(store, tokens, passwords, logger),
		files:     files,
		analyses:  analyses,
		dashboard: NewDashboardService(store, store, store, logger),
		charts:    NewChartService(files, analyses, logger),
	}
}

func (s *services) register(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := s.auth.Register(context.Background(), RegisterInput{Name: "User " + email, Email: email, Password: "Passw0rd!"})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", email, err)
	}
	return u
}

const salesCSV = "region,amount\nA,10\nB,5\nA,15\n"

func (s *services) upload(t *testing.T, userID string) *model.File {
	t.Helper()
	f, err := s.files.Upload(context.Background(), userID, UploadInput{
		Filename: "sales.csv", ContentType: "text/csv", Data: []byte(salesCSV),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	return f
}
