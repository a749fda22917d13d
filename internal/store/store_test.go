package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_New_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/test.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_New_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := New(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.SaveToMemory(ctx, "Save", "en", "fr", "Enregistrer", "google"); err != nil {
		t.Fatalf("SaveToMemory failed: %v", err)
	}
	s.Close()

	s, err = New(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	got, ok, err := s.GetCachedTranslation(ctx, "Save", "en", "fr")
	if err != nil || !ok || got != "Enregistrer" {
		t.Errorf("got (%q, %v, %v) after reopen", got, ok, err)
	}
}

func TestStore_GetCachedTranslation_Miss(t *testing.T) {
	s := newTestStore(t)

	text, found, err := s.GetCachedTranslation(context.Background(), "Hello", "en", "uk")
	if err != nil {
		t.Errorf("GetCachedTranslation failed: %v", err)
	}
	if found {
		t.Error("expected cache miss")
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestStore_GetCachedTranslation_Hit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveToMemory(ctx, "  File {0} not found ", "en", "fr", "Fichier {0} introuvable", "ollama"); err != nil {
		t.Fatalf("SaveToMemory failed: %v", err)
	}

	text, found, err := s.GetCachedTranslation(ctx, "File {0} not found", "en", "fr")
	if err != nil {
		t.Fatalf("GetCachedTranslation failed: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit")
	}
	if text != "Fichier {0} introuvable" {
		t.Errorf("expected %q, got %q", "Fichier {0} introuvable", text)
	}

	if _, found, _ := s.GetCachedTranslation(ctx, "File {0} not found", "en", "de"); found {
		t.Error("expected miss for another target language")
	}

	entries, err := s.ListMemory(ctx)
	if err != nil {
		t.Fatalf("ListMemory failed: %v", err)
	}
	if len(entries) != 1 || entries[0].UsageCount != 2 {
		t.Errorf("expected one entry used twice, got %+v", entries)
	}
}

func TestStore_SaveToMemory_Upsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveToMemory(ctx, "Open", "en", "fr", "Ouvre", "mymemory"); err != nil {
		t.Fatal(err)
	}
	entries, _ := s.ListMemory(ctx)
	id := entries[0].ID
	if err := s.InvalidateMemory(ctx, id); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveToMemory(ctx, "Open", "en", "fr", "Ouvrir", "google"); err != nil {
		t.Fatal(err)
	}

	entries, _ = s.ListMemory(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.ID != id || e.Translation != "Ouvrir" || e.Provider != "google" || e.Invalidated {
		t.Errorf("unexpected entry after upsert: %+v", e)
	}
}

func TestStore_GetCachedTranslation_Invalidated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveToMemory(ctx, "Hello", "en", "uk", "Привіт", "google"); err != nil {
		t.Fatal(err)
	}
	entries, err := s.ListMemory(ctx)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ListMemory: %v, %d entries", err, len(entries))
	}

	if err := s.InvalidateMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("InvalidateMemory failed: %v", err)
	}
	if _, found, _ := s.GetCachedTranslation(ctx, "Hello", "en", "uk"); found {
		t.Error("expected invalidated entry to miss")
	}

	if err := s.InvalidateMemory(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.SaveToMemory(ctx, "One", "en", "fr", "Un", "google")
	_ = s.SaveToMemory(ctx, "Two", "en", "fr", "Deux", "google")
	_, _, _ = s.GetCachedTranslation(ctx, "One", "en", "fr")

	entries, _ := s.ListMemory(ctx)
	for _, e := range entries {
		if e.SourceText == "Two" {
			_ = s.InvalidateMemory(ctx, e.ID)
		}
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	want := CacheStats{TotalEntries: 2, ActiveEntries: 1, InvalidEntries: 1, TotalUsage: 3}
	if *stats != want {
		t.Errorf("expected %+v, got %+v", want, *stats)
	}
}

func TestStore_DeleteMemory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.SaveToMemory(ctx, "Hello", "en", "fr", "Bonjour", "google")
	entries, _ := s.ListMemory(ctx)

	if err := s.DeleteMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("DeleteMemory failed: %v", err)
	}
	entries, _ = s.ListMemory(ctx)
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
	if err := s.DeleteMemory(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ClearMemory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, src := range []string{"A", "B", "C"} {
		_ = s.SaveToMemory(ctx, src, "en", "de", src+"!", "google")
	}

	n, err := s.ClearMemory(ctx)
	if err != nil {
		t.Fatalf("ClearMemory failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows removed, got %d", n)
	}
}

func TestStore_ListMemory_Order(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	_ = s.SaveToMemory(ctx, "Older", "en", "fr", "Ancien", "google")
	s.now = func() time.Time { return base.Add(time.Hour) }
	_ = s.SaveToMemory(ctx, "Newer", "en", "fr", "Récent", "google")

	entries, err := s.ListMemory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].SourceText != "Newer" {
		t.Errorf("expected most recent first, got %+v", entries)
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"  hello  ", "hello"},
		{"é", "é"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeText(tt.input); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"Привіт", "Привет", 1},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestStore_FuzzyGetCachedTranslation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.SaveToMemory(ctx, "Save the file", "en", "fr", "Enregistrer le fichier", "google")
	_ = s.SaveToMemory(ctx, "Delete everything", "en", "fr", "Tout supprimer", "google")

	got, ok, err := s.FuzzyGetCachedTranslation(ctx, "Save the files", "en", "fr", 0.9)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got != "Enregistrer le fichier" {
		t.Errorf("expected fuzzy hit, got (%q, %v)", got, ok)
	}

	if _, ok, _ := s.FuzzyGetCachedTranslation(ctx, "Open a window", "en", "fr", 0.9); ok {
		t.Error("expected no match for unrelated text")
	}
	if _, ok, _ := s.FuzzyGetCachedTranslation(ctx, "Save the file", "en", "fr", 0); ok {
		t.Error("zero threshold must disable fuzzy lookup")
	}
}

func TestStore_Glossary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddGlossaryTerm(ctx, "en", "de", "file", "Datei"); err != nil {
		t.Fatalf("AddGlossaryTerm failed: %v", err)
	}
	_ = s.AddGlossaryTerm(ctx, "en", "de", "file", "Akte")
	_ = s.AddGlossaryTerm(ctx, "en", "fr", "file", "fichier")

	terms, err := s.GetGlossaryTerms(ctx, "en", "de")
	if err != nil {
		t.Fatal(err)
	}
	if len(terms) != 1 || terms["file"] != "Akte" {
		t.Errorf("unexpected terms %v", terms)
	}

	all, err := s.ListGlossaryTerms(ctx, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
	fr, _ := s.ListGlossaryTerms(ctx, "", "fr")
	if len(fr) != 1 || fr[0].TargetTerm != "fichier" {
		t.Errorf("unexpected fr entries %+v", fr)
	}

	if err := s.DeleteGlossaryTerm(ctx, fr[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteGlossaryTerm(ctx, fr[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStore_LogTranslation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entries := []LogEntry{
		{RunID: "run-1", Key: "Greeting", TargetLang: "fr", SourceText: "Hello {0}", Translation: "Bonjour {0}", Provider: "google", Status: LogAccepted},
		{RunID: "run-1", Key: "Farewell", TargetLang: "fr", SourceText: "Bye {0}", Translation: "Au revoir", Provider: "google", Status: LogRejected, Detail: "missing {0}"},
		{RunID: "run-2", Key: "Greeting", TargetLang: "de", SourceText: "Hello {0}", Status: LogFailed, Detail: "timeout"},
	}
	for _, e := range entries {
		if err := s.LogTranslation(ctx, e); err != nil {
			t.Fatalf("LogTranslation failed: %v", err)
		}
	}

	run1, err := s.ListLog(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(run1) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(run1))
	}
	if run1[0].Key != "Greeting" || run1[1].Status != LogRejected || run1[1].Detail != "missing {0}" {
		t.Errorf("unexpected log %+v", run1)
	}
	if run1[0].ID == "" || run1[0].CreatedAt.IsZero() {
		t.Error("expected generated id and timestamp")
	}

	all, _ := s.ListLog(ctx, "")
	if len(all) != 3 {
		t.Errorf("expected 3 entries, got %d", len(all))
	}
}
