package uploads

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var (
	pngContent  = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0}, 64)...)
	jpegContent = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0}, 64)...)
)

// fileHeader builds a *multipart.FileHeader the way a parsed request would.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("profile", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("ParseMultipartForm() error = %v", err)
	}
	return req.MultipartForm.File["profile"][0]
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), 1024)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func TestStore_Save(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		wantErr  error
	}{
		{
			name:     "png",
			filename: "me.png",
			content:  pngContent,
			wantErr:  nil,
		},
		{
			name:     "jpeg",
			filename: "me.jpg",
			content:  jpegContent,
			wantErr:  nil,
		},
		{
			name:     "text file rejected by extension",
			filename: "notes.txt",
			content:  []byte("hello"),
			wantErr:  ErrUnsupportedType,
		},
		{
			name:     "text content behind an image extension rejected by sniffing",
			filename: "fake.png",
			content:  []byte("this is plain text pretending to be an image"),
			wantErr:  ErrUnsupportedType,
		},
		{
			name:     "oversized file rejected",
			filename: "big.png",
			content:  append(append([]byte{}, pngContent...), bytes.Repeat([]byte{0}, 2048)...),
			wantErr:  ErrFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			name, err := store.Save(fileHeader(t, tt.filename, tt.content))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Save() error = %v, wantErr %v", err, tt.wantErr)
				}
				// A rejected file never reaches disk
				entries, _ := os.ReadDir(store.Dir())
				if len(entries) != 0 {
					t.Errorf("rejected upload left %d file(s) on disk", len(entries))
				}
				return
			}

			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if !strings.HasPrefix(name, "profile-") {
				t.Errorf("generated name = %q, want profile- prefix", name)
			}
			if filepath.Ext(name) != filepath.Ext(tt.filename) {
				t.Errorf("generated name %q lost the original extension", name)
			}
			data, err := os.ReadFile(filepath.Join(store.Dir(), name))
			if err != nil {
				t.Fatalf("stored file unreadable: %v", err)
			}
			if !bytes.Equal(data, tt.content) {
				t.Error("stored content differs from upload")
			}
		})
	}
}

func TestStore_Save_UniqueNames(t *testing.T) {
	store := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		name, err := store.Save(fileHeader(t, "same.png", pngContent))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if seen[name] {
			t.Fatalf("duplicate generated name %q", name)
		}
		seen[name] = true
	}
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save(fileHeader(t, "me.png", pngContent))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.Remove(name); err != nil {
		t.Errorf("Remove() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), name)); !os.IsNotExist(err) {
		t.Error("file still present after Remove()")
	}

	// Missing files and empty names are fine
	if err := store.Remove(name); err != nil {
		t.Errorf("Remove() on missing file error = %v", err)
	}
	if err := store.Remove(""); err != nil {
		t.Errorf("Remove(\"\") error = %v", err)
	}

	// Path-like names are refused
	if err := store.Remove("../etc/passwd"); err == nil {
		t.Error("Remove() accepted a path-like name")
	}
}

func TestStore_PublicPath(t *testing.T) {
	store := newTestStore(t)

	if got := store.PublicPath("profile-1-abc.png"); got != "/uploads/profile-1-abc.png" {
		t.Errorf("PublicPath() = %q", got)
	}
	if got := store.PublicPath(""); got != "" {
		t.Errorf("PublicPath(\"\") = %q, want empty", got)
	}
}

func TestStore_Sweep(t *testing.T) {
	store := newTestStore(t)

	referenced, err := store.Save(fileHeader(t, "kept.png", pngContent))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	orphanOld, err := store.Save(fileHeader(t, "orphan.png", pngContent))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	orphanFresh, err := store.Save(fileHeader(t, "fresh.png", pngContent))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Age the referenced and old-orphan files past the cutoff
	old := time.Now().Add(-2 * time.Hour)
	for _, name := range []string{referenced, orphanOld} {
		if err := os.Chtimes(filepath.Join(store.Dir(), name), old, old); err != nil {
			t.Fatalf("Chtimes() error = %v", err)
		}
	}

	removed, err := store.Sweep(time.Hour, map[string]bool{referenced: true})
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Sweep() removed = %d, want 1", removed)
	}

	for name, wantPresent := range map[string]bool{
		referenced:  true,  // referenced, old
		orphanOld:   false, // orphaned, old
		orphanFresh: true,  // orphaned but under min age
	} {
		_, err := os.Stat(filepath.Join(store.Dir(), name))
		if present := err == nil; present != wantPresent {
			t.Errorf("%s present = %v, want %v", name, present, wantPresent)
		}
	}
}
