package ic

import (
	"os"
	"testing"
)

func TestGetPublicFS(t *testing.T) {
	env := setupTestEnv(t)
	defer teardownTestEnv(t)

	env.createTestFile(t, "dist/critsplit/static/public/test.css", "public content")

	publicFS, err := env.config.GetPublicFS()
	if err != nil {
		t.Fatalf("GetPublicFS() error = %v", err)
	}

	content, err := publicFS.ReadFile("test.css")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(content) != "public content" {
		t.Errorf("ReadFile() content = %v, want %v", string(content), "public content")
	}
}

func TestGetUniversalFS(t *testing.T) {
	env := setupTestEnv(t)
	defer teardownTestEnv(t)

	env.createTestFile(t, "dist/critsplit/static/public/test.css", "universal content")

	universalFS, err := env.config.GetUniversalFS()
	if err != nil {
		t.Fatalf("GetUniversalFS() error = %v", err)
	}

	content, err := universalFS.ReadFile("static/public/test.css")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(content) != "universal content" {
		t.Errorf("ReadFile() content = %v, want %v", string(content), "universal content")
	}

	// Test Sub method
	subFS, err := universalFS.Sub("static/public")
	if err != nil {
		t.Fatalf("Sub() error = %v", err)
	}

	content, err = subFS.ReadFile("test.css")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(content) != "universal content" {
		t.Errorf("Sub().ReadFile() content = %v, want %v", string(content), "universal content")
	}

	entries, err := universalFS.ReadDir("static/public")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "test.css" {
		t.Errorf("ReadDir() = %v, want [test.css]", entries)
	}
}

func TestGetUniversalFSDevUsesDisk(t *testing.T) {
	env := setupTestEnv(t)
	defer teardownTestEnv(t)

	// An embedded FS that would be wrong in dev.
	env.config.DistFS = os.DirFS(t.TempDir())
	setModeToDev()

	env.createTestFile(t, "dist/critsplit/static/public/dev.css", "from disk")

	universalFS, err := env.config.GetUniversalFS()
	if err != nil {
		t.Fatalf("GetUniversalFS() error = %v", err)
	}

	content, err := universalFS.ReadFile("static/public/dev.css")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(content) != "from disk" {
		t.Errorf("ReadFile() content = %v, want %v", string(content), "from disk")
	}
}
