package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/taskwise/internal/domain"
)

func touch(t *testing.T, root string, rel string, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestAnalyzeStructure_MissingRoot(t *testing.T) {
	_, err := AnalyzeStructure(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, domain.ErrPathNotFound)
}

func TestAnalyzeStructure_GoProject(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "go.mod", "module example.com/app\n\nrequire github.com/gin-gonic/gin v1.9.0\n")
	touch(t, root, "src/main.go", "package main\n")
	touch(t, root, "tests/app_test.go", "package tests\n")
	touch(t, root, ".github/workflows/ci.yml", "on: push\n")
	touch(t, root, "migrations/0001_init.sql", "create table t (id int);\n")

	s, err := AnalyzeStructure(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"go"}, s.PackageManagers)
	assert.Equal(t, []string{"go"}, s.Languages)
	assert.Contains(t, s.Frameworks, "gin")
	assert.Equal(t, []string{"src"}, s.SourceDirs)
	assert.True(t, s.HasTests)
	assert.True(t, s.HasCI)
	assert.True(t, s.HasDatabase)
	assert.False(t, s.HasDocs)
}

func TestAnalyzeStructure_PolyglotProject(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "package.json", `{"dependencies": {"react": "^18.0.0"}}`)
	touch(t, root, "pyproject.toml", "[project]\ndependencies = [\"fastapi\"]\n")
	touch(t, root, "docs/index.md", "# Docs\n")

	s, err := AnalyzeStructure(root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"npm", "pip"}, s.PackageManagers)
	assert.ElementsMatch(t, []string{"javascript", "python"}, s.Languages)
	assert.ElementsMatch(t, []string{"react", "fastapi"}, s.Frameworks)
	assert.True(t, s.HasDocs)
	assert.False(t, s.HasTests)
}

func TestAnalyzeStructure_Deterministic(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Cargo.toml", "[package]\nname = \"app\"\n")

	first, err := AnalyzeStructure(root)
	require.NoError(t, err)
	second, err := AnalyzeStructure(root)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
