package service

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rcliao/taskwise/internal/domain"
)

// AnalyzeStructure inspects a project directory and reports what it
// finds: package managers, languages, frameworks, and conventional
// directories. It is pure over the filesystem snapshot; the only
// failure is a missing root.
func AnalyzeStructure(root string) (*domain.ProjectStructure, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, domain.PathNotFound(root)
	}

	s := &domain.ProjectStructure{RootPath: root}

	exists := func(rel string) bool {
		_, err := os.Stat(filepath.Join(root, rel))
		return err == nil
	}
	contains := func(rel, needle string) bool {
		data, err := os.ReadFile(filepath.Join(root, rel))
		return err == nil && strings.Contains(string(data), needle)
	}

	if exists("package.json") {
		s.PackageManagers = append(s.PackageManagers, "npm")
		s.Languages = append(s.Languages, "javascript")
		if contains("package.json", `"react"`) {
			s.Frameworks = append(s.Frameworks, "react")
		}
		if exists("next.config.js") || exists("next.config.mjs") {
			s.Frameworks = append(s.Frameworks, "nextjs")
		}
	}
	if exists("Cargo.toml") {
		s.PackageManagers = append(s.PackageManagers, "cargo")
		s.Languages = append(s.Languages, "rust")
	}
	if exists("pyproject.toml") || exists("setup.py") {
		s.PackageManagers = append(s.PackageManagers, "pip")
		s.Languages = append(s.Languages, "python")
		if contains("pyproject.toml", "fastapi") {
			s.Frameworks = append(s.Frameworks, "fastapi")
		}
	}
	if exists("go.mod") {
		s.PackageManagers = append(s.PackageManagers, "go")
		s.Languages = append(s.Languages, "go")
		if contains("go.mod", "github.com/gin-gonic/gin") {
			s.Frameworks = append(s.Frameworks, "gin")
		}
	}

	for _, dir := range []string{"src", "lib", "app"} {
		if exists(dir) {
			s.SourceDirs = append(s.SourceDirs, dir)
		}
	}

	s.HasTests = anyExists(exists, "tests", "test", "__tests__", "spec")
	s.HasDocs = anyExists(exists, "docs", "doc", "documentation")
	s.HasCI = anyExists(exists, ".github/workflows", ".gitlab-ci.yml", "Jenkinsfile", ".circleci")
	s.HasDatabase = anyExists(exists, "migrations", "schema.sql", "models", "alembic")

	return s, nil
}

func anyExists(exists func(string) bool, candidates ...string) bool {
	for _, c := range candidates {
		if exists(c) {
			return true
		}
	}
	return false
}
