package service

import (
	"github.com/rcliao/taskwise/internal/domain"
	"github.com/rcliao/taskwise/internal/storage"
)

// ProjectStore is the full persistence surface for mutating services:
// everything the extractor reads plus document write-back and script
// file management.
type ProjectStore interface {
	ConfigSource
	SaveConfig(cfg *domain.MiseConfig) error
	WriteTaskFile(segments []string, body string) (string, error)
	RemoveTaskFile(path string) error
}

var _ ProjectStore = (*storage.ConfigStore)(nil)
