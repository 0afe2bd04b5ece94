package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/sakif/prep-tracker/internal/apperror"
	"github.com/sakif/prep-tracker/internal/model"
	"github.com/sakif/prep-tracker/internal/repository"
	"github.com/sakif/prep-tracker/internal/storage"
)

// ResumeInput carries the caller-supplied fields for a resume version.
// The file itself travels separately through AttachFile — metadata and
// binary content have different request shapes (JSON vs multipart).
type ResumeInput struct {
	Name          string
	VersionNumber int
	TargetRole    string
	Checklist     model.ResumeChecklist
	Notes         string
}

// ResumeService handles resume versions and their uploaded files.
// It is the only service that owns two stores: the database row and the
// file on disk. The row is the source of truth — file operations follow it.
type ResumeService struct {
	repo   repository.ResumeRepository
	files  storage.FileStore
	logger *slog.Logger
}

// NewResumeService creates a new ResumeService.
func NewResumeService(repo repository.ResumeRepository, files storage.FileStore, logger *slog.Logger) *ResumeService {
	return &ResumeService{
		repo:   repo,
		files:  files,
		logger: logger,
	}
}

func (in *ResumeInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.TargetRole = strings.TrimSpace(in.TargetRole)
	in.Notes = strings.TrimSpace(in.Notes)

	if in.Name == "" {
		return apperror.ValidationFailed("name", "resume name is required")
	}
	if len(in.Name) > MaxNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("resume name must be %d characters or less", MaxNameLength))
	}
	if in.VersionNumber < 0 {
		return apperror.ValidationFailed("versionNumber", "version number cannot be negative")
	}
	return nil
}

// Create validates and saves a new resume version for userID.
// The record starts without a file; AttachFile adds one later.
func (s *ResumeService) Create(ctx context.Context, userID string, in ResumeInput) (*model.Resume, error) {
	if err := (&in).validate(); err != nil {
		return nil, err
	}

	resume := &model.Resume{
		UserID:        userID,
		Name:          in.Name,
		VersionNumber: in.VersionNumber,
		TargetRole:    in.TargetRole,
		Checklist:     in.Checklist,
		Notes:         in.Notes,
	}

	if err := s.repo.Create(ctx, resume); err != nil {
		s.logger.Error("failed to create resume",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating resume: %w", err)
	}

	s.logger.Info("resume created",
		slog.String("id", resume.ID),
		slog.String("name", resume.Name),
	)

	return resume, nil
}

// GetByID retrieves one of userID's resume versions.
func (s *ResumeService) GetByID(ctx context.Context, userID, id string) (*model.Resume, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "resume ID is required")
	}
	return s.repo.GetByID(ctx, userID, id)
}

// List retrieves userID's resume versions, highest version number first.
func (s *ResumeService) List(ctx context.Context, userID string, limit, offset int) ([]model.Resume, error) {
	resumes, err := s.repo.List(ctx, userID, clampList(limit, offset))
	if err != nil {
		s.logger.Error("failed to list resumes",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing resumes: %w", err)
	}
	return resumes, nil
}

// Update replaces a resume version's metadata. The attached file, if any,
// is untouched — use AttachFile to replace it.
func (s *ResumeService) Update(ctx context.Context, userID, id string, in ResumeInput) (*model.Resume, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "resume ID is required")
	}
	if err := (&in).validate(); err != nil {
		return nil, err
	}

	resume, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	resume.Name = in.Name
	resume.VersionNumber = in.VersionNumber
	resume.TargetRole = in.TargetRole
	resume.Checklist = in.Checklist
	resume.Notes = in.Notes

	if err := s.repo.Update(ctx, resume); err != nil {
		s.logger.Error("failed to update resume",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating resume: %w", err)
	}

	return resume, nil
}

// Delete removes a resume version and its file.
// The row goes first; an orphaned file costs disk space, an orphaned row
// costs a dangling download link.
func (s *ResumeService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "resume ID is required")
	}

	resume, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	if resume.FileKey != "" {
		if err := s.files.Remove(userID, resume.FileKey); err != nil {
			// The row is gone; log the leak rather than failing the delete.
			s.logger.Warn("failed to remove resume file",
				slog.String("key", resume.FileKey),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("resume deleted", slog.String("id", id))
	return nil
}

// AttachFile stores an uploaded file against a resume version, replacing
// any previous file. filename is the client-side name; only its extension
// flows into the storage key.
func (s *ResumeService) AttachFile(ctx context.Context, userID, id, filename string, r io.Reader) (*model.Resume, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "resume ID is required")
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, apperror.ValidationFailed("file", "uploaded file has no name")
	}

	resume, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	key, err := s.files.Save(userID, filepath.Ext(filename), r)
	if err != nil {
		s.logger.Error("failed to store resume file",
			slog.String("resumeID", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("storing resume file: %w", err)
	}

	oldKey := resume.FileKey
	resume.FileKey = key
	resume.FileName = filename

	if err := s.repo.Update(ctx, resume); err != nil {
		// Row update failed — clean up the file we just wrote.
		_ = s.files.Remove(userID, key)
		return nil, fmt.Errorf("attaching resume file: %w", err)
	}

	if oldKey != "" {
		if err := s.files.Remove(userID, oldKey); err != nil {
			s.logger.Warn("failed to remove replaced resume file",
				slog.String("key", oldKey),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("resume file attached",
		slog.String("resumeID", id),
		slog.String("fileName", filename),
	)

	return resume, nil
}

// OpenFile returns a reader for a resume's stored file plus the original
// filename for the Content-Disposition header. Caller closes the reader.
func (s *ResumeService) OpenFile(ctx context.Context, userID, id string) (io.ReadCloser, string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, "", apperror.ValidationFailed("id", "resume ID is required")
	}

	resume, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	if resume.FileKey == "" {
		return nil, "", apperror.NotFound("resume file", id)
	}

	f, err := s.files.Open(userID, resume.FileKey)
	if err != nil {
		return nil, "", err
	}
	return f, resume.FileName, nil
}
