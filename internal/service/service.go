package service

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"line-splicer/internal/config"
	"line-splicer/internal/errors"
	"line-splicer/internal/filesystem"
	"line-splicer/internal/lock"
	"line-splicer/internal/logger"
	"line-splicer/internal/models"
	"line-splicer/internal/splice"
)

// SpliceService defines the operations the CLI runs against a target file.
type SpliceService interface {
	Splice(req models.SpliceRequest) (*models.SpliceResponse, *models.ErrorDetail)
	HashRange(req models.RangeHashRequest) (*models.RangeHashResponse, *models.ErrorDetail)
}

// DefaultSpliceService implements the SpliceService interface.
type DefaultSpliceService struct {
	fsAdapter    filesystem.FileSystemAdapter
	lockManager  lock.LockManagerInterface
	maxFileSize int64 // in bytes; 0 means no limit
	lockTimeout time.Duration
	logger      *slog.Logger
}

// NewDefaultSpliceService creates a new DefaultSpliceService.
func NewDefaultSpliceService(
	fs filesystem.FileSystemAdapter,
	lm lock.LockManagerInterface,
	cfg *config.Config,
	log *slog.Logger,
) (*DefaultSpliceService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if fs == nil {
		return nil, fmt.Errorf("filesystem adapter is required")
	}
	if lm == nil {
		return nil, fmt.Errorf("lock manager is required")
	}
	if log == nil {
		log = logger.Discard()
	}
	return &DefaultSpliceService{
		fsAdapter:   fs,
		lockManager: lm,
		maxFileSize: int64(cfg.MaxFileSizeMB) * 1024 * 1024,
		lockTimeout: time.Duration(cfg.LockTimeoutSec) * time.Second,
		logger:      log,
	}, nil
}

// document is a target file decoded into lines.
type document struct {
	lines []string
	bom   bool
	mode  os.FileMode
}

// Splice removes lines [req.Start, req.End) of req.Path, inserts the lines of
// req.Replacement in their place and writes the file back through a
// temporary file and rename. A symlinked path is edited through the link.
// On any error the file on disk is untouched.
func (s *DefaultSpliceService) Splice(req models.SpliceRequest) (*models.SpliceResponse, *models.ErrorDetail) {
	log := s.logger.With("run_id", uuid.NewString(), "path", req.Path)

	if req.Path == "" {
		return nil, errors.NewInvalidParamsError("Path is required.", map[string]interface{}{"path": "required"})
	}
	r := splice.EditRange{Start: req.Start, End: req.End}
	// Reject what can be rejected without reading; end is checked after reading.
	if req.Start < 0 || req.End < 0 || req.Start > req.End {
		return nil, errors.NewOutOfRangeError(req.Path, req.Start, req.End, -1, r.Validate(req.End))
	}
	if !utf8.ValidString(req.Replacement) {
		return nil, errors.NewInvalidEncodingError(req.Path, "replacement", "replacement text is not valid UTF-8")
	}

	path, errDetail := s.resolve(req.Path, "splice")
	if errDetail != nil {
		return nil, errDetail
	}
	if path != req.Path {
		log = log.With("resolved_path", path)
	}

	if req.Lock {
		fl, err := s.lockManager.AcquireLock(path, s.lockTimeout)
		if err != nil {
			return nil, errors.NewOperationLockFailedError(path, err)
		}
		defer func() {
			if err := s.lockManager.ReleaseLock(fl); err != nil {
				log.Warn("failed to release lock", "error", err)
			}
		}()
		log.Debug("lock acquired", "lock_path", fl.LockPath)
	}

	doc, errDetail := s.load(path, "splice")
	if errDetail != nil {
		return nil, errDetail
	}
	originalLineCount := len(doc.lines)

	if err := r.Validate(originalLineCount); err != nil {
		return nil, errors.NewOutOfRangeError(req.Path, req.Start, req.End, originalLineCount, err)
	}

	removedHash := splice.ContentHash(doc.lines[r.Start:r.End])
	if req.ExpectedHash != "" && !splice.HashMatches(doc.lines[r.Start:r.End], req.ExpectedHash) {
		return nil, errors.NewContentMismatchError(req.Path, req.Start, req.End, req.ExpectedHash, removedHash)
	}

	replacement := s.fsAdapter.SplitLines([]byte(req.Replacement))
	lines, err := splice.Apply(doc.lines, r, replacement)
	if err != nil {
		return nil, errors.NewOutOfRangeError(req.Path, req.Start, req.End, originalLineCount, err)
	}

	finalContent := s.fsAdapter.JoinLines(lines, doc.bom)
	if s.tooLarge(int64(len(finalContent))) {
		return nil, errors.NewFileTooLargeError(req.Path, int64(len(finalContent)), int(s.maxFileSize/(1024*1024)))
	}

	if err := s.fsAdapter.CheckWritable(path); err != nil {
		if stdErrors.Is(err, os.ErrPermission) {
			return nil, errors.NewNotWritableError(path, "check_writable", err)
		}
		return nil, errors.NewFileSystemError(path, "check_writable", err)
	}
	if err := s.fsAdapter.WriteFileBytesAtomic(path, finalContent, doc.mode); err != nil {
		if stdErrors.Is(err, os.ErrPermission) {
			return nil, errors.NewNotWritableError(path, "write_atomic", err)
		}
		return nil, errors.NewFileSystemError(path, "write_atomic", err)
	}

	resp := &models.SpliceResponse{
		OriginalTotalLines: originalLineCount,
		RemovedLines:       r.Len(),
		InsertedLines:      len(replacement),
		NewTotalLines:      len(lines),
		RemovedHash:        removedHash,
	}
	log.Info("splice applied",
		"range", r.String(),
		"removed", resp.RemovedLines,
		"inserted", resp.InsertedLines,
		"lines_before", resp.OriginalTotalLines,
		"lines_after", resp.NewTotalLines,
		"removed_hash", removedHash)
	return resp, nil
}

// HashRange returns the content hash of lines [req.Start, req.End) of
// req.Path, for pinning as a Splice ExpectedHash.
func (s *DefaultSpliceService) HashRange(req models.RangeHashRequest) (*models.RangeHashResponse, *models.ErrorDetail) {
	if req.Path == "" {
		return nil, errors.NewInvalidParamsError("Path is required.", map[string]interface{}{"path": "required"})
	}
	path, errDetail := s.resolve(req.Path, "hash")
	if errDetail != nil {
		return nil, errDetail
	}
	doc, errDetail := s.load(path, "hash")
	if errDetail != nil {
		return nil, errDetail
	}
	r := splice.EditRange{Start: req.Start, End: req.End}
	if err := r.Validate(len(doc.lines)); err != nil {
		return nil, errors.NewOutOfRangeError(req.Path, req.Start, req.End, len(doc.lines), err)
	}
	selected := doc.lines[r.Start:r.End]
	return &models.RangeHashResponse{
		Hash:       splice.ContentHash(selected),
		Lines:      append([]string(nil), selected...),
		TotalLines: len(doc.lines),
	}, nil
}

// resolve follows symlinks so that reads, the writability check and the
// final rename all act on the real file.
func (s *DefaultSpliceService) resolve(path, operation string) (string, *models.ErrorDetail) {
	resolved, err := s.fsAdapter.EvalSymlinks(path)
	if err != nil {
		return "", classifyReadError(path, operation+"_resolve", err)
	}
	return resolved, nil
}

func (s *DefaultSpliceService) tooLarge(size int64) bool {
	return s.maxFileSize > 0 && size > s.maxFileSize
}

// load stats, reads and decodes path.
func (s *DefaultSpliceService) load(path, operation string) (*document, *models.ErrorDetail) {
	stats, err := s.fsAdapter.GetFileStats(path)
	if err != nil {
		return nil, classifyReadError(path, operation+"_stat", err)
	}
	if stats.IsDir {
		return nil, errors.NewInvalidParamsError(fmt.Sprintf("Path '%s' is a directory, not a file.", path), map[string]interface{}{"path": path})
	}
	if s.tooLarge(stats.Size) {
		return nil, errors.NewFileTooLargeError(path, stats.Size, int(s.maxFileSize/(1024*1024)))
	}

	content, err := s.fsAdapter.ReadFileBytes(path)
	if err != nil {
		return nil, classifyReadError(path, operation+"_read", err)
	}
	if s.fsAdapter.HasForeignBOM(content) {
		return nil, errors.NewInvalidEncodingError(path, operation+"_read", "file starts with a UTF-16 byte order mark; only UTF-8 is supported")
	}
	content, bom := s.fsAdapter.StripBOM(content)
	if !s.fsAdapter.IsValidUTF8(content) {
		return nil, errors.NewInvalidEncodingError(path, operation+"_read", "file content is not valid UTF-8")
	}

	return &document{lines: s.fsAdapter.SplitLines(content), bom: bom, mode: stats.Mode}, nil
}

func classifyReadError(path, operation string, err error) *models.ErrorDetail {
	switch {
	case stdErrors.Is(err, os.ErrNotExist):
		return errors.NewFileNotFoundError(path, operation)
	case stdErrors.Is(err, os.ErrPermission):
		return errors.NewNotReadableError(path, operation, err)
	default:
		return errors.NewFileSystemError(path, operation, err)
	}
}

var _ SpliceService = (*DefaultSpliceService)(nil)
