package engine

import (
	"context"
	"crypto/md5" // #nosec G501 - content fingerprint, not a security boundary
	"encoding/hex"
	"errors"
	"time"

	"github.com/Veraticus/punchlist/internal/common"
	"github.com/Veraticus/punchlist/internal/model"
)

// Checksum returns the hex MD5 of data, the key used to recognise re-uploads.
func Checksum(data []byte) string {
	sum := md5.Sum(data) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// CheckDuplicate reports whether data was already processed, or whether a
// different file with the same name was. It returns nil when neither is
// true or when the lookup fails.
func (e *Engine) CheckDuplicate(ctx context.Context, data []byte, filename string) *model.DuplicateReport {
	if e.storage == nil {
		return nil
	}
	checksum := Checksum(data)

	previous, err := e.storage.FindProcessingLogByChecksum(ctx, checksum)
	switch {
	case err == nil:
		return &model.DuplicateReport{
			IsDuplicate:      true,
			Checksum:         checksum,
			InspectionID:     previous.InspectionID,
			BuildingName:     previous.BuildingName,
			OriginalFilename: previous.OriginalFilename,
			ProcessedAt:      processedAt(previous),
		}
	case !errors.Is(err, common.ErrNotFound):
		common.LogError(err, "Duplicate check failed", common.Fields{"checksum": checksum})
		return nil
	}

	if filename == "" {
		return nil
	}
	sameName, err := e.storage.FindProcessingLogByFilename(ctx, filename)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return nil
	case err != nil:
		common.LogError(err, "Duplicate check failed", common.Fields{"filename": filename})
		return nil
	case sameName.FileChecksum == checksum:
		return nil
	}

	return &model.DuplicateReport{
		Checksum:         checksum,
		InspectionID:     sameName.InspectionID,
		BuildingName:     sameName.BuildingName,
		OriginalFilename: sameName.OriginalFilename,
		ProcessedAt:      processedAt(sameName),
		Warning:          model.DuplicateWarningSameName,
	}
}

func processedAt(entry *model.ProcessingLog) time.Time {
	if entry.CompletedAt != nil {
		return *entry.CompletedAt
	}
	return entry.CreatedAt
}
