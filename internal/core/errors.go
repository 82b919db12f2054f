package core

import (
	"errors"
	"fmt"

	"parqedit/internal/storage"
	"parqedit/internal/table"
)

// Sentinel errors for the workflow. Handlers map these to user-facing
// messages via MapError.
var (
	ErrSessionNotFound   = errors.New("session not found or expired")
	ErrNoPendingDeletion = errors.New("no deletion awaiting confirmation")
	ErrDecode            = errors.New("decode table")
)

// BackupError reports a failed pre-overwrite backup copy. The save is
// aborted when this occurs; the primary object is never written.
type BackupError struct {
	From storage.Address
	To   storage.Address
	Err  error
}

func (e *BackupError) Error() string {
	return fmt.Sprintf("backup copy %s -> %s: %v", e.From, e.To, e.Err)
}

func (e *BackupError) Unwrap() error { return e.Err }

// UserMessage is a user-facing rendering of an error, with a short code
// operators can quote when reporting problems.
type UserMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// MapError converts an internal error to a user-facing message.
//
// Codes:
//
//	SES001  - session not found or expired
//	GATE001 - confirmation with no pending deletion
//	LOAD001 - table object not found
//	LOAD002 - table could not be decoded
//	SAVE001 - backup copy failed, save aborted
//	GEN001  - anything else
func MapError(err error) UserMessage {
	var backupErr *BackupError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return UserMessage{
			Code:    "SES001",
			Message: "Your editing session was not found or has expired.",
			Action:  "Reload the table to start a new session.",
		}
	case errors.Is(err, ErrNoPendingDeletion):
		return UserMessage{
			Code:    "GATE001",
			Message: "There is no row deletion waiting for confirmation.",
			Action:  "Delete rows in the grid first, then confirm.",
		}
	case errors.Is(err, storage.ErrNotFound):
		return UserMessage{
			Code:    "LOAD001",
			Message: "The table object was not found in storage.",
			Action:  "Check the configured bucket and key, or upload a file instead.",
		}
	case errors.Is(err, ErrDecode):
		return UserMessage{
			Code:    "LOAD002",
			Message: "The file could not be read as a Parquet table: " + err.Error(),
			Action:  "Make sure the file is a valid Parquet file with a flat schema.",
		}
	case errors.As(err, &backupErr):
		return UserMessage{
			Code:    "SAVE001",
			Message: "Creating the backup copy failed, so nothing was saved: " + backupErr.Err.Error(),
			Action:  "Your edits are still loaded. Fix the storage problem and retry the save.",
		}
	default:
		return UserMessage{
			Code:    "GEN001",
			Message: err.Error(),
		}
	}
}

// encodeTable wraps the codec with a uniform error prefix.
func encodeTable(t *table.Table) ([]byte, error) {
	data, err := table.Encode(t)
	if err != nil {
		return nil, fmt.Errorf("encode table: %w", err)
	}
	return data, nil
}
