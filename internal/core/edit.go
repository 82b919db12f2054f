package core

import (
	"fmt"

	"parqedit/internal/metrics"
	"parqedit/internal/table"
)

// GateState is the state of the deletion confirmation gate.
type GateState string

const (
	GateAwaitingCode GateState = "awaiting_code"
	GateApproved     GateState = "approved"
	GateReverted     GateState = "reverted"
)

// confirmationGate tracks one deletion attempt. It holds the table as it
// was before the submission and the reduced table the submission produced.
// Approved and Reverted are terminal; a new deletion starts a fresh gate.
type confirmationGate struct {
	state   GateState
	before  *table.Table
	pending *table.Table
}

// EditOutcome reports what happened to a full-grid submission.
type EditOutcome struct {
	Accepted             bool `json:"accepted"`
	RequiresConfirmation bool `json:"requiresConfirmation"`
	RowsToDelete         int  `json:"rowsToDelete"`
	RowCount             int  `json:"rowCount"`
}

// ConfirmOutcome reports the resolution of a confirmation gate.
type ConfirmOutcome struct {
	State       GateState `json:"state"`
	RowsDeleted int       `json:"rowsDeleted"`
	RowCount    int       `json:"rowCount"`
	Message     string    `json:"message"`
}

// SubmitEdits replaces the session table with an edited copy of the grid.
//
// Cell edits and row additions are accepted as-is: a submission whose row
// count is greater than or equal to the current table's needs no
// confirmation. A submission with fewer rows opens the confirmation gate
// and leaves the session table untouched until the deletion is confirmed.
// A new submission supersedes any gate that is still awaiting a code.
//
// No type or schema validation is performed on edited values beyond
// coercion to column types, which happens when the table is built.
func (s *Service) SubmitEdits(id string, edited *table.Table) (EditOutcome, error) {
	if edited == nil {
		return EditOutcome{}, fmt.Errorf("no table submitted")
	}
	sess, err := s.session(id)
	if err != nil {
		return EditOutcome{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	current := sess.tbl.NumRows()
	if edited.NumRows() >= current {
		sess.tbl = edited
		sess.gate = nil
		return EditOutcome{Accepted: true, RowCount: edited.NumRows()}, nil
	}

	sess.gate = &confirmationGate{
		state:   GateAwaitingCode,
		before:  sess.tbl.Clone(),
		pending: edited,
	}
	return EditOutcome{
		RequiresConfirmation: true,
		RowsToDelete:         current - edited.NumRows(),
		RowCount:             current,
	}, nil
}

// ConfirmDeletion resolves the pending confirmation gate.
//
// A matching code commits the reduced table. Any other code reverts the
// session to the table as it was before the submission — including any
// cell edits made alongside the deletion, which are discarded with it.
// Both outcomes terminate the gate.
func (s *Service) ConfirmDeletion(id, code string) (ConfirmOutcome, error) {
	sess, err := s.session(id)
	if err != nil {
		return ConfirmOutcome{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	gate := sess.gate
	if gate == nil || gate.state != GateAwaitingCode {
		return ConfirmOutcome{}, ErrNoPendingDeletion
	}
	sess.gate = nil

	if code == s.cfg.Edit.DeleteConfirmCode {
		deleted := gate.before.NumRows() - gate.pending.NumRows()
		sess.tbl = gate.pending
		metrics.GateOutcomes.WithLabelValues(string(GateApproved)).Inc()
		return ConfirmOutcome{
			State:       GateApproved,
			RowsDeleted: deleted,
			RowCount:    sess.tbl.NumRows(),
			Message:     fmt.Sprintf("Deleted %d row(s)", deleted),
		}, nil
	}

	sess.tbl = gate.before
	metrics.GateOutcomes.WithLabelValues(string(GateReverted)).Inc()
	return ConfirmOutcome{
		State:    GateReverted,
		RowCount: sess.tbl.NumRows(),
		Message:  "Incorrect code. No rows were deleted.",
	}, nil
}

// UpdateCell sets a single cell to a value coerced to the column's type.
// Cell edits never require confirmation. An unresolved gate is abandoned:
// the deletion it was guarding is discarded.
func (s *Service) UpdateCell(id string, row int, column string, value any) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	col := sess.tbl.ColumnIndex(column)
	if col < 0 {
		return fmt.Errorf("unknown column %q", column)
	}
	if err := sess.tbl.SetCell(row, col, value); err != nil {
		return err
	}
	sess.gate = nil
	return nil
}

// AppendRow adds a row to the session table. Row additions never require
// confirmation. An unresolved gate is abandoned.
func (s *Service) AppendRow(id string, values []any) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.tbl.AppendRow(values); err != nil {
		return err
	}
	sess.gate = nil
	return nil
}
