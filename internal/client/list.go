package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/quocanhngo/agrosynth/internal/model"
)

// ErrPendingEntry is returned when acting on an alert the store has not confirmed yet
var ErrPendingEntry = errors.New("alert is still being saved")

// AlertSource reads and deletes alerts in the remote store
type AlertSource interface {
	List(ctx context.Context, scope Scope) ([]model.AlertRecord, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// Confirmer asks the user to approve a destructive action
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Entry is one row of an alert list. Pending entries were submitted but not
// yet confirmed by the store; their ID is local only.
type Entry struct {
	model.AlertRecord
	Pending bool `json:"pending"`
}

// AlertList is an in-memory snapshot of alerts. It only changes through its
// own methods; other clients' changes show up after the next Refresh.
type AlertList struct {
	mu       sync.Mutex
	source   AlertSource
	scope    Scope
	recent   *RecentCache
	entries  []Entry
	selected uuid.UUID
}

// NewAlertList creates an empty list. recent may be nil.
func NewAlertList(source AlertSource, scope Scope, recent *RecentCache) *AlertList {
	return &AlertList{source: source, scope: scope, recent: recent}
}

// Refresh replaces the confirmed entries with the store's current alerts.
// Pending entries stay on top.
func (l *AlertList) Refresh(ctx context.Context) error {
	alerts, err := l.source.List(ctx, l.scope)
	if err != nil {
		return fmt.Errorf("refresh alerts: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]Entry, 0, len(alerts)+len(l.entries))
	for _, e := range l.entries {
		if e.Pending {
			entries = append(entries, e)
		}
	}
	for _, a := range alerts {
		entries = append(entries, Entry{AlertRecord: a})
	}
	l.entries = entries

	if l.selected != uuid.Nil && l.indexOf(l.selected) < 0 {
		l.selected = uuid.Nil
	}
	l.saveRecent()
	return nil
}

// Entries returns a copy of the list, newest first
func (l *AlertList) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// AddPending puts an unconfirmed alert on top and returns its local ID
func (l *AlertList) AddPending(alert model.AlertRecord) uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()

	alert.ID = uuid.New()
	l.entries = append([]Entry{{AlertRecord: alert, Pending: true}}, l.entries...)
	return alert.ID
}

// ConfirmPending replaces a pending entry with the stored alert
func (l *AlertList) ConfirmPending(localID uuid.UUID, stored model.AlertRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexOf(localID); i >= 0 {
		l.entries[i] = Entry{AlertRecord: stored}
	} else {
		l.entries = append([]Entry{{AlertRecord: stored}}, l.entries...)
	}
	l.saveRecent()
}

// RemovePending drops a pending entry whose save failed
func (l *AlertList) RemovePending(localID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexOf(localID); i >= 0 && l.entries[i].Pending {
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
	}
}

// Select opens the detail view for id, replacing any previous selection
func (l *AlertList) Select(id uuid.UUID) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return Entry{}, false
	}
	l.selected = id
	return l.entries[i], true
}

// Selected returns the entry shown in the detail view
func (l *AlertList) Selected() (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.selected == uuid.Nil {
		return Entry{}, false
	}
	i := l.indexOf(l.selected)
	if i < 0 {
		return Entry{}, false
	}
	return l.entries[i], true
}

// ClearSelection closes the detail view
func (l *AlertList) ClearSelection() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selected = uuid.Nil
}

// Delete asks for confirmation, then deletes the alert from the store and the
// list. It returns false without error when the user declines.
func (l *AlertList) Delete(ctx context.Context, id uuid.UUID, confirm Confirmer) (bool, error) {
	l.mu.Lock()
	i := l.indexOf(id)
	if i < 0 {
		l.mu.Unlock()
		return false, fmt.Errorf("alert %s is not in the list", id)
	}
	entry := l.entries[i]
	l.mu.Unlock()

	if entry.Pending {
		return false, ErrPendingEntry
	}
	if confirm != nil && !confirm.Confirm(fmt.Sprintf("Delete alert %q?", entry.Name)) {
		return false, nil
	}

	if _, err := l.source.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("delete alert: %w", err)
	}

	// Zero rows means the alert is already gone from the store; drop it either way
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(id); i >= 0 {
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
	}
	if l.selected == id {
		l.selected = uuid.Nil
	}
	l.saveRecent()
	return true, nil
}

func (l *AlertList) indexOf(id uuid.UUID) int {
	for i := range l.entries {
		if l.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// saveRecent snapshots confirmed entries. Caller holds l.mu.
func (l *AlertList) saveRecent() {
	if l.recent == nil {
		return
	}
	confirmed := make([]model.AlertRecord, 0, len(l.entries))
	for _, e := range l.entries {
		if !e.Pending {
			confirmed = append(confirmed, e.AlertRecord)
		}
	}
	l.recent.Save(confirmed)
}
