package db

import "log"

// ------------------------------
// Event System
// ------------------------------
//
// The DB emits typed events when import attempts are logged, document content
// is rewritten, or dead-link history is cleared. Register listeners to react
// to these changes.
//
// Example usage:
//
//	db.RegisterEventListener(db.OnImportLoggedEvent, func(event db.Event) error {
//	    ev := event.(db.ImportLoggedEvent)
//	    log.Printf("Import %s: %s", ev.Entry.Status, ev.Entry.OriginalURL)
//	    return nil
//	})
//
// Event is the common interface for all database events.
type Event interface {
	Kind() EventKind
}

// EventKind represents all the kinds of events that can be emitted by the DB.
type EventKind int

const (
	// OnImportLoggedEvent is emitted when an import attempt record is written.
	OnImportLoggedEvent EventKind = iota
	// OnDocumentContentUpdatedEvent is emitted when a document's content is replaced.
	OnDocumentContentUpdatedEvent
	// OnDeadLinksClearedEvent is emitted when dead-link records are bulk-deleted.
	OnDeadLinksClearedEvent
)

func (k EventKind) String() string {
	switch k {
	case OnImportLoggedEvent:
		return "import_logged"
	case OnDocumentContentUpdatedEvent:
		return "document_content_updated"
	case OnDeadLinksClearedEvent:
		return "dead_links_cleared"
	default:
		return "unknown"
	}
}

// ImportLoggedEvent is emitted after an import attempt record is inserted.
type ImportLoggedEvent struct {
	Entry ImportLogEntry
}

func (e ImportLoggedEvent) Kind() EventKind { return OnImportLoggedEvent }

// DocumentContentUpdatedEvent is emitted after a document's content is replaced.
type DocumentContentUpdatedEvent struct {
	DocumentID int64
}

func (e DocumentContentUpdatedEvent) Kind() EventKind { return OnDocumentContentUpdatedEvent }

// DeadLinksClearedEvent is emitted after dead-link records are bulk-deleted.
type DeadLinksClearedEvent struct {
	Deleted int64
}

func (e DeadLinksClearedEvent) Kind() EventKind { return OnDeadLinksClearedEvent }

// EventListener is a callback that handles events of a specific kind.
type EventListener func(event Event) error

// RegisterEventListener adds a listener for a specific event kind.
// Listeners are called synchronously in registration order after the DB operation succeeds.
func (db *DB) RegisterEventListener(eventKind EventKind, listener EventListener) {
	if db.eventListeners == nil {
		db.eventListeners = make(map[EventKind][]EventListener)
	}
	db.eventListeners[eventKind] = append(db.eventListeners[eventKind], listener)
}

// emit dispatches an event to all registered listeners for that event kind.
func (db *DB) emit(event Event) {
	listeners := db.eventListeners[event.Kind()]
	for _, listener := range listeners {
		if err := listener(event); err != nil {
			log.Printf("Event listener error for %s: %v", event.Kind(), err)
		}
	}
}
