package app

import "github.com/kamusis/skillcat/internal/catalog"

// Event is an input to the controller's transition function.
type Event interface {
	event()
}

// CategorySelected switches the category filter and resets to page 1.
type CategorySelected struct{ Category string }

// SearchChanged sets the free-text query and resets to page 1. Raw keystrokes
// go through Controller.InputSearch, which emits this after the debounce.
type SearchChanged struct{ Query string }

// PageChanged moves to Page when it is within the last rendered page range.
type PageChanged struct{ Page int }

// CatalogLoaded carries a successfully loaded catalog.
type CatalogLoaded struct{ Catalog *catalog.Catalog }

// LoadFailed carries the error from a failed load.
type LoadFailed struct{ Err error }

// RetryRequested restarts loading after a failure.
type RetryRequested struct{}

func (CategorySelected) event() {}
func (SearchChanged) event()    {}
func (PageChanged) event()      {}
func (CatalogLoaded) event()    {}
func (LoadFailed) event()       {}
func (RetryRequested) event()   {}

// Status is the controller's load status.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}
