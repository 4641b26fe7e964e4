package models

// EventKind - тип события потока вызовов
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
)
