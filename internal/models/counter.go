package models

// Counter is a named integer value persisted in the counters table.
// Rows are provisioned outside the service; the API only increments them.
type Counter struct {
	Name  string `json:"nome"`
	Value int64  `json:"valor"`
}
