package types

import "github.com/google/uuid"

// DocumentID identifies one ingested unit (a text blob, a file, or a
// project rendering). Every chunk derived from the unit carries it.
type DocumentID string

// NewDocumentID generates a new UUID v4 DocumentID
func NewDocumentID() DocumentID {
	return DocumentID(uuid.New().String())
}

// String returns the string representation of DocumentID
func (d DocumentID) String() string {
	return string(d)
}

// ProjectID is a UUID-based identifier for a project record
type ProjectID string

// NewProjectID generates a new UUID v4 ProjectID
func NewProjectID() ProjectID {
	return ProjectID(uuid.New().String())
}

// String returns the string representation of ProjectID
func (p ProjectID) String() string {
	return string(p)
}
