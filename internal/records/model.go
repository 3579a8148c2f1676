package records

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Kind names one of the two record collections.
type Kind string

const (
	KindResume         Kind = "resume"
	KindJobDescription Kind = "job-description"
)

// Kinds lists every collection in a stable order.
func Kinds() []Kind {
	return []Kind{KindResume, KindJobDescription}
}

// Path is the URL segment of the collection.
func (k Kind) Path() string {
	if k == KindJobDescription {
		return "job-descriptions"
	}
	return "resumes"
}

// CollectionKey is the storage key holding the JSON array of records.
func (k Kind) CollectionKey() string {
	if k == KindJobDescription {
		return "jobDescriptions"
	}
	return "resumes"
}

// ActiveKey is the storage key holding the active record id.
func (k Kind) ActiveKey() string {
	if k == KindJobDescription {
		return "activeJobDescriptionId"
	}
	return "activeResumeId"
}

// Label is the human name used in messages.
func (k Kind) Label() string {
	if k == KindJobDescription {
		return "job description"
	}
	return "resume"
}

// Record is a resume or a job description. Both share this shape.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Snapshot is the persisted state of one collection.
type Snapshot struct {
	Records  []Record
	ActiveID string
}

func (s Snapshot) index(id string) int {
	for i, r := range s.Records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
