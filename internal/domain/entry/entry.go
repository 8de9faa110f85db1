package entry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrMissingTitleOrURL signals a create request without title or url.
	ErrMissingTitleOrURL = errors.New("title or url missing")
	// ErrNegativeLikes signals a likes value below zero.
	ErrNegativeLikes = errors.New("likes must be a non-negative integer")
	// ErrInvalidEntry signals inconsistent entry parameters.
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrNotFound is returned when no entry matches the given id.
	ErrNotFound = errors.New("entry not found")
	// ErrNotOwner is returned when a non-owner attempts a delete.
	ErrNotOwner = errors.New("cant delete other users blogs")
)

// ID represents Entry identifier.
type ID = uuid.UUID

// Owner is the public projection of the user owning an entry.
type Owner struct {
	ID       uuid.UUID
	Username string
	Name     string
}

// IsZero reports whether the owner reference is unresolved.
func (o Owner) IsZero() bool {
	return o.ID == uuid.Nil
}

// Entry is a reference to an external resource submitted by a user.
type Entry struct {
	ID        ID
	Title     string
	Author    string
	URL       string
	Likes     int
	Owner     Owner
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput is the client-supplied data for a new entry.
// A nil Likes means the field was absent.
type CreateInput struct {
	Title  string
	Author string
	URL    string
	Likes  *int
}

// LikesOrZero returns the supplied likes or the default of zero.
func (in CreateInput) LikesOrZero() int {
	if in.Likes == nil {
		return 0
	}
	return *in.Likes
}

// Validate checks the required fields of a create request.
// It is not applied on update.
func Validate(in CreateInput) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.URL) == "" {
		return ErrMissingTitleOrURL
	}
	if in.Likes != nil && *in.Likes < 0 {
		return ErrNegativeLikes
	}
	return nil
}

// Params represents the input values required to build an Entry.
type Params struct {
	ID        ID
	Title     string
	Author    string
	URL       string
	Likes     int
	Owner     Owner
	CreatedAt time.Time
}

// New creates a new Entry after validating params.
func New(params Params) (*Entry, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	return &Entry{
		ID:        params.ID,
		Title:     strings.TrimSpace(params.Title),
		Author:    strings.TrimSpace(params.Author),
		URL:       strings.TrimSpace(params.URL),
		Likes:     params.Likes,
		Owner:     params.Owner,
		CreatedAt: params.CreatedAt,
		UpdatedAt: params.CreatedAt,
	}, nil
}

func validateParams(params Params) error {
	if err := Validate(CreateInput{Title: params.Title, URL: params.URL, Likes: &params.Likes}); err != nil {
		return err
	}
	if params.ID == uuid.Nil {
		return fmt.Errorf("%w: id is required", ErrInvalidEntry)
	}
	if params.Owner.IsZero() {
		return fmt.Errorf("%w: owner is required", ErrInvalidEntry)
	}
	return nil
}

// Patch holds optional field replacements for an update. The owner is not patchable.
type Patch struct {
	Title  *string
	Author *string
	URL    *string
	Likes  *int
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.URL == nil && p.Likes == nil
}

// Apply replaces the supplied fields. Only the likes invariant is checked;
// an update may blank title or url.
func (e *Entry) Apply(p Patch, now time.Time) error {
	if p.Likes != nil && *p.Likes < 0 {
		return ErrNegativeLikes
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Author != nil {
		e.Author = *p.Author
	}
	if p.URL != nil {
		e.URL = *p.URL
	}
	if p.Likes != nil {
		e.Likes = *p.Likes
	}
	e.UpdatedAt = now
	return nil
}
