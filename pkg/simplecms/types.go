package simplecms

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a content resource family. Every kind shares the Record
// shape and the create/update code path; per-kind differences (accepted
// statuses, gallery cap, media folder) live in KindSpec.
type Kind string

// Resource kinds.
const (
	KindBlog    Kind = "blog"
	KindEvent   Kind = "event"
	KindGallery Kind = "gallery"
	KindWork    Kind = "work"
	KindSlide   Kind = "slide"
	KindService Kind = "service"
)

// Record status constants.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusUpcoming  = "upcoming"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
)

// KindSpec describes the per-kind configuration.
//
// Key doubles as the sequence key for identifier allocation and the URL path
// segment. SecondaryCap limits the gallery length after reconciliation;
// zero means unlimited.
type KindSpec struct {
	Key           string
	Statuses      []string
	DefaultStatus string
	SecondaryCap  int
	MediaFolder   string
}

var kindSpecs = map[Kind]KindSpec{
	KindBlog: {
		Key:           "blog",
		Statuses:      []string{StatusActive, StatusInactive},
		DefaultStatus: StatusActive,
		MediaFolder:   "blogs",
	},
	KindEvent: {
		Key:           "event",
		Statuses:      []string{StatusUpcoming, StatusOngoing, StatusCompleted},
		DefaultStatus: StatusUpcoming,
		SecondaryCap:  4,
		MediaFolder:   "events",
	},
	KindGallery: {
		Key:           "gallery",
		Statuses:      []string{StatusActive, StatusInactive},
		DefaultStatus: StatusActive,
		MediaFolder:   "gallery",
	},
	KindWork: {
		Key:           "work",
		Statuses:      []string{StatusActive, StatusInactive},
		DefaultStatus: StatusActive,
		SecondaryCap:  8,
		MediaFolder:   "works",
	},
	KindSlide: {
		Key:           "slide",
		Statuses:      []string{StatusActive, StatusInactive},
		DefaultStatus: StatusActive,
		SecondaryCap:  4,
		MediaFolder:   "slides",
	},
	KindService: {
		Key:           "service",
		Statuses:      []string{StatusActive, StatusInactive},
		DefaultStatus: StatusActive,
		MediaFolder:   "services",
	},
}

// Valid reports whether k is a known resource kind.
func (k Kind) Valid() bool {
	_, ok := kindSpecs[k]
	return ok
}

// Spec returns the per-kind configuration. It panics on unknown kinds;
// callers are expected to validate with ParseKind or Valid first.
func (k Kind) Spec() KindSpec {
	spec, ok := kindSpecs[k]
	if !ok {
		panic(fmt.Sprintf("simplecms: unknown kind %q", k))
	}
	return spec
}

// ValidStatus reports whether status is accepted for this kind. Transitions
// between accepted values are unconstrained.
func (k Kind) ValidStatus(status string) bool {
	for _, s := range k.Spec().Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// ParseKind converts a URL path segment into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown resource kind %q", ErrNotFound, s)
	}
	return k, nil
}

// Kinds returns all known kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindBlog, KindEvent, KindGallery, KindWork, KindSlide, KindService}
}

// MediaRef is a stored media asset reference. PublicID is the storage key
// used for best-effort cleanup when the asset is replaced; it is empty for
// externally hosted URLs supplied directly by the client.
type MediaRef struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
}

// Record is the shared shape of every content resource.
//
// ID is a sequential integer scoped to the kind, assigned exactly once at
// creation. Slug is derived from Title and unique per kind.
type Record struct {
	ID         int64      `json:"id"`
	Kind       Kind       `json:"kind"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Summary    string     `json:"summary,omitempty"`
	Body       string     `json:"body,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Categories []string   `json:"categories,omitempty"`
	Image      MediaRef   `json:"image"`
	Gallery    []MediaRef `json:"gallery,omitempty"`
	Status     string     `json:"status"`
	Featured   bool       `json:"featured"`
	ViewCount  int64      `json:"view_count"`
	AuthorID   uuid.UUID  `json:"author_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// Author is an admin user able to mutate records.
type Author struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecordFilters narrows ListRecords results. Nil fields are ignored.
type RecordFilters struct {
	Status   *string
	Tag      *string
	Category *string
	Featured *bool
	Limit    *int
	Offset   *int
}
