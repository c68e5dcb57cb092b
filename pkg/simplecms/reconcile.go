package simplecms

import (
	"time"
)

// UploadedMedia holds the results of the media uploads performed for one
// request, already awaited. Gallery preserves request order.
type UploadedMedia struct {
	Image   *MediaRef
	Gallery []MediaRef
}

// ReconcileRecord computes the next persisted state of a record from the
// existing state (nil on create) and a sparse patch. It never mutates
// existing: either the full merge succeeds and a fresh record is returned,
// or an error is returned and the prior state is untouched.
//
// Field rules:
//   - nil patch fields keep the stored value (or the kind's default on
//     create); non-nil fields overwrite, including explicit empty values.
//   - Slug is re-derived whenever Title is present in the patch.
//   - Primary media precedence: fresh upload, then explicit URL, then the
//     existing value.
//   - Secondary media: explicit URL list (filtered to absolute URLs) or,
//     when absent, the existing list, with fresh uploads appended; the
//     kind's cap truncates silently.
//
// ID, ViewCount and CreatedAt are never touched on update.
func ReconcileRecord(kind Kind, existing *Record, patch RecordPatch, uploads UploadedMedia, now time.Time) (*Record, error) {
	spec := kind.Spec()

	var next Record
	if existing != nil {
		next = *existing
		next.Tags = cloneStrings(existing.Tags)
		next.Categories = cloneStrings(existing.Categories)
		next.Gallery = cloneMedia(existing.Gallery)
	} else {
		next = Record{
			Kind:      kind,
			Status:    spec.DefaultStatus,
			CreatedAt: now,
		}
	}

	if patch.Title != nil {
		title := *patch.Title
		if title == "" {
			return nil, &InvalidPayloadError{Field: "title", Reason: "must not be empty"}
		}
		next.Title = title
		next.Slug = Slugify(title)
	}
	if existing == nil && patch.Title == nil {
		return nil, &InvalidPayloadError{Field: "title", Reason: "required on create"}
	}

	if patch.Summary != nil {
		next.Summary = *patch.Summary
	}
	if patch.Body != nil {
		next.Body = *patch.Body
	}
	if patch.Tags != nil {
		next.Tags = cloneStrings(*patch.Tags)
	}
	if patch.Categories != nil {
		next.Categories = cloneStrings(*patch.Categories)
	}
	if patch.Featured != nil {
		next.Featured = *patch.Featured
	}
	if patch.AuthorID != nil {
		next.AuthorID = *patch.AuthorID
	}

	if patch.Status != nil {
		if !kind.ValidStatus(*patch.Status) {
			return nil, &InvalidPayloadError{Field: "status", Reason: "not an accepted value for kind " + string(kind)}
		}
		next.Status = *patch.Status
	}

	// Primary media: upload wins, then explicit URL, then existing.
	switch {
	case uploads.Image != nil:
		next.Image = *uploads.Image
	case patch.ImageURL != nil:
		next.Image = MediaRef{URL: *patch.ImageURL}
	}

	// Secondary media: explicit list replaces, absent list keeps the stored
	// set; fresh uploads always append.
	if patch.GalleryURLs != nil || len(uploads.Gallery) > 0 {
		var gallery []MediaRef
		if patch.GalleryURLs != nil {
			for _, u := range FilterAbsoluteURLs(*patch.GalleryURLs) {
				gallery = append(gallery, MediaRef{URL: u})
			}
		} else if existing != nil {
			gallery = cloneMedia(existing.Gallery)
		}
		gallery = append(gallery, uploads.Gallery...)
		if spec.SecondaryCap > 0 && len(gallery) > spec.SecondaryCap {
			gallery = gallery[:spec.SecondaryCap]
		}
		next.Gallery = gallery
	}

	next.UpdatedAt = now
	return &next, nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneMedia(in []MediaRef) []MediaRef {
	if in == nil {
		return nil
	}
	out := make([]MediaRef, len(in))
	copy(out, in)
	return out
}
