// Package simplecms provides the core domain logic for a small content
// management backend: sequential identifier allocation, slug derivation,
// partial-update reconciliation and media URL resolution for a family of
// uniform content resources (blog posts, events, gallery items, portfolio
// works, hero slides and service offerings).
//
// The package is storage-agnostic. Persistence is supplied through the
// Repository interface (see repo/memory and repo/postgres) and media uploads
// through the MediaStore interface (see storage/memory, storage/fs and
// storage/s3). The HTTP layer in api wires everything to chi routes.
package simplecms
