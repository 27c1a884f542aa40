package models

import "time"

// BoardImage describes a photo pinned to a year's board. The bytes live in
// object storage under StoragePath.
type BoardImage struct {
	// ID is assigned by the server when the upload is confirmed.
	ID string `db:"id"`
	// Year is the capsule year the image belongs to.
	Year int `db:"year"`
	// UploadedBy is the partner identity that confirmed the upload.
	UploadedBy string `db:"uploaded_by"`
	// StoragePath is the object key, {year}/{partner}/{uuid}.{ext}.
	StoragePath string `db:"storage_path"`
	// Caption is optional.
	Caption   *string   `db:"caption"`
	CreatedAt time.Time `db:"created_at"`
}

// UploadTicket is handed to a client so it can PUT an image directly into
// object storage.
type UploadTicket struct {
	UploadURL   string
	StoragePath string
}
