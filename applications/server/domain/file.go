package domain

import (
	"io"
	"time"
)

// DocumentType tags what an uploaded blob is used for on the platform.
type DocumentType string

const (
	DocumentProfilePicture    DocumentType = "profile_picture"
	DocumentLogo              DocumentType = "logo"
	DocumentPitchDeck         DocumentType = "pitch_deck"
	DocumentMessageAttachment DocumentType = "message_attachment"
)

// ProfileType selects which kind of profile document owns an uploaded blob.
type ProfileType string

const (
	ProfileStartup  ProfileType = "startup"
	ProfileInvestor ProfileType = "investor"
)

// UploadedFile describes one multipart file part already written to the
// local upload directory.
type UploadedFile struct {
	FieldName    string
	OriginalName string
	StoredName   string
	Path         string
	MimeType     string
}

// Attachments groups uploaded files by the form field they arrived under.
// Fields other than the two special-purpose ones fall into General.
type Attachments struct {
	CodeInterpreter []UploadedFile
	FileSearch      []UploadedFile
	General         []UploadedFile
}

// Paths returns the temp paths of every file in every bucket.
func (a Attachments) Paths() []string {
	paths := make([]string, 0, len(a.CodeInterpreter)+len(a.FileSearch)+len(a.General))
	for _, bucket := range [][]UploadedFile{a.CodeInterpreter, a.FileSearch, a.General} {
		for _, f := range bucket {
			paths = append(paths, f.Path)
		}
	}

	return paths
}

// UploadOptions carries the owner-linking context for one upload call.
// UserID, ProfileID and ProfileType come from the authenticated request;
// any of them may be empty, in which case no owner document is patched.
type UploadOptions struct {
	DocumentType DocumentType
	UserID       string
	ProfileID    string
	ProfileType  ProfileType
	ExpiresIn    time.Duration
}

// BlobCreate is the descriptive part of a new blob.
type BlobCreate struct {
	Filename string
	MimeType string
	ExpireAt *time.Time
}

// BlobInfo is the stored metadata of a blob, without its content.
// ContentType is always resolved (falls back to application/octet-stream),
// MimeType is the raw stored value and may be empty.
type BlobInfo struct {
	ID          string
	Filename    string
	Length      int64
	ChunkSize   int32
	UploadDate  time.Time
	ContentType string
	MimeType    string
	ExpireAt    *time.Time
}

// Blob couples blob metadata with a content read stream.
type Blob struct {
	Info BlobInfo
	Body io.ReadCloser
}
