// Package state provides file-based persistence for the ReuseMart client
// session.
//
// credentials.json holds the key/value pairs owned by a login session (token,
// role, jabatan, pegawai_id). Every change rewrites the whole file atomically
// under a cross-process lock, so a multi-key login either lands completely or
// not at all.
package state

import "time"

// SchemaVersion is written into every credentials file.
const SchemaVersion = "1"

// CredentialFile is the top-level structure persisted in credentials.json.
type CredentialFile struct {
	// Version is the schema version for forward compatibility. Currently "1".
	Version string `json:"version"`

	// Values are the stored credential keys.
	Values map[string]string `json:"values"`

	// CreatedAt is when the file was first written.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is refreshed on every write.
	UpdatedAt time.Time `json:"updated_at"`
}

func newCredentialFile() *CredentialFile {
	now := time.Now().UTC()
	return &CredentialFile{
		Version:   SchemaVersion,
		Values:    map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
