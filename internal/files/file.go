// Package files implements the files client: file operations on the blobs
// attached to records of a backend table.
package files

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/recordfiles/internal/storage"
)

// File describes a blob attached to a table record.
type File struct {
	// Name is the file name, unique within the record.
	Name string
	// TableName is the backend table owning the record.
	TableName string
	// ParentID is the identifier of the owning record.
	ParentID string
	// Length is the blob size in bytes, or 0 for a descriptor not yet uploaded.
	Length int64
	// ContentType is the MIME type recorded at upload, if any.
	ContentType string
	// ETag is the store-assigned content tag.
	ETag string
	// LastModified is the time of the last upload.
	LastModified time.Time
	// StoreURI is the object key inside the connection's container.
	StoreURI string
}

// Permission selects the operation an access URI grants.
type Permission int

const (
	PermissionRead Permission = iota
	PermissionWrite
	PermissionDelete
)

// ParsePermission maps "read", "write" and "delete" to a Permission.
func ParsePermission(s string) (Permission, bool) {
	switch s {
	case "read", "r", "":
		return PermissionRead, true
	case "write", "w":
		return PermissionWrite, true
	case "delete", "d":
		return PermissionDelete, true
	}
	return 0, false
}

func (p Permission) String() string {
	switch p {
	case PermissionRead:
		return "read"
	case PermissionWrite:
		return "write"
	case PermissionDelete:
		return "delete"
	}
	return "unknown"
}

func (p Permission) method() storage.Method {
	switch p {
	case PermissionWrite:
		return http.MethodPut
	case PermissionDelete:
		return http.MethodDelete
	default:
		return http.MethodGet
	}
}
