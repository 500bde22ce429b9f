package storage

import (
	"fmt"
	"path"
	"regexp"

	"github.com/data-juicer/dj-agent/pkg/constants"
)

// s3URLPattern matches scheme://bucket/key with a non-empty bucket and key.
var s3URLPattern = regexp.MustCompile(`^` + constants.S3Scheme + `://([^/]+)/(.+)$`)

// ObjectURI addresses a single object in an S3-compatible store.
type ObjectURI struct {
	Bucket string
	Key    string
}

// IsRemoteURI reports whether s is already an object-store URL.
func IsRemoteURI(s string) bool {
	return s3URLPattern.MatchString(s)
}

// ParseURI splits an s3://bucket/key URL.
func ParseURI(s string) (ObjectURI, error) {
	m := s3URLPattern.FindStringSubmatch(s)
	if m == nil {
		return ObjectURI{}, fmt.Errorf("%w: %q is not of the form %sbucket/key", ErrInvalidURI, s, constants.S3URLPrefix)
	}
	return ObjectURI{Bucket: m[1], Key: m[2]}, nil
}

// String renders the canonical s3://bucket/key form.
func (u ObjectURI) String() string {
	return constants.S3URLPrefix + u.Bucket + "/" + u.Key
}

// Basename is the last path element of the key.
func (u ObjectURI) Basename() string {
	return path.Base(u.Key)
}
