// Package securemem keeps secret material in memguard-encrypted buffers so
// API keys never sit in plain heap memory between requests.
package securemem

import (
	"crypto/subtle"

	"github.com/awnumar/memguard"
)

// init installs memguard's interrupt handler so secrets are wiped when the
// process is signalled.
func init() {
	memguard.CatchInterrupt()
}

// Secret holds one sensitive string in encrypted memory.
type Secret struct {
	buf *memguard.LockedBuffer
}

// New stores the plaintext in a locked buffer. An empty plaintext yields an
// empty secret without allocating protected memory.
func New(plaintext string) *Secret {
	if plaintext == "" {
		return &Secret{}
	}
	return &Secret{buf: memguard.NewBufferFromBytes([]byte(plaintext))}
}

// Reveal returns a plaintext copy in regular memory. The copy should stay
// as short-lived as possible, typically the duration of one HTTP request.
func (s *Secret) Reveal() string {
	if s == nil || s.buf == nil {
		return ""
	}
	return string(s.buf.Bytes())
}

// IsEmpty reports whether the secret holds no value.
func (s *Secret) IsEmpty() bool {
	return s == nil || s.buf == nil || len(s.buf.Bytes()) == 0
}

// Equal compares against a plaintext string in constant time.
func (s *Secret) Equal(other string) bool {
	if s.IsEmpty() {
		return other == ""
	}
	return subtle.ConstantTimeCompare(s.buf.Bytes(), []byte(other)) == 1
}

// Destroy wipes the secret. The secret must not be revealed afterwards.
func (s *Secret) Destroy() {
	if s == nil || s.buf == nil {
		return
	}
	s.buf.Destroy()
	s.buf = nil
}

// Purge wipes every buffer the package has handed out. Called once on
// process shutdown.
func Purge() {
	memguard.Purge()
}
