package storage

import (
	"crypto/rand"
	"encoding/hex"
	"path"
	"strings"
)

const keyTokenBytes = 16

// NewKey returns "<namespace>/<32 hex chars><base name of originalName>".
// The random infix keeps keys unique when clients upload files with the same name.
func NewKey(namespace, originalName string) string {
	b := make([]byte, keyTokenBytes)
	// crypto/rand.Read never fails on supported platforms.
	_, _ = rand.Read(b)
	return namespace + "/" + hex.EncodeToString(b) + baseName(originalName)
}

func baseName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
