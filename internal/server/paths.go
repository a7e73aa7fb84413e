package server

import (
	"errors"
	"path"
	"strings"
)

const indexPage = "index.html"

var errTraversal = errors.New("path traversal attempt detected")

// resolveRequestPath maps a raw URL path onto a name inside the served root.
// The bare root is rewritten to the index document, and any ".." segment is
// refused outright rather than cleaned away.
func resolveRequestPath(rawPath string) (string, error) {
	if rawPath == "/" {
		return "/" + indexPage, nil
	}

	// Backslashes count as separators so Windows-style escapes are caught too.
	segments := strings.FieldsFunc(rawPath, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	for _, seg := range segments {
		if seg == ".." {
			return "", errTraversal
		}
	}

	return path.Clean("/" + strings.Join(segments, "/")), nil
}
