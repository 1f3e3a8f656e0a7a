package video

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Placeholder is replaced by the video id in a Locator template.
const Placeholder = "{video_id}"

// Locator resolves video ids to file paths.
type Locator struct {
	Root     string
	Template string
}

// NewLocator returns a locator for template under root.
func NewLocator(root, template string) Locator {
	return Locator{Root: root, Template: template}
}

// Path returns the video file for id. Ids that would escape the source root
// are rejected with ErrNotFound.
func (l Locator) Path(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: invalid video id %q", ErrNotFound, id)
	}
	rel := strings.ReplaceAll(l.Template, Placeholder, id)
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel), nil
	}
	return filepath.Join(l.Root, rel), nil
}
