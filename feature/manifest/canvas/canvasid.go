package canvas

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"iiif-presentation/core/apperr"
)

var bareIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID reports whether id is usable as a bare canvas or manifest id.
func ValidID(id string) bool {
	return bareIDPattern.MatchString(id)
}

// IDParser understands the canvas-id grammar of this service:
// a bare id, or {base}/{customer}/canvases/{id}.
type IDParser struct {
	base string
}

// NewIDParser creates a parser for canvas URIs under baseURL.
func NewIDParser(baseURL string) IDParser {
	return IDParser{base: strings.TrimRight(baseURL, "/")}
}

// CanvasURI builds the public URI of a canvas.
func (p IDParser) CanvasURI(customerID int, canvasID string) string {
	return fmt.Sprintf("%s/%d/canvases/%s", p.base, customerID, canvasID)
}

// ManifestURI builds the public URI of a manifest.
func (p IDParser) ManifestURI(customerID int, manifestID string) string {
	return fmt.Sprintf("%s/%d/manifests/%s", p.base, customerID, manifestID)
}

// IsManaged reports whether ref points into this service's namespace.
func (p IDParser) IsManaged(ref string) bool {
	return strings.HasPrefix(ref, p.base+"/")
}

// ParseExplicit validates a caller-supplied canvas id and returns the bare id.
func (p IDParser) ParseExplicit(customerID int, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if bareIDPattern.MatchString(ref) {
		return ref, nil
	}
	if !p.IsManaged(ref) {
		return "", apperr.Validation(apperr.CodeInvalidCanvasID, "canvas id %q is not a valid canvas id", ref)
	}

	parts := strings.Split(strings.TrimPrefix(ref, p.base+"/"), "/")
	if len(parts) != 3 || parts[1] != "canvases" {
		return "", apperr.Validation(apperr.CodeInvalidCanvasID, "canvas id %q does not match %s/{customer}/canvases/{id}", ref, p.base)
	}
	owner, err := strconv.Atoi(parts[0])
	if err != nil || owner != customerID {
		return "", apperr.Validation(apperr.CodeInvalidCanvasID, "canvas id %q does not belong to customer %d", ref, customerID)
	}
	if !bareIDPattern.MatchString(parts[2]) {
		return "", apperr.Validation(apperr.CodeInvalidCanvasID, "canvas id %q has an invalid id segment", ref)
	}
	return parts[2], nil
}

// ParseItemID splits a canvas URI from the generic item structure into either a
// managed canvas id or a caller-authored original id.
func (p IDParser) ParseItemID(customerID int, uri string) (canvasID, originalID string, err error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", "", nil
	}
	if p.IsManaged(uri) {
		id, err := p.ParseExplicit(customerID, uri)
		return id, "", err
	}
	return "", uri, nil
}
