// Package upload validates and stores file attachments for feedback and
// tickets.
package upload

import (
	"fmt"
	"math"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/frankincense-labs/cx-management/internal/shared/errors"
)

// MaxFileSize is the largest accepted upload.
const MaxFileSize int64 = 5 << 20

// sniffLength is how much of a file is inspected to detect its real type.
const sniffLength = 3072

// allowedTypes maps each accepted content type to its file extensions. The
// first extension is used when the file name carries none of them.
var allowedTypes = map[string][]string{
	"image/jpeg":      {"jpg", "jpeg"},
	"image/png":       {"png"},
	"image/gif":       {"gif"},
	"image/webp":      {"webp"},
	"application/pdf": {"pdf"},
	"text/plain":      {"txt", "log", "csv", "md"},
}

var folderPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// AllowedTypes returns the accepted content types.
func AllowedTypes() []string {
	out := make([]string, 0, len(allowedTypes))
	for t := range allowedTypes {
		out = append(out, t)
	}
	return out
}

// ValidateFile checks the declared size and type before any bytes move.
func ValidateFile(name, declaredType string, size int64) error {
	if size > MaxFileSize {
		return errors.NewUploadError(
			fmt.Sprintf("file %q exceeds the maximum size of 5MB", name),
			fmt.Sprintf("current size: %s", FormatFileSize(size)),
		)
	}
	if _, ok := allowedTypes[baseType(declaredType)]; !ok {
		return errors.NewUploadError(
			fmt.Sprintf("file type not allowed for %q", name),
			"please upload images (JPG, PNG, GIF, WEBP), PDF or plain text files",
		)
	}
	return nil
}

// validateContent checks that the sniffed type of the first bytes of a file
// is the declared type or one of its descendants, so a renamed executable
// cannot pass as an image.
func validateContent(name, declaredType string, head []byte) error {
	declared := baseType(declaredType)
	detected := mimetype.Detect(head)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(declared) {
			return nil
		}
	}
	return errors.NewUploadError(
		fmt.Sprintf("content of %q does not match its declared type", name),
		fmt.Sprintf("declared %s, detected %s", declared, detected.String()),
	)
}

// extensionFor keeps the file name's extension when it belongs to the
// declared type and otherwise uses the type's canonical one.
func extensionFor(name, declaredType string) string {
	exts := allowedTypes[baseType(declaredType)]
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	for _, e := range exts {
		if e == ext {
			return ext
		}
	}
	if len(exts) > 0 {
		return exts[0]
	}
	return "bin"
}

func validateFolder(folder string) error {
	if !folderPattern.MatchString(folder) {
		return errors.NewValidationError("invalid upload folder", folder)
	}
	return nil
}

func baseType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// FormatFileSize renders a byte count for people, e.g. "1.5 MB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	v := math.Round(float64(bytes)/math.Pow(1024, float64(i))*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + units[i]
}
