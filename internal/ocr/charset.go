package ocr

import (
	"fmt"
	"strings"
)

// Charset maps character-detector class indexes to labels.
type Charset struct {
	labels []string
}

// DefaultCharset is the class order of the usual plate character models:
// digits then uppercase letters.
var DefaultCharset = MustCharset("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// NewCharset builds a Charset from one label per rune of alphabet.
// Duplicate labels are rejected.
func NewCharset(alphabet string) (Charset, error) {
	seen := make(map[rune]bool)
	labels := make([]string, 0, len(alphabet))
	for _, r := range alphabet {
		if seen[r] {
			return Charset{}, fmt.Errorf("duplicate label %q in charset", r)
		}
		seen[r] = true
		labels = append(labels, string(r))
	}
	if len(labels) == 0 {
		return Charset{}, fmt.Errorf("empty charset")
	}
	return Charset{labels: labels}, nil
}

// MustCharset is NewCharset for package-level values; it panics on error.
func MustCharset(alphabet string) Charset {
	cs, err := NewCharset(alphabet)
	if err != nil {
		panic(err)
	}
	return cs
}

// Label returns the label of class.
func (c Charset) Label(class int) (string, bool) {
	if class < 0 || class >= len(c.labels) {
		return "", false
	}
	return c.labels[class], true
}

// Contains reports whether label belongs to the charset, ignoring case.
func (c Charset) Contains(label string) bool {
	for _, l := range c.labels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

// Len returns the number of classes.
func (c Charset) Len() int {
	return len(c.labels)
}

// String returns the labels in class order, which is also the Tesseract
// whitelist for the charset.
func (c Charset) String() string {
	return strings.Join(c.labels, "")
}
