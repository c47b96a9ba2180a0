package blocklist

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/validate"
)

// Category is the name of one source blocklist, for example "adult" or
// "gambling".  It is an opaque string.
type Category string

// The maximum and minimum lengths of a Category.
const (
	MaxCategoryLen = 128
	MinCategoryLen = 1
)

// NewCategory converts a simple string into a Category and makes sure that it
// can be used as a directory name.  This should be preferred to a simple type
// conversion.
func NewCategory(s string) (c Category, err error) {
	defer func() { err = errors.Annotate(err, "bad category %q: %w", s) }()

	err = validate.InRange("length", len(s), MinCategoryLen, MaxCategoryLen)
	if err != nil {
		return "", err
	}

	if s[0] == '.' {
		return "", errors.Error("starts with a dot")
	}

	if i := strings.IndexFunc(s, isBadCategoryRune); i != -1 {
		return "", fmt.Errorf("bad rune at index %d", i)
	}

	return Category(s), nil
}

// isBadCategoryRune returns true if r cannot be a part of a category name.
func isBadCategoryRune(r rune) (ok bool) {
	return r == '/' || r == '\\' || unicode.IsSpace(r) || !unicode.IsPrint(r)
}
