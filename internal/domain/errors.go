package domain

import "errors"

var (
	ErrUnsupportedLibraryFormat = errors.New("unsupported pattern library format")
	ErrInvalidPatternKey        = errors.New("invalid pattern key")
	ErrNilLibrary               = errors.New("pattern library is nil")
)
