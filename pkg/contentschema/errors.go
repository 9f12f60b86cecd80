package contentschema

import "errors"

var (
	ErrContentDirRequired = errors.New("contentschema: content dir required")
	ErrIndexNotOpen       = errors.New("contentschema: index database is not open")
	ErrInvalidContent     = errors.New("contentschema: content has invalid entries")
)
