package load

import "errors"

var ErrContentDirNotFound = errors.New("content directory not found")
var ErrInvalidConcurrency = errors.New("concurrency must not be negative")
