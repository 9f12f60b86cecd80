package index

import "errors"

var ErrCollectionRequired = errors.New("collection is required")
var ErrEntryIDRequired = errors.New("entry id is required")
var ErrEntryRequired = errors.New("entry is required")
