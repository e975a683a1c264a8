package ask

import "errors"

// ErrNoRAGService indicates that no question-answering service was provided.
var ErrNoRAGService = errors.New("rag service is required")
