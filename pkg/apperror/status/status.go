package status

// ErrorCode is a numeric code to classify API errors in a stable way
type ErrorCode int

// Reserved ranges by domain:
//   0-999:     client/validation errors
//   1000-1999: upload internal errors
//   2000-2999: ingest/chunking internal errors
//   3000-3999: retriever internal errors

const (
	BadRequestBase     ErrorCode = 0
	UploadInternalBase ErrorCode = 1000
	IngestInternalBase ErrorCode = 2000
	SearchInternalBase ErrorCode = 3000
)

// Client/validation errors
const (
	InvalidRequestBody ErrorCode = BadRequestBase + iota // 0
	MissingParams                                        // 1
	DocumentNotFound                                     // 2
)

// Upload internal errors
const (
	UploadInternal      ErrorCode = UploadInternalBase + iota // 1000
	UploadStorageFailed                                       // 1001
)

// Ingest internal errors
const (
	IngestInternal           ErrorCode = IngestInternalBase + iota // 2000
	IngestExtractionFailed                                         // 2001
	IngestChunkingFailed                                           // 2002
	IngestEmbeddingFailed                                          // 2003
	IngestVectorUpsertFailed                                       // 2004
)

// Retriever internal errors
const (
	SearchInternal     ErrorCode = SearchInternalBase + iota // 3000
	SearchEmbedFailed                                        // 3001
	SearchMilvusFailed                                       // 3002
)

const ErrorCodeInternal ErrorCode = 9000

// CodedError represents an error with an associated ErrorCode
type CodedError interface {
	error
	ErrorCode() ErrorCode
}

type codedError struct {
	code ErrorCode
	err  error
}

func (e codedError) Error() string        { return e.err.Error() }
func (e codedError) Unwrap() error        { return e.err }
func (e codedError) ErrorCode() ErrorCode { return e.code }

// New creates a new CodedError with the given code and underlying error
func New(code ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	return codedError{code: code, err: err}
}

// SuccessCode classifies successful API responses
type SuccessCode int

const (
	OK SuccessCode = 200
)
