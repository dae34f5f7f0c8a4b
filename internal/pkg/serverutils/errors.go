package serverutils

// AppError is the single error type crossing the service boundary. Controllers
// and the websocket handshake map it to HTTP statuses / close codes; everything
// that is not an AppError is treated as an internal failure.
type AppError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

const (
	CodeAuth       = "auth_error"
	CodePermission = "permission_denied"
	CodeValidation = "validation_error"
	CodeNotFound   = "not_found"
	CodeCapacity   = "capacity_exceeded"
)

func NewAuthError(message string) *AppError {
	return &AppError{Status: 401, Code: CodeAuth, Message: message}
}

func NewPermissionError(message string) *AppError {
	return &AppError{Status: 403, Code: CodePermission, Message: message}
}

func NewValidationError(message string, fieldErrors map[string]string) *AppError {
	return &AppError{Status: 400, Code: CodeValidation, Message: message, Errors: fieldErrors}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Status: 404, Code: CodeNotFound, Message: message}
}

// NewCapacityError reports an oversize payload (attachments past the ceiling).
// Surfaced as 400 so clients treat it like any other rejected payload.
func NewCapacityError(message string) *AppError {
	return &AppError{Status: 400, Code: CodeCapacity, Message: message}
}
