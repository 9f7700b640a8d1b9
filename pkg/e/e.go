package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Внутренние ошибки embedding-конвейера
	ErrEmptyVectors        = fmt.Errorf("provider returned no vectors")
	ErrVectorCountMismatch = fmt.Errorf("vector count does not match input count")
	ErrNoAPIKeys           = fmt.Errorf("no API keys configured")
	ErrAllKeysFailed       = fmt.Errorf("all API keys failed")

	// Ошибки разбора ответа LLM
	ErrNoJSONObject            = fmt.Errorf("no JSON object found in reply")
	ErrMalformedRecommendation = fmt.Errorf("malformed recommendation payload")

	// 400 Bad Request
	ErrStatusBadRequest       = fmt.Errorf("bad request")
	ErrMessageRequired        = fmt.Errorf("message is required")
	ErrSessionIDRequired      = fmt.Errorf("session_id is required")
	ErrInvalidSessionID       = fmt.Errorf("session_id must be a valid UUID")
	ErrProductNameRequired    = fmt.Errorf("product name is required")
	ErrInvalidPrice           = fmt.Errorf("invalid price")
	ErrPricePrecision         = fmt.Errorf("price must have at most 2 decimal places")
	ErrMissingFields          = fmt.Errorf("missing required fields")
	ErrExpectedMultipart      = fmt.Errorf("expected multipart/form-data")
	ErrUnsupportedMediaType   = fmt.Errorf("unsupported media type")
	ErrFileTooLarge           = fmt.Errorf("file too large")
	ErrQuantityMustBePositive = fmt.Errorf("quantity must be positive")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrSessionNotFound = fmt.Errorf("session not found")

	// 500 Internal Server Error
	ErrInternalServerError  = fmt.Errorf("internal server error")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect env variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
