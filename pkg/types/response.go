package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// BatchResult is the shared shape for multi-product operations.
type BatchResult struct {
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
	Total      int    `json:"total"`
	Message    string `json:"message,omitempty"`
}

// OperationResult is the shared shape for single-resource operations.
type OperationResult struct {
	UpdatedCount int    `json:"updated_count"`
	TotalCount   int    `json:"total_count"`
	Message      string `json:"message"`
}
