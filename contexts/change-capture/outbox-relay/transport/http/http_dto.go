package httptransport

type OutboxStatsResponse struct {
	Unpublished int64 `json:"unpublished"`
	Published   int64 `json:"published"`
	Total       int64 `json:"total"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
