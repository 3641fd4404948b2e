package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Bank     string          `json:"bank"`
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LastChecked string `json:"lastChecked"`
}

// LedgerMetrics is returned by GET /v1/metrics/ledger.
type LedgerMetrics struct {
	TotalOperations  int64   `json:"totalOperations"`
	SoftFailureRate  float64 `json:"softFailureRate"`
	HardFailureRate  float64 `json:"hardFailureRate"`
	DepositedVolume  float64 `json:"depositedVolume"`
	WithdrawnVolume  float64 `json:"withdrawnVolume"`
	TransferVolume   float64 `json:"transferVolume"`
	LoanIssuedVolume float64 `json:"loanIssuedVolume"`
	LoanRepaidVolume float64 `json:"loanRepaidVolume"`
	RankPromotions   int64   `json:"rankPromotions"`
	DuplicateBlocked int64   `json:"duplicateBlocked"`
	Period           string  `json:"period"`
}

// SuccessResponse wraps a successful response without a body entity.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
