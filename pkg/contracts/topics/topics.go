package topics

const (
	// Apostas
	BidPlaced = "bid_placed"

	// Liquidação de resultados
	SettlementRequested = "settlement_requested"
	SettlementCompleted = "settlement_completed"

	// DLQs
	SettlementRequestedDLQ = "settlement_requested_dlq"
)
