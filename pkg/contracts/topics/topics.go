package topics

const (
	// Liquidação de apostas
	BetSettled = "bet_settled"

	// DLQ
	BetSettledDLQ = "bet_settled_dlq"
)
