package memory

import "reelhub/internal/core/ports"

// NewStore wires every in-memory repository together. Data lives for the
// lifetime of the process.
func NewStore() *ports.Store {
	accounts := NewMemoryAccountRepository()
	transactions := NewMemoryTransactionRepository()

	return &ports.Store{
		Shows:        NewMemoryShowRepository(),
		Episodes:     NewMemoryEpisodeRepository(),
		Accounts:     accounts,
		Favorites:    NewMemoryFavoriteRepository(),
		Transactions: transactions,
		Campaigns:    NewMemoryCampaignRepository(),
		Metrics:      NewMemoryMetricRepository(accounts, transactions),
	}
}
