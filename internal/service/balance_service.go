package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fairsplit/fairsplit/internal/cache"
	"github.com/fairsplit/fairsplit/internal/calculator"
	"github.com/fairsplit/fairsplit/internal/metrics"
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// BalanceService derives balance views from the expense ledger.
//
// Balances are pure projections: every answer is recomputable from the log,
// and the cache is only a shortcut between appends. ExpenseService
// invalidates the group's entry on every accepted append, so a cached view
// is never authoritative across a write.
type BalanceService struct {
	store storage.Store
	cache *cache.LRU[[]models.Balance]
	sf    singleflight.Group

	// mu guards gen, the per-group invalidation generation. A recompute
	// snapshots the generation before reading the log and may only cache
	// its result while the generation is unchanged, so a recomputation
	// racing an append can never publish a pre-append view.
	mu  sync.Mutex
	gen map[int64]uint64
}

// NewBalanceService creates a BalanceService backed by store, memoizing up
// to cacheSize group views for cacheTTL.
func NewBalanceService(store storage.Store, cacheSize int, cacheTTL time.Duration) *BalanceService {
	return &BalanceService{
		store: store,
		cache: cache.New[[]models.Balance](cacheSize, cacheTTL),
		gen:   make(map[int64]uint64),
	}
}

func groupKey(groupID int64) string {
	return fmt.Sprintf("group:%d", groupID)
}

// Invalidate drops the cached view for a group and advances its
// generation. Called after every accepted expense append.
func (s *BalanceService) Invalidate(groupID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen[groupID]++
	s.cache.Delete(groupKey(groupID))
}

func (s *BalanceService) generation(groupID int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[groupID]
}

// GroupBalances returns every member's net position in the group.
// An empty expense log yields all-zero balances for the full membership.
// Reads never touch the write guard; they see the latest committed state.
func (s *BalanceService) GroupBalances(ctx context.Context, groupID int64) ([]models.Balance, error) {
	key := groupKey(groupID)
	if balances, ok := s.cache.Get(key); ok {
		metrics.BalanceCacheHits.Inc()
		return balances, nil
	}
	metrics.BalanceCacheMisses.Inc()

	// Concurrent readers of the same group share one recomputation.
	v, err, _ := s.sf.Do(key, func() (any, error) {
		start := s.generation(groupID)
		balances, err := s.computeGroupBalances(ctx, groupID)
		if err != nil {
			return nil, err
		}
		// Cache only if no append invalidated the group mid-read; the
		// caller still gets the snapshot it computed.
		s.mu.Lock()
		if s.gen[groupID] == start {
			s.cache.Set(key, balances)
		}
		s.mu.Unlock()
		return balances, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Balance), nil
}

// UserBalances returns a user's aggregated position across all groups,
// with the per-group breakdown.
func (s *BalanceService) UserBalances(ctx context.Context, userID int64) (*models.UserBalance, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.ListUserGroups(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &models.UserBalance{
		UserID:   user.ID,
		UserName: user.Name,
		Groups:   make([]models.GroupContribution, 0, len(groups)),
	}
	for _, g := range groups {
		balances, err := s.GroupBalances(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		var amount int64
		for _, b := range balances {
			if b.UserID == userID {
				amount = b.AmountCents
				break
			}
		}
		result.Groups = append(result.Groups, models.GroupContribution{
			GroupID:     g.ID,
			GroupName:   g.Name,
			AmountCents: amount,
		})
		if result.NetCents, err = money.CheckedAdd(result.NetCents, amount); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// computeGroupBalances folds the group's log into a balance per member,
// sorted by user id.
func (s *BalanceService) computeGroupBalances(ctx context.Context, groupID int64) ([]models.Balance, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListGroupExpenses(ctx, groupID)
	if err != nil {
		return nil, err
	}

	entries := make([]calculator.Entry, len(expenses))
	for i, e := range expenses {
		shares := make([]calculator.Share, len(e.Splits))
		for j, sp := range e.Splits {
			shares[j] = calculator.Share{UserID: sp.UserID, AmountCents: sp.AmountCents}
		}
		entries[i] = calculator.Entry{PayerID: e.PaidBy, AmountCents: e.AmountCents, Shares: shares}
	}

	net, err := calculator.GroupBalances(entries)
	if err != nil {
		return nil, err
	}

	balances := make([]models.Balance, 0, len(group.Members))
	for _, m := range group.Members {
		balances = append(balances, models.Balance{
			UserID:      m.ID,
			UserName:    m.Name,
			AmountCents: net[m.ID],
		})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].UserID < balances[j].UserID })
	return balances, nil
}
