package store

import (
	"uhb/trade-ledger/internal/backing"
	"uhb/trade-ledger/internal/models"
)

// Catalog returns a copy of the catalog for d, or the active direction's when
// d is empty.
func (s *Store) Catalog(d models.Direction) models.Catalog {
	return s.catalogRef(d).Clone()
}

func (s *Store) catalogRef(d models.Direction) models.Catalog {
	if s.direction(d) == models.Buy {
		return s.catalogBuy
	}
	return s.catalogSell
}

func catalogKey(d models.Direction) string {
	if d == models.Buy {
		return backing.KeyCatalogBuy
	}
	return backing.KeyCatalogSell
}

// Transactions returns a copy of the collection for d, or the active
// direction's when d is empty.
func (s *Store) Transactions(d models.Direction) []models.Transaction {
	if s.direction(d) == models.Buy {
		return models.CloneTransactions(s.purchases)
	}
	return models.CloneTransactions(s.sales)
}

// AllTransactions returns sales followed by purchases. Every record carries
// an explicit direction.
func (s *Store) AllTransactions() []models.Transaction {
	all := make([]models.Transaction, 0, len(s.sales)+len(s.purchases))
	all = append(all, s.sales...)
	all = append(all, s.purchases...)
	return all
}

// Traders returns a copy of all traders.
func (s *Store) Traders() models.Traders {
	return s.traders.Clone()
}

// Trader looks up one trader by exact name.
func (s *Store) Trader(name string) (models.Trader, bool) {
	t, ok := s.traders[name]
	return t, ok
}

// Users returns a copy of all users.
func (s *Store) Users() []models.User {
	out := make([]models.User, len(s.users))
	for i, u := range s.users {
		out[i] = u.Clone()
	}
	return out
}

// User looks up one user by username.
func (s *Store) User(username string) (models.User, bool) {
	for _, u := range s.users {
		if u.Username == username {
			return u.Clone(), true
		}
	}
	return models.User{}, false
}

// Thresholds returns a copy of the low-stock alert levels.
func (s *Store) Thresholds() models.Thresholds {
	return s.thresholds.Clone()
}

// PassRequests returns a copy of the pending password change requests.
func (s *Store) PassRequests() []models.PassChangeRequest {
	return append([]models.PassChangeRequest{}, s.passRequests...)
}

// SignupRequests returns a copy of the pending signups.
func (s *Store) SignupRequests() []models.SignupRequest {
	return append([]models.SignupRequest{}, s.signupRequests...)
}
