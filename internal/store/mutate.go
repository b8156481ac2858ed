package store

import (
	"github.com/shopspring/decimal"

	"uhb/trade-ledger/internal/backing"
	"uhb/trade-ledger/internal/logging"
	"uhb/trade-ledger/internal/models"
)

// Every mutator returns nil or a *ledgererror.SaveError warning that storage
// is full. Arguments that match nothing are silently ignored.

// NewTransactionID returns a fresh id, greater than every id seen so far.
func (s *Store) NewTransactionID() models.TxID {
	return s.ids.Next()
}

// AddTransaction appends tx to the collection of its direction. An empty
// direction means the active one. Ids are not checked for uniqueness; take
// them from NewTransactionID.
func (s *Store) AddTransaction(tx models.Transaction) error {
	tx.Direction = s.direction(tx.Direction)
	s.ids.Observe(tx.ID)

	s.logger.WithFields(
		logging.F(logging.FieldTransactionID, tx.ID),
		logging.F(logging.FieldDirection, tx.Direction),
	).Debug("Adding transaction")

	if tx.Direction == models.Sell {
		s.sales = append(s.sales, tx)
		return s.save(backing.KeySales)
	}
	s.purchases = append(s.purchases, tx)
	return s.save(backing.KeyPurchases)
}

// UpdateTransaction replaces the record with tx.ID. It deletes then adds, so
// a record may change direction.
func (s *Store) UpdateTransaction(tx models.Transaction) error {
	_, warnDel := s.DeleteTransaction(tx.ID)
	warnAdd := s.AddTransaction(tx)
	if warnAdd != nil {
		return warnAdd
	}
	return warnDel
}

// DeleteTransaction removes the first record with id from each collection and
// reports whether anything was removed.
func (s *Store) DeleteTransaction(id models.TxID) (bool, error) {
	var changed []string
	if out, ok := removeByID(s.sales, id); ok {
		s.sales = out
		changed = append(changed, backing.KeySales)
	}
	if out, ok := removeByID(s.purchases, id); ok {
		s.purchases = out
		changed = append(changed, backing.KeyPurchases)
	}
	if len(changed) == 0 {
		return false, nil
	}
	s.logger.WithField(logging.FieldTransactionID, id).Debug("Deleted transaction")
	return true, s.save(changed...)
}

func removeByID(txs []models.Transaction, id models.TxID) ([]models.Transaction, bool) {
	for i, t := range txs {
		if t.ID == id {
			out := make([]models.Transaction, 0, len(txs)-1)
			out = append(out, txs[:i]...)
			return append(out, txs[i+1:]...), true
		}
	}
	return txs, false
}

// AddTrader inserts or overwrites a trader.
func (s *Store) AddTrader(name string, t models.Trader) error {
	s.traders[name] = t
	return s.save(backing.KeyTraders)
}

// RemoveTrader deletes a trader. Its transactions are kept.
func (s *Store) RemoveTrader(name string) error {
	if _, ok := s.traders[name]; !ok {
		return nil
	}
	delete(s.traders, name)
	return s.save(backing.KeyTraders)
}

// RenameTrader moves oldName to newName with details t and renames every
// transaction of oldName in both collections. It does nothing when oldName is
// unknown. Callers must reject a newName that already exists.
func (s *Store) RenameTrader(oldName, newName string, t models.Trader) error {
	if _, ok := s.traders[oldName]; !ok {
		return nil
	}
	delete(s.traders, oldName)
	s.traders[newName] = t

	keys := []string{backing.KeyTraders}
	inSales := renameIn(s.sales, oldName, newName)
	if inSales > 0 {
		keys = append(keys, backing.KeySales)
	}
	inPurchases := renameIn(s.purchases, oldName, newName)
	if inPurchases > 0 {
		keys = append(keys, backing.KeyPurchases)
	}
	s.logger.WithFields(
		logging.F(logging.FieldTrader, newName),
		logging.F("previous", oldName),
		logging.F(logging.FieldCount, inSales+inPurchases),
	).Info("Renamed trader")
	return s.save(keys...)
}

func renameIn(txs []models.Transaction, oldName, newName string) int {
	n := 0
	for i := range txs {
		if txs[i].Name == oldName {
			txs[i].Name = newName
			n++
		}
	}
	return n
}

// AddCatalogItem appends a variant to product in the catalog for d, creating
// the product when needed.
func (s *Store) AddCatalogItem(d models.Direction, product string, entry models.CatalogEntry) error {
	d = s.direction(d)
	cat := s.catalogRef(d)
	cat[product] = append(cat[product], entry)
	return s.save(catalogKey(d))
}

// RemoveCatalogItem drops every variant of product with the given size. A
// product left without variants is removed.
func (s *Store) RemoveCatalogItem(d models.Direction, product, size string) error {
	d = s.direction(d)
	cat := s.catalogRef(d)
	entries, ok := cat[product]
	if !ok {
		return nil
	}
	kept := make([]models.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if e.Size != size {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(cat, product)
	} else {
		cat[product] = kept
	}
	return s.save(catalogKey(d))
}

// UpdateCatalogItem sets the price of the first variant of product with size.
func (s *Store) UpdateCatalogItem(d models.Direction, product, size string, price decimal.Decimal) error {
	d = s.direction(d)
	entries := s.catalogRef(d)[product]
	for i := range entries {
		if entries[i].Size == size {
			entries[i].Price = price
			return s.save(catalogKey(d))
		}
	}
	return nil
}

// SetThreshold sets the low-stock alert level of product/size.
func (s *Store) SetThreshold(product, size string, level int) error {
	s.thresholds[models.ItemKey(product, size)] = level
	return s.save(backing.KeyThresholds)
}

// RemoveThreshold restores the default alert level of product/size.
func (s *Store) RemoveThreshold(product, size string) error {
	key := models.ItemKey(product, size)
	if _, ok := s.thresholds[key]; !ok {
		return nil
	}
	delete(s.thresholds, key)
	return s.save(backing.KeyThresholds)
}

// AddUser appends a user. Usernames are not checked for uniqueness.
func (s *Store) AddUser(u models.User) error {
	s.users = append(s.users, u.Clone())
	return s.save(backing.KeyUsers)
}

// RemoveUser deletes every user named username.
func (s *Store) RemoveUser(username string) error {
	kept := s.users[:0:0]
	for _, u := range s.users {
		if u.Username != username {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(s.users) {
		return nil
	}
	s.users = kept
	return s.save(backing.KeyUsers)
}

// UpdateUser applies patch to the first user named username.
func (s *Store) UpdateUser(username string, patch models.UserPatch) error {
	for i, u := range s.users {
		if u.Username == username {
			s.users[i] = patch.Apply(u)
			return s.save(backing.KeyUsers)
		}
	}
	return nil
}

// AddSignupRequest queues a signup.
func (s *Store) AddSignupRequest(r models.SignupRequest) error {
	s.signupRequests = append(s.signupRequests, r)
	return s.save(backing.KeySignupRequests)
}

// RemoveSignupRequest drops every signup of username.
func (s *Store) RemoveSignupRequest(username string) error {
	kept := s.signupRequests[:0:0]
	for _, r := range s.signupRequests {
		if r.Username != username {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(s.signupRequests) {
		return nil
	}
	s.signupRequests = kept
	return s.save(backing.KeySignupRequests)
}

// AddPassRequest queues a password change.
func (s *Store) AddPassRequest(r models.PassChangeRequest) error {
	s.passRequests = append(s.passRequests, r)
	return s.save(backing.KeyPassRequests)
}

// RemovePassRequest drops every password change request of username.
func (s *Store) RemovePassRequest(username string) error {
	kept := s.passRequests[:0:0]
	for _, r := range s.passRequests {
		if r.Username != username {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(s.passRequests) {
		return nil
	}
	s.passRequests = kept
	return s.save(backing.KeyPassRequests)
}
