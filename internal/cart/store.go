package cart

import (
	"context"
	"encoding/json"
	"sync"

	"bookmart/internal/kvstore"
	"bookmart/internal/model"
	"bookmart/internal/pricing"

	"github.com/rs/zerolog"
)

const (
	cartKey  = "cartItems"
	savedKey = "saveForLaterItems"
)

// Store is the source of truth for what gets checked out. It holds the
// active cart and the saved-for-later list, merges lines by their full
// key (book, line type, rental duration), and writes every mutation
// through to the key-value store before committing it in memory.
//
// Operations addressing a line that does not exist are no-ops, matching
// the forgiving semantics of cart UIs: a stale remove or quantity
// update is not an error.
type Store struct {
	mu     sync.Mutex
	kv     kvstore.Store
	logger zerolog.Logger
	items  []model.CartLine
	saved  []model.CartLine
}

// NewStore loads the persisted cart state. Missing keys mean an empty
// cart; corrupt state is a persistence failure.
func NewStore(ctx context.Context, kv kvstore.Store, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		kv:     kv,
		logger: logger.With().Str("component", "cart").Logger(),
	}

	items, err := s.loadList(ctx, cartKey)
	if err != nil {
		return nil, err
	}
	saved, err := s.loadList(ctx, savedKey)
	if err != nil {
		return nil, err
	}

	s.items = items
	s.saved = saved

	s.logger.Info().
		Int("cart_lines", len(items)).
		Int("saved_lines", len(saved)).
		Msg("cart loaded")

	return s, nil
}

func (s *Store) loadList(ctx context.Context, key string) ([]model.CartLine, error) {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to load cart state")
		return nil, model.ErrPersistenceFailure
	}
	if !found {
		return nil, nil
	}

	var lines []model.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("corrupt cart state")
		return nil, model.ErrPersistenceFailure
	}
	return lines, nil
}

// Add merges the line into the active cart. A line with the same key
// accumulates quantity; repeated identical adds never dedupe. A
// non-positive quantity defaults to 1.
func (s *Store) Add(ctx context.Context, line model.CartLine) error {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if line.Type == model.LineTypeRental {
		if line.Rental == nil || line.Rental.DurationDays < 1 {
			return model.ErrInvalidRentalDuration
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := model.CloneLines(s.items)
	key := line.Key()

	merged := false
	for i := range items {
		if items[i].Key() == key {
			items[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, line.Clone())
	}

	if err := s.persist(ctx, cartKey, items); err != nil {
		return err
	}
	s.items = items

	s.logger.Info().
		Str("book_id", line.BookID).
		Str("line_type", string(line.Type)).
		Int("quantity", line.Quantity).
		Bool("merged", merged).
		Msg("line added to cart")

	return nil
}

// Remove deletes the line with the given key from the active cart.
func (s *Store) Remove(ctx context.Context, key model.LineKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, removed := removeLine(s.items, key)
	if removed == nil {
		return nil
	}

	if err := s.persist(ctx, cartKey, items); err != nil {
		return err
	}
	s.items = items

	s.logger.Info().
		Str("book_id", key.BookID).
		Str("line_type", string(key.Type)).
		Msg("line removed from cart")

	return nil
}

// UpdateQuantity sets the quantity for the line with the given key,
// clamped to a minimum of 1.
func (s *Store) UpdateQuantity(ctx context.Context, key model.LineKey, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := model.CloneLines(s.items)
	found := false
	for i := range items {
		if items[i].Key() == key {
			items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	if err := s.persist(ctx, cartKey, items); err != nil {
		return err
	}
	s.items = items

	return nil
}

// SaveForLater atomically moves a line from the active cart to the
// saved-for-later list. A line with the same key already saved absorbs
// the moved quantity.
func (s *Store) SaveForLater(ctx context.Context, key model.LineKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.move(ctx, key, cartKey, savedKey, &s.items, &s.saved)
}

// MoveToCart atomically moves a line from the saved-for-later list back
// to the active cart, merging quantities with any existing line.
func (s *Store) MoveToCart(ctx context.Context, key model.LineKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.move(ctx, key, savedKey, cartKey, &s.saved, &s.items)
}

// move removes the keyed line from src and merges it into dst. Both
// lists are persisted before the in-memory state changes, so a crash
// mid-move never leaves the line in both lists.
func (s *Store) move(ctx context.Context, key model.LineKey, srcKey, dstKey string, src, dst *[]model.CartLine) error {
	newSrc, moved := removeLine(*src, key)
	if moved == nil {
		return nil
	}

	newDst := model.CloneLines(*dst)
	merged := false
	for i := range newDst {
		if newDst[i].Key() == key {
			newDst[i].Quantity += moved.Quantity
			merged = true
			break
		}
	}
	if !merged {
		newDst = append(newDst, *moved)
	}

	if err := s.persist(ctx, srcKey, newSrc); err != nil {
		return err
	}
	if err := s.persist(ctx, dstKey, newDst); err != nil {
		return err
	}

	*src = newSrc
	*dst = newDst

	s.logger.Info().
		Str("book_id", key.BookID).
		Str("line_type", string(key.Type)).
		Str("from", srcKey).
		Str("to", dstKey).
		Msg("line moved")

	return nil
}

// Clear empties the active cart only; saved-for-later is untouched.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, cartKey, nil); err != nil {
		return err
	}
	s.items = nil

	s.logger.Info().Msg("cart cleared")

	return nil
}

// Items returns a deep copy of the active cart lines, in insertion
// order. Checkout snapshots the cart through this method.
func (s *Store) Items() []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneLines(s.items)
}

// Saved returns a deep copy of the saved-for-later lines.
func (s *Store) Saved() []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneLines(s.saved)
}

// Total returns the active cart total in the same terms as the rental
// price calculator.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.Subtotal(s.items)
}

// Count returns the sum of quantities over active cart lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, line := range s.items {
		count += line.Quantity
	}
	return count
}

func (s *Store) persist(ctx context.Context, key string, lines []model.CartLine) error {
	if lines == nil {
		lines = []model.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to marshal cart state")
		return model.ErrPersistenceFailure
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to persist cart state")
		return model.ErrPersistenceFailure
	}
	return nil
}

// removeLine returns a copy of lines without the keyed line, plus the
// removed line itself, or nil when no line matched.
func removeLine(lines []model.CartLine, key model.LineKey) ([]model.CartLine, *model.CartLine) {
	out := make([]model.CartLine, 0, len(lines))
	var removed *model.CartLine
	for _, line := range lines {
		if line.Key() == key && removed == nil {
			clone := line.Clone()
			removed = &clone
			continue
		}
		out = append(out, line.Clone())
	}
	return out, removed
}
