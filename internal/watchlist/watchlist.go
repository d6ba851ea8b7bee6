package watchlist

import (
	"errors"
	"sync"

	"ScalpDeck/internal/model"
)

// ErrEmptySymbol is returned by Validate for blank input.
var ErrEmptySymbol = errors.New("empty symbol")

// ChangeFunc observes the watchlist after an effective mutation.
type ChangeFunc func(symbols []string)

// Watchlist is an ordered, de-duplicated set of ticker symbols.
type Watchlist struct {
	mu        sync.RWMutex
	symbols   []string
	listeners []ChangeFunc
}

// New creates a watchlist seeded with the given symbols, normalized and de-duplicated.
func New(seed ...string) *Watchlist {
	w := &Watchlist{}
	for _, s := range seed {
		w.insert(s)
	}
	return w
}

// Validate normalizes raw and rejects blank input.
func Validate(raw string) (string, error) {
	s := model.NormalizeSymbol(raw)
	if s == "" {
		return "", ErrEmptySymbol
	}
	return s, nil
}

// OnChange registers fn to run after every add or remove that changed the list.
func (w *Watchlist) OnChange(fn ChangeFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Add appends raw (trimmed, uppercased) unless it is empty or already present.
func (w *Watchlist) Add(raw string) []string {
	w.mu.Lock()
	changed := w.insert(raw)
	out := w.copyLocked()
	listeners := w.listeners
	w.mu.Unlock()

	if changed {
		notify(listeners, out)
	}
	return out
}

// Remove drops symbol if present. Remaining entries keep their order.
func (w *Watchlist) Remove(symbol string) []string {
	s := model.NormalizeSymbol(symbol)

	w.mu.Lock()
	changed := false
	for i, have := range w.symbols {
		if have == s {
			w.symbols = append(w.symbols[:i:i], w.symbols[i+1:]...)
			changed = true
			break
		}
	}
	out := w.copyLocked()
	listeners := w.listeners
	w.mu.Unlock()

	if changed {
		notify(listeners, out)
	}
	return out
}

// Symbols returns a copy of the current sequence in display order.
func (w *Watchlist) Symbols() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.copyLocked()
}

// Contains reports whether symbol (in any case) is watched.
func (w *Watchlist) Contains(symbol string) bool {
	s := model.NormalizeSymbol(symbol)
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.indexLocked(s) >= 0
}

func (w *Watchlist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.symbols)
}

func (w *Watchlist) insert(raw string) bool {
	s := model.NormalizeSymbol(raw)
	if s == "" || w.indexLocked(s) >= 0 {
		return false
	}
	w.symbols = append(w.symbols, s)
	return true
}

func (w *Watchlist) indexLocked(s string) int {
	for i, have := range w.symbols {
		if have == s {
			return i
		}
	}
	return -1
}

func (w *Watchlist) copyLocked() []string {
	return append([]string(nil), w.symbols...)
}

func notify(listeners []ChangeFunc, symbols []string) {
	for _, fn := range listeners {
		fn(append([]string(nil), symbols...))
	}
}
