// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package pedal

import (
	"sort"
	"sync"
)

// Bank is a named group of footswitch slots
type Bank struct {
	Index int
	Name  string
}

// indexLimit bounds every bank, slot and global index taken from the wire.
// Larger indexes come from corrupted lines and are dropped.
const indexLimit = 64

type slotKey struct {
	bank     int
	position int
}

// Store is the local cache of the controller's configuration. It is mutated
// by decoded controller messages (Apply) and by optimistic local edits made
// just before the matching command is sent.
//
// Slot and global collections are sparse: a DATA line for a bank that has not
// been announced yet is kept, and slots that were never reported read as
// absent.
type Store struct {
	mu sync.RWMutex

	names       map[int]string
	activeBanks int
	current     int
	preferred   int // bank the user selected; current is this clamped to the bank count

	slots   map[slotKey]Slot
	globals map[int]GlobalSlot

	reportedBanks int // BANK_COUNT of the stream in progress, -1 when unknown
	device        string
}

// NewStore creates an empty store
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

// Reset clears every bank, slot and global and sets the bank count to zero.
// A fresh sync starts from here so banks removed on the controller do not
// linger locally. The selected bank is remembered and comes back once the
// reload reports it again.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Store) reset() {
	s.names = make(map[int]string)
	s.slots = make(map[slotKey]Slot)
	s.globals = make(map[int]GlobalSlot)
	s.activeBanks = 0
	s.current = 0
	s.reportedBanks = -1
}

// Apply updates the cache from a decoded message and reports whether any
// visible state changed. Applying the same message twice changes nothing the
// second time. Acknowledgements and device errors never touch the cache.
func (s *Store) Apply(m *Message) bool {
	if m == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch m.Kind {
	case KindBank:
		if !validIndex(m.Index) {
			return false
		}
		name, known := s.names[m.Index]
		changed := !known || name != m.Name
		s.names[m.Index] = m.Name
		if m.Index >= s.activeBanks {
			s.setActiveBanks(m.Index + 1)
			changed = true
		}
		return changed

	case KindBankCount:
		if validIndex(m.Index) {
			s.reportedBanks = m.Index
		}
		return false

	case KindSlot:
		if !validIndex(m.Index) || !validIndex(m.Position) {
			return false
		}
		key := slotKey{bank: m.Index, position: m.Position}
		if cur, ok := s.slots[key]; ok && cur == m.Slot {
			return false
		}
		s.slots[key] = m.Slot
		return true

	case KindGlobal:
		if !validIndex(m.Index) {
			return false
		}
		if cur, ok := s.globals[m.Index]; ok && cur == m.Global {
			return false
		}
		s.globals[m.Index] = m.Global
		return true

	case KindBeginConfig:
		s.reportedBanks = -1
		return false

	case KindEndConfig:
		reported := s.reportedBanks
		s.reportedBanks = -1
		changed := false
		if reported >= 0 && s.activeBanks > reported {
			s.setActiveBanks(reported)
			changed = true
		}
		if s.activeBanks > 0 {
			s.preferred = s.current
		}
		return changed

	case KindReady:
		if s.device == m.Subtype {
			return false
		}
		s.device = m.Subtype
		return true
	}

	return false
}

func validIndex(i int) bool {
	return i >= 0 && i < indexLimit
}

// setActiveBanks changes the bank count and derives the current bank from
// the preferred one, clamped into [0, n). Caller holds the lock.
func (s *Store) setActiveBanks(n int) {
	s.activeBanks = n
	switch {
	case n <= 0:
		s.current = 0
	case s.preferred >= n:
		s.current = n - 1
	case s.preferred < 0:
		s.current = 0
	default:
		s.current = s.preferred
	}
}

// ActiveBanks returns the number of banks the controller reported
func (s *Store) ActiveBanks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeBanks
}

// CurrentBank returns the selected bank index. It is 0 when there are no
// banks.
func (s *Store) CurrentBank() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetCurrentBank selects bank i if it exists
func (s *Store) SetCurrentBank(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= s.activeBanks {
		return false
	}
	s.current = i
	s.preferred = i
	return true
}

// Next selects the following bank, wrapping to 0. No-op without banks.
func (s *Store) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeBanks == 0 {
		return s.current
	}
	s.current = (s.current + 1) % s.activeBanks
	s.preferred = s.current
	return s.current
}

// Previous selects the preceding bank, wrapping to the last. No-op without
// banks.
func (s *Store) Previous() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeBanks == 0 {
		return s.current
	}
	s.current = (s.current - 1 + s.activeBanks) % s.activeBanks
	s.preferred = s.current
	return s.current
}

// BankName returns the name of bank i
func (s *Store) BankName(i int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.names[i]
	return name, ok
}

// Banks returns the active banks in index order. Banks that were counted but
// never named have an empty name.
func (s *Store) Banks() []Bank {
	s.mu.RLock()
	defer s.mu.RUnlock()
	banks := make([]Bank, s.activeBanks)
	for i := range banks {
		banks[i] = Bank{Index: i, Name: s.names[i]}
	}
	return banks
}

// Slot returns the slot at (bank, position) if the controller reported it
func (s *Store) Slot(bank, position int) (Slot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[slotKey{bank: bank, position: position}]
	return slot, ok
}

// Global returns global slot id if the controller reported it
func (s *Store) Global(id int) (GlobalSlot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.globals[id]
	return g, ok
}

// Device returns the firmware id from the last READY line
func (s *Store) Device() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.device
}

// PutSlot records a local slot edit ahead of sending it. The name is stored
// in its canonical form so the cache matches what the controller will hold.
func (s *Store) PutSlot(bank, position int, slot Slot) {
	slot.Name = CanonicalSlotName(slot.Name)
	if slot.LongPress.Type == 0 {
		slot.LongPress = NoLongPress
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slotKey{bank: bank, position: position}] = slot
}

// PutGlobal records a local global slot edit ahead of sending it
func (s *Store) PutGlobal(id int, g GlobalSlot) {
	g.Name = CanonicalSlotName(g.Name)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globals[id] = g
}

// RenameBank records a local bank rename ahead of sending it.
// It fails for banks outside [0, ActiveBanks).
func (s *Store) RenameBank(bank int, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bank < 0 || bank >= s.activeBanks {
		return false
	}
	s.names[bank] = CanonicalBankName(name)
	return true
}

// Load replaces the cache with cfg, as read from a backup file. The device id
// is kept; it belongs to the connected controller, not to the backup. The
// current bank is kept when it still exists.
func (s *Store) Load(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	for _, bank := range cfg.Banks {
		if !validIndex(bank.Index) {
			continue
		}
		s.names[bank.Index] = bank.Name
		for _, sc := range bank.Slots {
			if validIndex(sc.Position) {
				s.slots[slotKey{bank: bank.Index, position: sc.Position}] = sc.Slot
			}
		}
	}
	for _, gc := range cfg.Globals {
		if validIndex(gc.ID) {
			s.globals[gc.ID] = gc.Slot
		}
	}
	s.setActiveBanks(min(max(cfg.ActiveBanks, 0), indexLimit))
	if s.activeBanks > 0 {
		s.preferred = s.current
	}
}

// Snapshot returns a deep copy of the cached configuration
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := Config{
		Device:      s.device,
		ActiveBanks: s.activeBanks,
		Banks:       make([]BankConfig, 0, s.activeBanks),
	}

	byBank := make(map[int][]SlotConfig)
	for key, slot := range s.slots {
		byBank[key.bank] = append(byBank[key.bank], SlotConfig{Position: key.position, Slot: slot})
	}

	for i := 0; i < s.activeBanks; i++ {
		slots := byBank[i]
		sort.Slice(slots, func(a, b int) bool { return slots[a].Position < slots[b].Position })
		cfg.Banks = append(cfg.Banks, BankConfig{Index: i, Name: s.names[i], Slots: slots})
	}

	ids := make([]int, 0, len(s.globals))
	for id := range s.globals {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		cfg.Globals = append(cfg.Globals, GlobalConfig{ID: id, Slot: s.globals[id]})
	}

	return cfg
}
