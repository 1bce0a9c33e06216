package dns

// SlotStorage backs a Socket's query-slot table. It mirrors the
// fixed-array-vs-growable-Vec choice a caller without a heap would face:
// a Borrowed storage wraps a fixed-capacity slice that never grows past its
// initial length (StartQuery fails with ExhaustedError once it's full), an
// Owned storage starts at its initial capacity and appends a slot whenever
// every existing one is occupied.
type SlotStorage struct {
	slots []*queryState
	owned bool
}

// NewBorrowedStorage returns a fixed-size slot table of the given capacity.
// Once all capacity slots are occupied, StartQuery/StartQueryRaw fail with
// ExhaustedError instead of growing.
func NewBorrowedStorage(capacity int) *SlotStorage {
	return &SlotStorage{slots: make([]*queryState, capacity)}
}

// NewOwnedStorage returns a slot table that starts at capacity slots and
// grows by one whenever every existing slot is in use.
func NewOwnedStorage(capacity int) *SlotStorage {
	return &SlotStorage{slots: make([]*queryState, capacity), owned: true}
}

// Len reports the current number of slots (occupied or free).
func (s *SlotStorage) Len() int { return len(s.slots) }

func (s *SlotStorage) findFree() (int, error) {
	for i, slot := range s.slots {
		if slot == nil {
			return i, nil
		}
	}

	if !s.owned {
		return 0, &ExhaustedError{
			Operation: "query slots",
			Message:   "no free slot and storage is fixed-size",
		}
	}

	s.slots = append(s.slots, nil)
	return len(s.slots) - 1, nil
}

func (s *SlotStorage) get(index int) (*queryState, error) {
	if index < 0 || index >= len(s.slots) {
		return nil, &IllegalError{
			Operation: "query handle",
			Message:   "index out of range",
		}
	}
	return s.slots[index], nil
}
