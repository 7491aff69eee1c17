// Package memory implements the repository interfaces over in-process maps.
// Transactions are serialized and roll back by restoring a snapshot.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/Domenick1991/airtech/internal/repository"
)

type state struct {
	users     map[int64]domain.User
	tokens    map[string]domain.Token
	locations map[int64]domain.Location
	flights   map[int64]domain.Flight
	seats     map[int64]domain.Seat
	bookings  map[int64]domain.Booking
	nextID    int64
}

func (s *state) clone() *state {
	c := &state{
		users:     make(map[int64]domain.User, len(s.users)),
		tokens:    make(map[string]domain.Token, len(s.tokens)),
		locations: make(map[int64]domain.Location, len(s.locations)),
		flights:   make(map[int64]domain.Flight, len(s.flights)),
		seats:     make(map[int64]domain.Seat, len(s.seats)),
		bookings:  make(map[int64]domain.Booking, len(s.bookings)),
		nextID:    s.nextID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.flights {
		c.flights[k] = v
	}
	for k, v := range s.seats {
		c.seats[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	return c
}

type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *state
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		data: &state{
			users:     map[int64]domain.User{},
			tokens:    map[string]domain.Token{},
			locations: map[int64]domain.Location{},
			flights:   map[int64]domain.Flight{},
			seats:     map[int64]domain.Seat{},
			bookings:  map[int64]domain.Booking{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

type txKey struct{}

// WithinTransaction runs fn with exclusive access to the store. Nested calls
// join the outer transaction. An error or panic restores the state fn saw.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

func (s *Store) restore(snapshot *state) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

func (s *Store) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

func (s *Store) Users() repository.UserRepository { return userRepo{s} }
func (s *Store) Tokens() repository.TokenRepository { return tokenRepo{s} }
func (s *Store) Locations() repository.LocationRepository { return locationRepo{s} }
func (s *Store) Flights() repository.FlightRepository { return flightRepo{s} }
func (s *Store) Seats() repository.SeatRepository { return seatRepo{s} }
func (s *Store) Bookings() repository.BookingRepository { return bookingRepo{s} }

func page[T any](items []T, p domain.Page) domain.PageResult[T] {
	result := domain.PageResult[T]{TotalCount: len(items), PageSize: p.Size, Items: make([]T, 0)}
	start := p.Offset()
	if start >= len(items) {
		return result
	}
	end := start + p.Limit()
	if end > len(items) {
		end = len(items)
	}
	result.Items = append(result.Items, items[start:end]...)
	return result
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func ptr[T any](v T) *T {
	return &v
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrDuplicate
		}
	}
	user.ID = r.s.id()
	user.DateJoined = r.s.now()
	user.UpdatedAt = user.DateJoined
	r.s.data.users[user.ID] = *user
	return nil
}

func (r userRepo) find(id int64, active bool) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.data.users[id]
	if !ok || (active && u.DeletedAt != nil) {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) FindActiveByID(_ context.Context, id int64) (*domain.User, error) {
	return r.find(id, true)
}

func (r userRepo) FindAllByID(_ context.Context, id int64) (*domain.User, error) {
	return r.find(id, false)
}

func (r userRepo) FindActiveByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.data.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r userRepo) ListActive(_ context.Context, p domain.Page) (domain.PageResult[domain.User], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make([]domain.User, 0)
	for _, id := range sortedIDs(r.s.data.users) {
		if u := r.s.data.users[id]; u.DeletedAt == nil {
			users = append(users, u)
		}
	}
	return page(users, p), nil
}

func (r userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.data.users[user.ID]
	if !ok || current.DeletedAt != nil {
		return domain.ErrNotFound
	}
	for id, u := range r.s.data.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return domain.ErrDuplicate
		}
	}
	user.UpdatedAt = r.s.now()
	r.s.data.users[user.ID] = *user
	return nil
}

func (r userRepo) SoftDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.data.users[id]
	if !ok || u.DeletedAt != nil {
		return domain.ErrNotFound
	}
	u.DeletedAt = ptr(r.s.now())
	u.IsActive = false
	r.s.data.users[id] = u
	return nil
}

func (r userRepo) HardDelete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.users, id)
	return nil
}

type tokenRepo struct{ s *Store }

func (r tokenRepo) Create(_ context.Context, token *domain.Token) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.tokens[token.Key]; ok {
		return domain.ErrDuplicate
	}
	for _, t := range r.s.data.tokens {
		if t.UserID == token.UserID {
			return domain.ErrDuplicate
		}
	}
	token.CreatedAt = r.s.now()
	r.s.data.tokens[token.Key] = *token
	return nil
}

func (r tokenRepo) GetByKey(_ context.Context, key string) (*domain.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.data.tokens[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r tokenRepo) GetByUserID(_ context.Context, userID int64) (*domain.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.data.tokens {
		if t.UserID == userID {
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r tokenRepo) Rotate(_ context.Context, userID int64, key string, expiresAt *time.Time) (*domain.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for k, t := range r.s.data.tokens {
		if t.UserID == userID {
			delete(r.s.data.tokens, k)
		}
	}
	t := domain.Token{Key: key, UserID: userID, CreatedAt: r.s.now(), ExpiresAt: expiresAt}
	r.s.data.tokens[key] = t
	return &t, nil
}

func (r tokenRepo) DeleteByKey(_ context.Context, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.tokens, key)
	return nil
}

type locationRepo struct{ s *Store }

func (r locationRepo) taken(ref domain.LocationRef, exclude int64) bool {
	for id, l := range r.s.data.locations {
		if id != exclude && l.Ref() == ref {
			return true
		}
	}
	return false
}

func (r locationRepo) Create(_ context.Context, location *domain.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.taken(location.Ref(), 0) {
		return domain.ErrDuplicate
	}
	location.ID = r.s.id()
	location.CreatedAt = r.s.now()
	location.UpdatedAt = location.CreatedAt
	r.s.data.locations[location.ID] = *location
	return nil
}

func (r locationRepo) GetByID(_ context.Context, id int64) (*domain.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.data.locations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (r locationRepo) FindByRef(_ context.Context, ref domain.LocationRef) (*domain.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, l := range r.s.data.locations {
		if l.Ref() == ref {
			return &l, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r locationRepo) List(_ context.Context, p domain.Page) (domain.PageResult[domain.Location], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	locations := make([]domain.Location, 0, len(r.s.data.locations))
	for _, id := range sortedIDs(r.s.data.locations) {
		locations = append(locations, r.s.data.locations[id])
	}
	return page(locations, p), nil
}

func (r locationRepo) Update(_ context.Context, location *domain.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.locations[location.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.taken(location.Ref(), location.ID) {
		return domain.ErrDuplicate
	}
	location.UpdatedAt = r.s.now()
	r.s.data.locations[location.ID] = *location
	return nil
}
