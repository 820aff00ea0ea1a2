package moderation_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/warden/internal/domain"
	"github.com/gosuda/warden/internal/notify"
)

// ---------------------------------------------------------------------------
// In-memory AccountRepository — enforces the version guard and records the
// audit trail the way the real store does, so commit pairing is observable.
// ---------------------------------------------------------------------------

type fakeRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.Account
	entries  []domain.AuditEntry

	commitErr   error // injected CommitTransition failure
	commitCalls int
	afterGet    func() // runs after a GetByID copy is taken, outside the lock
}

func newFakeRepo(accounts ...*domain.Account) *fakeRepo {
	r := &fakeRepo{accounts: make(map[uuid.UUID]*domain.Account)}
	for _, a := range accounts {
		cp := *a
		r.accounts[a.ID] = &cp
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[a.ID]; ok {
		return domain.ErrConflict
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.Lock()
	a, ok := r.accounts[id]
	if !ok {
		r.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	cp := *a
	r.mu.Unlock()

	if r.afterGet != nil {
		r.afterGet()
	}
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, f domain.AccountFilter) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Account
	for _, a := range r.accounts {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Query != "" && !strings.Contains(a.Email, f.Query) && !strings.Contains(a.Name, f.Query) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRepo) CommitTransition(_ context.Context, a *domain.Account, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commitCalls++
	if r.commitErr != nil {
		return r.commitErr
	}

	stored, ok := r.accounts[a.ID]
	if !ok {
		return fmt.Errorf("commit transition: %w", domain.ErrConflict)
	}
	if stored.Version != a.Version {
		return fmt.Errorf("commit transition: %w", domain.ErrConflict)
	}

	a.Version++
	cp := *a
	r.accounts[a.ID] = &cp
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeRepo) HardDelete(_ context.Context, a *domain.Account, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[a.ID]
	if !ok {
		return fmt.Errorf("hard delete: %w", domain.ErrConflict)
	}
	if stored.Version != a.Version {
		return fmt.Errorf("hard delete: %w", domain.ErrConflict)
	}
	r.entries = append(r.entries, *entry)
	delete(r.accounts, a.ID)
	return nil
}

func (r *fakeRepo) entriesFor(id uuid.UUID) []domain.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.AuditEntry
	for _, e := range r.entries {
		if e.AccountID == id {
			out = append(out, e)
		}
	}
	return out
}

func (r *fakeRepo) stored(id uuid.UUID) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

// ---------------------------------------------------------------------------
// Notifier / Publisher / Hasher fakes.
// ---------------------------------------------------------------------------

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *fakeNotifier) Enqueue(e notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *fakeNotifier) all() []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Event(nil), n.events...)
}

type fakePublisher struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	err     error
}

func (p *fakePublisher) PublishTransition(_ context.Context, entry *domain.AuditEntry, _ domain.Status) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.entries = append(p.entries, *entry)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}
