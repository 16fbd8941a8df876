package repository

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"account-service/internal/data/entity"
	"account-service/pkg/clock"
)

// OTPRepository holds at most one pending OTP per identifier in memory.
// Every method is atomic with respect to the identifier it touches, and
// entries are copied in and out so callers never share state with the store.
type OTPRepository interface {
	// Put replaces any pending OTP for otp.Identifier.
	Put(otp entity.OTP)
	Get(identifier string) (entity.OTP, bool)
	Delete(identifier string)
	// CompareAndDelete removes the entry only if it is still issuance id.
	CompareAndDelete(identifier string, id uuid.UUID) bool
	// IncrementAttempts bumps the mismatch counter of issuance id.
	IncrementAttempts(identifier string, id uuid.UUID) (int, bool)
	// Sweep drops entries that expired before now and reports how many.
	Sweep(now time.Time) int
	Len() int
}

const (
	otpShardCount = 32

	// the expiry heap is compacted once it holds more than twice the live
	// entries and at least this many items
	minHeapCompact = 64
)

type otpShard struct {
	mu      sync.Mutex
	entries map[string]entity.OTP
}

// MemoryOTPRepository is the process-local OTPRepository. Locking is striped
// across shards picked by hashing the identifier.
type MemoryOTPRepository struct {
	shards [otpShardCount]*otpShard

	heapMu   sync.Mutex
	expiries expiryHeap
	live     atomic.Int64

	log *zap.Logger
}

func NewOTPRepository(log *zap.Logger) *MemoryOTPRepository {
	r := &MemoryOTPRepository{
		log: log.With(zap.String("repository", "otp")),
	}
	for i := range r.shards {
		r.shards[i] = &otpShard{entries: make(map[string]entity.OTP)}
	}
	return r
}

func (r *MemoryOTPRepository) shard(identifier string) *otpShard {
	return r.shards[xxhash.Sum64String(identifier)%otpShardCount]
}

func (r *MemoryOTPRepository) Put(otp entity.OTP) {
	s := r.shard(otp.Identifier)
	s.mu.Lock()
	if _, ok := s.entries[otp.Identifier]; !ok {
		r.live.Inc()
	}
	s.entries[otp.Identifier] = otp
	s.mu.Unlock()

	r.heapMu.Lock()
	heap.Push(&r.expiries, expiryItem{identifier: otp.Identifier, id: otp.ID, expiresAt: otp.ExpiresAt})
	if n := r.expiries.Len(); n >= minHeapCompact && n > 2*int(r.live.Load()) {
		r.compactLocked()
	}
	r.heapMu.Unlock()
}

// compactLocked drops heap items whose entry was consumed or replaced.
// Callers hold heapMu; shard locks are always taken after it.
func (r *MemoryOTPRepository) compactLocked() {
	kept := r.expiries[:0]
	for _, item := range r.expiries {
		s := r.shard(item.identifier)
		s.mu.Lock()
		cur, ok := s.entries[item.identifier]
		s.mu.Unlock()
		if ok && cur.ID == item.id {
			kept = append(kept, item)
		}
	}
	clear(r.expiries[len(kept):])
	r.expiries = kept
	heap.Init(&r.expiries)
}

func (r *MemoryOTPRepository) Get(identifier string) (entity.OTP, bool) {
	s := r.shard(identifier)
	s.mu.Lock()
	defer s.mu.Unlock()

	otp, ok := s.entries[identifier]
	return otp, ok
}

func (r *MemoryOTPRepository) Delete(identifier string) {
	s := r.shard(identifier)
	s.mu.Lock()
	if _, ok := s.entries[identifier]; ok {
		delete(s.entries, identifier)
		r.live.Dec()
	}
	s.mu.Unlock()
}

func (r *MemoryOTPRepository) CompareAndDelete(identifier string, id uuid.UUID) bool {
	s := r.shard(identifier)
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.entries[identifier]
	if !ok || cur.ID != id {
		return false
	}
	delete(s.entries, identifier)
	r.live.Dec()
	return true
}

func (r *MemoryOTPRepository) IncrementAttempts(identifier string, id uuid.UUID) (int, bool) {
	s := r.shard(identifier)
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.entries[identifier]
	if !ok || cur.ID != id {
		return 0, false
	}
	cur.Attempts++
	s.entries[identifier] = cur
	return cur.Attempts, true
}

func (r *MemoryOTPRepository) Len() int {
	n := 0
	for _, s := range r.shards {
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

func (r *MemoryOTPRepository) Sweep(now time.Time) int {
	r.heapMu.Lock()
	var due []expiryItem
	for r.expiries.Len() > 0 && now.After(r.expiries[0].expiresAt) {
		due = append(due, heap.Pop(&r.expiries).(expiryItem))
	}
	r.heapMu.Unlock()

	removed := 0
	for _, item := range due {
		s := r.shard(item.identifier)
		s.mu.Lock()
		// a re-issue after this item was pushed has its own heap item
		if cur, ok := s.entries[item.identifier]; ok && cur.ID == item.id {
			delete(s.entries, item.identifier)
			r.live.Dec()
			removed++
		}
		s.mu.Unlock()
	}
	return removed
}

// StartSweeper reclaims expired entries every interval until ctx is done.
// The returned channel is closed once the sweeper has stopped.
func (r *MemoryOTPRepository) StartSweeper(ctx context.Context, clk clock.Clocker, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Sweep(clk.Now()); n > 0 {
					r.log.Debug("Expired OTPs reclaimed", zap.Int("count", n), zap.Int("remaining", r.Len()))
				}
			}
		}
	}()

	return done
}

// ==================== EXPIRY HEAP ====================

type expiryItem struct {
	identifier string
	id         uuid.UUID
	expiresAt  time.Time
}

// expiryHeap is a min-heap of pending expiries ordered by expiresAt.
type expiryHeap []expiryItem

func (h expiryHeap) Len() int           { return len(h) }
func (h expiryHeap) Less(i, j int) bool { return h[i].expiresAt.Before(h[j].expiresAt) }
func (h expiryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *expiryHeap) Push(x any) {
	*h = append(*h, x.(expiryItem))
}

func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
