//go:build unit || e2e

// Package memstore is an in-memory UnitOfWork for use case tests. Write
// transactions are serialized and committed atomically; updates are
// compare-and-set on the aggregate version like the Postgres repositories.
package memstore

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"rental-ledger/internal/domain/booking"
	"rental-ledger/internal/domain/depositcase"
	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/infra"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/usecase/shared"

	"github.com/google/uuid"
)

type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *state

	cars          map[uuid.UUID]shared.CarSnapshot
	verifications map[uuid.UUID]shared.VerificationSnapshot

	// staleUpdates makes the next n payment updates lose their CAS.
	staleUpdates int
}

var _ shared.UnitOfWork = (*Store)(nil)

type state struct {
	bookings map[uuid.UUID]*booking.Booking
	payments map[uuid.UUID]*payment.Payment
	cases    map[uuid.UUID]*depositcase.DepositCase
	events   map[string]shared.WebhookEventRecord
	alerts   []shared.Alert
}

func New() *Store {
	return &Store{
		data: &state{
			bookings: map[uuid.UUID]*booking.Booking{},
			payments: map[uuid.UUID]*payment.Payment{},
			cases:    map[uuid.UUID]*depositcase.DepositCase{},
			events:   map[string]shared.WebhookEventRecord{},
		},
		cars:          map[uuid.UUID]shared.CarSnapshot{},
		verifications: map[uuid.UUID]shared.VerificationSnapshot{},
	}
}

func (s *state) clone() *state {
	c := &state{
		bookings: make(map[uuid.UUID]*booking.Booking, len(s.bookings)),
		payments: make(map[uuid.UUID]*payment.Payment, len(s.payments)),
		cases:    make(map[uuid.UUID]*depositcase.DepositCase, len(s.cases)),
		events:   make(map[string]shared.WebhookEventRecord, len(s.events)),
		alerts:   append([]shared.Alert(nil), s.alerts...),
	}
	for k, v := range s.bookings {
		c.bookings[k] = cloneBooking(v)
	}
	for k, v := range s.payments {
		c.payments[k] = clonePayment(v)
	}
	for k, v := range s.cases {
		c.cases[k] = cloneCase(v)
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	return c
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &memTx{store: s, st: work}); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

func (s *Store) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()
	return fn(ctx, &memTx{store: s, st: snapshot, readOnly: true})
}

func (s *Store) CommandReads() shared.CommandReads {
	return &reads{store: s}
}

// Seeding and inspection helpers

func (s *Store) AddCar(car shared.CarSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cars[car.ID] = car
}

func (s *Store) AddVerification(v shared.VerificationSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications[v.UserID] = v
}

func (s *Store) PutBooking(b *booking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.bookings[b.ID()] = cloneBooking(b)
}

func (s *Store) PutPayment(p *payment.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.payments[p.ID] = clonePayment(p)
}

func (s *Store) PutDepositCase(c *depositcase.DepositCase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.cases[c.ID()] = cloneCase(c)
}

// FailNextPaymentUpdates makes the next n payment updates report a stale version.
func (s *Store) FailNextPaymentUpdates(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staleUpdates = n
}

func (s *Store) Booking(id uuid.UUID) *booking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.data.bookings[id]; ok {
		return cloneBooking(b)
	}
	return nil
}

func (s *Store) Payment(id uuid.UUID) *payment.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.data.payments[id]; ok {
		return clonePayment(p)
	}
	return nil
}

func (s *Store) PaymentByBooking(bookingID uuid.UUID) *payment.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.data.payments {
		if p.BookingID == bookingID {
			return clonePayment(p)
		}
	}
	return nil
}

func (s *Store) DepositCase(id uuid.UUID) *depositcase.DepositCase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.data.cases[id]; ok {
		return cloneCase(c)
	}
	return nil
}

func (s *Store) Bookings() []*booking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*booking.Booking, 0, len(s.data.bookings))
	for _, b := range s.data.bookings {
		out = append(out, cloneBooking(b))
	}
	return out
}

func (s *Store) WebhookEvent(eventID string) (shared.WebhookEventRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data.events[eventID]
	return rec, ok
}

func (s *Store) Alerts() []shared.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]shared.Alert(nil), s.data.alerts...)
}

func (s *Store) takeStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleUpdates > 0 {
		s.staleUpdates--
		return true
	}
	return false
}

type memTx struct {
	store    *Store
	st       *state
	readOnly bool
}

func (t *memTx) Bookings() shared.BookingRepository         { return &bookingRepo{t} }
func (t *memTx) Payments() shared.PaymentRepository         { return &paymentRepo{t} }
func (t *memTx) DepositCases() shared.DepositCaseRepository { return &caseRepo{t} }
func (t *memTx) WebhookEvents() shared.WebhookEventRepository {
	return &eventRepo{t}
}
func (t *memTx) Alerts() shared.AlertRepository { return &alertRepo{t} }
func (t *memTx) Reads() shared.CommandReads     { return &reads{store: t.store} }

func repoErr(kind infra.RepositoryErrorKind, msg string) error {
	return infra.WrapRepoErr(slog.Default(), kind, msg, nil)
}

func (t *memTx) writable() error {
	if t.readOnly {
		return repoErr(infra.KindDBFailure, "write in read-only transaction")
	}
	return nil
}

// Bookings

type bookingRepo struct{ tx *memTx }

func (r *bookingRepo) Create(_ context.Context, b *booking.Booking) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	for _, existing := range r.tx.st.bookings {
		if existing.ID() == b.ID() ||
			(existing.RenterID() == b.RenterID() && existing.IdempotencyKey() == b.IdempotencyKey()) {
			return repoErr(infra.KindDuplicateKey, "failed to create booking: bookings_renter_idempotency_key")
		}
	}
	r.tx.st.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *bookingRepo) Update(_ context.Context, b *booking.Booking) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	stored, ok := r.tx.st.bookings[b.ID()]
	if !ok || stored.Version() != b.Version() {
		return repoErr(infra.KindStaleVersion, "booking version changed")
	}
	b.IncrementVersion()
	r.tx.st.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *bookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	if b, ok := r.tx.st.bookings[id]; ok {
		return cloneBooking(b), nil
	}
	return nil, repoErr(infra.KindNotFound, "booking not found")
}

func (r *bookingRepo) FindByIdempotencyKey(_ context.Context, renterID uuid.UUID, key string) (*booking.Booking, error) {
	for _, b := range r.tx.st.bookings {
		if b.RenterID() == renterID && b.IdempotencyKey() == key {
			return cloneBooking(b), nil
		}
	}
	return nil, repoErr(infra.KindNotFound, "booking not found")
}

func (r *bookingRepo) HasConfirmedOverlap(_ context.Context, carID uuid.UUID, start, end time.Time) (bool, error) {
	for _, b := range r.tx.st.bookings {
		if b.CarID() != carID {
			continue
		}
		if b.Status() != booking.StatusPaid && b.Status() != booking.StatusConfirmed {
			continue
		}
		if b.DateRange().Start().Before(end) && b.DateRange().End().After(start) {
			return true, nil
		}
	}
	return false, nil
}

// Payments

type paymentRepo struct{ tx *memTx }

func (r *paymentRepo) Create(_ context.Context, p *payment.Payment) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	for _, existing := range r.tx.st.payments {
		switch {
		case existing.ID == p.ID, existing.BookingID == p.BookingID:
			return repoErr(infra.KindDuplicateKey, "failed to create payment: payments_booking_id_key")
		case p.CheckoutSessionID != "" && existing.CheckoutSessionID == p.CheckoutSessionID:
			return repoErr(infra.KindDuplicateKey, "failed to create payment: payments_checkout_session_id_key")
		}
	}
	r.tx.st.payments[p.ID] = clonePayment(p)
	return nil
}

func (r *paymentRepo) Update(_ context.Context, p *payment.Payment) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return errs.Mark(err, errs.ErrInvariantViolation)
	}
	stored, ok := r.tx.st.payments[p.ID]
	if !ok || stored.Version != p.Version || r.tx.store.takeStale() {
		return repoErr(infra.KindStaleVersion, "payment version changed")
	}
	p.Version++
	r.tx.st.payments[p.ID] = clonePayment(p)
	return nil
}

func (r *paymentRepo) findOne(match func(*payment.Payment) bool) (*payment.Payment, error) {
	for _, p := range r.tx.st.payments {
		if match(p) {
			return clonePayment(p), nil
		}
	}
	return nil, repoErr(infra.KindNotFound, "payment not found")
}

func (r *paymentRepo) FindByID(_ context.Context, id uuid.UUID) (*payment.Payment, error) {
	return r.findOne(func(p *payment.Payment) bool { return p.ID == id })
}

func (r *paymentRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	return r.findOne(func(p *payment.Payment) bool { return p.BookingID == bookingID })
}

func (r *paymentRepo) FindByCheckoutSessionID(_ context.Context, sessionID string) (*payment.Payment, error) {
	return r.findOne(func(p *payment.Payment) bool { return sessionID != "" && p.CheckoutSessionID == sessionID })
}

func (r *paymentRepo) FindByPaymentIntentID(_ context.Context, intentID string) (*payment.Payment, error) {
	return r.findOne(func(p *payment.Payment) bool { return intentID != "" && p.PaymentIntentID == intentID })
}

func (r *paymentRepo) list(limit int, match func(*payment.Payment) bool, key func(*payment.Payment) time.Time) []*payment.Payment {
	var out []*payment.Payment
	for _, p := range r.tx.st.payments {
		if match(p) {
			out = append(out, clonePayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return key(out[i]).Before(key(out[j])) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func leaseFree(p *payment.Payment, now time.Time) bool {
	return p.LeaseExpiresAt == nil || !p.LeaseExpiresAt.After(now)
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func (r *paymentRepo) ListCaptureDue(_ context.Context, now time.Time, limit int) ([]*payment.Payment, error) {
	return r.list(limit, func(p *payment.Payment) bool {
		return p.CaptureDue(now) && leaseFree(p, now)
	}, func(p *payment.Payment) time.Time { return deref(p.ManualCaptureDeadline) }), nil
}

func (r *paymentRepo) ListPayoutCandidates(_ context.Context, now time.Time, limit int) ([]*payment.Payment, error) {
	return r.list(limit, func(p *payment.Payment) bool {
		return p.PayoutStatus == payment.PayoutPending && p.PayoutBlocker(now) == ""
	}, func(p *payment.Payment) time.Time { return deref(p.ReleaseAt) }), nil
}

func (r *paymentRepo) ListTransferCandidates(_ context.Context, now time.Time, limit int) ([]*payment.Payment, error) {
	return r.list(limit, func(p *payment.Payment) bool {
		switch p.PayoutStatus {
		case payment.PayoutEligible, payment.PayoutError:
			return true
		case payment.PayoutTransferring:
			return leaseFree(p, now)
		}
		return false
	}, func(p *payment.Payment) time.Time { return deref(p.ReleaseAt) }), nil
}

func (r *paymentRepo) ListExpiredDepositWindows(_ context.Context, now time.Time, limit int) ([]*payment.Payment, error) {
	return r.list(limit, func(p *payment.Payment) bool {
		return p.DepositStatus == payment.DepositHeld &&
			p.DepositClaimWindowEndsAt != nil && p.DepositClaimWindowEndsAt.Before(now)
	}, func(p *payment.Payment) time.Time { return deref(p.DepositClaimWindowEndsAt) }), nil
}

func (r *paymentRepo) ListDepositSettlementsDue(_ context.Context, now time.Time, limit int) ([]*payment.Payment, error) {
	return r.list(limit, func(p *payment.Payment) bool {
		return p.DepositSettlementDue() && leaseFree(p, now)
	}, func(p *payment.Payment) time.Time { return p.UpdatedAt }), nil
}

func (r *paymentRepo) ListReversalsPending(_ context.Context, now time.Time, limit int) ([]*payment.Payment, error) {
	return r.list(limit, func(p *payment.Payment) bool {
		return p.PayoutStatus == payment.PayoutReversalPending && leaseFree(p, now)
	}, func(p *payment.Payment) time.Time { return p.UpdatedAt }), nil
}

// Deposit cases

type caseRepo struct{ tx *memTx }

func (r *caseRepo) Create(_ context.Context, c *depositcase.DepositCase) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	for _, existing := range r.tx.st.cases {
		if existing.PaymentID() == c.PaymentID() && existing.Status().IsPending() {
			return repoErr(infra.KindDuplicateKey, "failed to create deposit case: uq_deposit_cases_pending")
		}
	}
	r.tx.st.cases[c.ID()] = cloneCase(c)
	return nil
}

func (r *caseRepo) Update(_ context.Context, c *depositcase.DepositCase) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	stored, ok := r.tx.st.cases[c.ID()]
	if !ok || stored.Version() != c.Version() {
		return repoErr(infra.KindStaleVersion, "deposit case version changed")
	}
	c.IncrementVersion()
	r.tx.st.cases[c.ID()] = cloneCase(c)
	return nil
}

func (r *caseRepo) FindByID(_ context.Context, id uuid.UUID) (*depositcase.DepositCase, error) {
	if c, ok := r.tx.st.cases[id]; ok {
		return cloneCase(c), nil
	}
	return nil, repoErr(infra.KindNotFound, "deposit case not found")
}

func (r *caseRepo) FindPendingByPaymentID(_ context.Context, paymentID uuid.UUID) (*depositcase.DepositCase, error) {
	for _, c := range r.tx.st.cases {
		if c.PaymentID() == paymentID && c.Status().IsPending() {
			return cloneCase(c), nil
		}
	}
	return nil, repoErr(infra.KindNotFound, "deposit case not found")
}

func (r *caseRepo) FindDecidedByPaymentID(_ context.Context, paymentID uuid.UUID) (*depositcase.DepositCase, error) {
	var latest *depositcase.DepositCase
	for _, c := range r.tx.st.cases {
		if c.PaymentID() != paymentID || !c.Status().IsDecision() {
			continue
		}
		if latest == nil || c.UpdatedAt().After(latest.UpdatedAt()) {
			latest = c
		}
	}
	if latest == nil {
		return nil, repoErr(infra.KindNotFound, "deposit case not found")
	}
	return cloneCase(latest), nil
}

// Journal and alerts

type eventRepo struct{ tx *memTx }

func (r *eventRepo) Record(_ context.Context, rec shared.WebhookEventRecord) (bool, error) {
	if err := r.tx.writable(); err != nil {
		return false, err
	}
	if _, ok := r.tx.st.events[rec.EventID]; ok {
		return false, nil
	}
	r.tx.st.events[rec.EventID] = rec
	return true, nil
}

func (r *eventRepo) Exists(_ context.Context, eventID string) (bool, error) {
	_, ok := r.tx.st.events[eventID]
	return ok, nil
}

type alertRepo struct{ tx *memTx }

func (r *alertRepo) Raise(_ context.Context, alert shared.Alert) error {
	if err := r.tx.writable(); err != nil {
		return err
	}
	for _, a := range r.tx.st.alerts {
		if a.Kind == alert.Kind && a.DedupKey == alert.DedupKey {
			return nil
		}
	}
	r.tx.st.alerts = append(r.tx.st.alerts, alert)
	return nil
}

// Collaborator reads

type reads struct{ store *Store }

func (r *reads) CarByID(_ context.Context, id uuid.UUID) (*shared.CarSnapshot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if c, ok := r.store.cars[id]; ok {
		return &c, nil
	}
	return nil, repoErr(infra.KindNotFound, "car not found")
}

func (r *reads) VerificationByUserID(_ context.Context, userID uuid.UUID) (*shared.VerificationSnapshot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if v, ok := r.store.verifications[userID]; ok {
		return &v, nil
	}
	return nil, repoErr(infra.KindNotFound, "verification not found")
}

// Cloning keeps callers from mutating committed state through shared pointers.

func cloneBooking(b *booking.Booking) *booking.Booking {
	return booking.Reconstruct(
		b.ID(), b.CarID(), b.RenterID(), b.HostID(),
		b.DateRange(),
		b.TotalPrice(),
		b.Currency(),
		cloneUUID(b.PaymentID()),
		b.CheckoutSessionID(), b.IdempotencyKey(),
		b.Status(),
		cloneTime(b.CancelRequestedAt()),
		b.Version(),
		b.CreatedAt(), b.UpdatedAt(),
	)
}

func clonePayment(p *payment.Payment) *payment.Payment {
	c := *p
	c.ManualCaptureDeadline = cloneTime(p.ManualCaptureDeadline)
	c.PaidAt = cloneTime(p.PaidAt)
	c.PaymentDueAt = cloneTime(p.PaymentDueAt)
	c.DepositClaimWindowEndsAt = cloneTime(p.DepositClaimWindowEndsAt)
	c.ReleaseAt = cloneTime(p.ReleaseAt)
	c.LeaseExpiresAt = cloneTime(p.LeaseExpiresAt)
	return &c
}

func cloneCase(c *depositcase.DepositCase) *depositcase.DepositCase {
	return depositcase.Reconstruct(
		c.ID(), c.PaymentID(), c.BookingID(), c.HostID(), c.RenterID(),
		c.RequestedAmount(),
		c.Status(),
		c.ResolutionAmount(),
		c.Reason(), c.ResolutionNote(),
		c.Version(),
		c.CreatedAt(), c.UpdatedAt(),
		cloneTime(c.ResolvedAt()),
	)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
