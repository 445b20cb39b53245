package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"showpro/internal/cache"
	apperrors "showpro/internal/errors"
	"showpro/internal/models"
	"showpro/internal/repository"

	"github.com/jmoiron/sqlx"
)

type published struct {
	subject string
	data    any
}

type fakePublisher struct {
	events []published
	err    error
}

func (p *fakePublisher) Publish(subject string, data any) error {
	p.events = append(p.events, published{subject: subject, data: data})
	return p.err
}

func (p *fakePublisher) subjects() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.subject
	}
	return out
}

// fakeTx runs fn with a nil transaction; before runs first when set
type fakeTx struct {
	calls  int
	before func()
}

func (f *fakeTx) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	f.calls++
	if f.before != nil {
		f.before()
	}
	return fn(nil)
}

type fakeBookings struct {
	rows     map[int64]*models.BookingView
	nextID   int64
	seq      int
	flags    map[string][]int64
	failOn   string
	insertTx int
}

func newFakeBookings(views ...models.BookingView) *fakeBookings {
	f := &fakeBookings{rows: map[int64]*models.BookingView{}, flags: map[string][]int64{}}
	for i := range views {
		v := views[i]
		f.rows[v.ID] = &v
		f.nextID = max(f.nextID, v.ID)
	}
	return f
}

func (f *fakeBookings) Get(ctx context.Context, id int64) (*models.Booking, error) {
	v, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	b := v.Booking
	return &b, nil
}

func (f *fakeBookings) Insert(ctx context.Context, item *models.Booking) error {
	if f.failOn != "" && item.BookingDate.String() == f.failOn {
		return errors.New("insert failed")
	}
	f.nextID++
	item.ID = f.nextID
	f.rows[item.ID] = &models.BookingView{Booking: *item}
	return nil
}

func (f *fakeBookings) InsertTx(ctx context.Context, tx *sqlx.Tx, item *models.Booking) error {
	f.insertTx++
	return f.Insert(ctx, item)
}

func (f *fakeBookings) Update(ctx context.Context, id int64, item *models.Booking) error {
	if _, ok := f.rows[id]; !ok {
		return apperrors.ErrNotFound
	}
	item.ID = id
	f.rows[id].Booking = *item
	return nil
}

func (f *fakeBookings) Delete(ctx context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeBookings) NextJobCode(ctx context.Context, ext sqlx.QueryerContext) (string, error) {
	f.seq++
	return fmt.Sprintf("SP24-%05d", f.seq), nil
}

func (f *fakeBookings) ListView(ctx context.Context, flt models.BookingFilter) ([]models.BookingView, error) {
	out := []models.BookingView{}
	for id := int64(1); id <= f.nextID; id++ {
		v, ok := f.rows[id]
		if !ok {
			continue
		}
		d := v.BookingDate.Time()
		if flt.From != nil && d.Before(flt.From.Time()) {
			continue
		}
		if flt.To != nil && d.After(flt.To.Time()) {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (f *fakeBookings) GetView(ctx context.Context, id int64) (*models.BookingView, error) {
	v, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (f *fakeBookings) ListViewByIDs(ctx context.Context, ext sqlx.QueryerContext, ids []int64) ([]models.BookingView, error) {
	out := []models.BookingView{}
	for _, id := range ids {
		if v, ok := f.rows[id]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeBookings) SetFlag(ctx context.Context, ext sqlx.ExecerContext, flag string, value bool, ids ...int64) error {
	f.flags[flag] = append(f.flags[flag], ids...)
	for _, id := range ids {
		v, ok := f.rows[id]
		if !ok {
			continue
		}
		switch flag {
		case "client_paid":
			v.ClientPaid = value
		case "artist_paid":
			v.ArtistPaid = value
		}
	}
	return nil
}

func (f *fakeBookings) MarkInvoiced(ctx context.Context, ext sqlx.ExecerContext, ids ...int64) error {
	for _, id := range ids {
		if v, ok := f.rows[id]; ok && v.Invoiced {
			return fmt.Errorf("%w: booking %d is already invoiced", apperrors.ErrConflict, id)
		}
	}
	for _, id := range ids {
		if v, ok := f.rows[id]; ok {
			v.Invoiced = true
		}
	}
	return nil
}

// fakeTable is an in-memory Store for any entity with an int64 ID.
type fakeTable[T any] struct {
	rows   []T
	id     func(*T) *int64
	failed error
}

func (f *fakeTable[T]) List(ctx context.Context, q string) ([]T, error) {
	if f.failed != nil {
		return nil, f.failed
	}
	return append([]T{}, f.rows...), nil
}

func (f *fakeTable[T]) Get(ctx context.Context, id int64) (*T, error) {
	for i := range f.rows {
		if *f.id(&f.rows[i]) == id {
			item := f.rows[i]
			return &item, nil
		}
	}
	return nil, nil
}

func (f *fakeTable[T]) Insert(ctx context.Context, item *T) error {
	if f.failed != nil {
		return f.failed
	}
	*f.id(item) = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *item)
	return nil
}

func (f *fakeTable[T]) InsertTx(ctx context.Context, tx *sqlx.Tx, item *T) error {
	return f.Insert(ctx, item)
}

func (f *fakeTable[T]) Update(ctx context.Context, id int64, item *T) error {
	for i := range f.rows {
		if *f.id(&f.rows[i]) == id {
			*f.id(item) = id
			f.rows[i] = *item
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (f *fakeTable[T]) Delete(ctx context.Context, id int64) error {
	for i := range f.rows {
		if *f.id(&f.rows[i]) == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type fakeIndex struct {
	docs    map[string]models.SearchDoc
	deleted []string
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[string]models.SearchDoc{}}
}

func (f *fakeIndex) Index(ctx context.Context, doc models.SearchDoc) error {
	if f.err != nil {
		return f.err
	}
	f.docs[fmt.Sprintf("%s-%d", doc.Kind, doc.ID)] = doc
	return nil
}

func (f *fakeIndex) Delete(ctx context.Context, kind string, id int64) error {
	f.deleted = append(f.deleted, fmt.Sprintf("%s-%d", kind, id))
	return f.err
}

func (f *fakeIndex) Search(ctx context.Context, q string, kinds []string, size int) ([]models.SearchDoc, error) {
	out := []models.SearchDoc{}
	for _, d := range f.docs {
		if strings.Contains(strings.ToLower(d.Name), strings.ToLower(q)) {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeDataStore struct {
	names    map[string]map[string]int64
	inserted []repository.ImportRow
	columns  []string
	badLines map[int]bool
	export   [][]any
}

func (f *fakeDataStore) NameIndex(ctx context.Context, table, column string) (map[string]int64, error) {
	if m, ok := f.names[table+"."+column]; ok {
		return m, nil
	}
	return map[string]int64{}, nil
}

func (f *fakeDataStore) ExportRows(ctx context.Context, table string, columns []string) ([][]any, error) {
	f.columns = columns
	return f.export, nil
}

func (f *fakeDataStore) InsertRows(ctx context.Context, table string, columns []string, rows []repository.ImportRow, batchSize int) (int, []repository.RowFailure, error) {
	f.columns = columns
	var failures []repository.RowFailure
	for _, r := range rows {
		if f.badLines[r.Line] {
			failures = append(failures, repository.RowFailure{Line: r.Line, Err: errors.New("violates foreign key constraint")})
			continue
		}
		f.inserted = append(f.inserted, r)
	}
	return len(f.inserted), failures, nil
}

type fakeRoleStore struct {
	rows    map[string]models.UserRole
	lookups int
}

func (f *fakeRoleStore) GetByUserID(ctx context.Context, userID string) (*models.UserRole, error) {
	f.lookups++
	r, ok := f.rows[userID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeRoleStore) List(ctx context.Context) ([]models.UserRole, error) {
	out := []models.UserRole{}
	for _, r := range f.rows {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRoleStore) Upsert(ctx context.Context, userID, role string, email *string) (*models.UserRole, error) {
	r := models.UserRole{UserID: userID, Role: role, Email: email}
	f.rows[userID] = r
	return &r, nil
}

type fakeCache struct {
	roles       map[string]string
	invalidated []string
	dashboards  map[string]any
	gets        int
}

func newFakeCache() *fakeCache {
	return &fakeCache{roles: map[string]string{}, dashboards: map[string]any{}}
}

func (f *fakeCache) GetRole(ctx context.Context, userID string) (string, error) {
	if r, ok := f.roles[userID]; ok {
		return r, nil
	}
	return "", cache.ErrMiss
}

func (f *fakeCache) SetRole(ctx context.Context, userID, role string) error {
	f.roles[userID] = role
	return nil
}

func (f *fakeCache) InvalidateRole(ctx context.Context, userID string) error {
	f.invalidated = append(f.invalidated, userID)
	delete(f.roles, userID)
	return nil
}

func (f *fakeCache) GetDashboard(ctx context.Context, key string, dest any) error {
	f.gets++
	return cache.ErrMiss
}

func (f *fakeCache) SetDashboard(ctx context.Context, key string, value any) error {
	f.dashboards[key] = value
	return nil
}

type fakeEmails struct {
	fakeTable[models.EmailQueueItem]
	sentAt   time.Time
	existing map[string]bool
}

func newFakeEmails(items ...models.EmailQueueItem) *fakeEmails {
	f := &fakeEmails{existing: map[string]bool{}}
	f.id = func(e *models.EmailQueueItem) *int64 { return &e.ID }
	f.rows = items
	return f
}

func (f *fakeEmails) ListFiltered(ctx context.Context, flt models.EmailFilter) ([]models.EmailQueueItem, error) {
	out := []models.EmailQueueItem{}
	for _, e := range f.rows {
		if flt.Approved != nil && e.Approved != *flt.Approved {
			continue
		}
		if flt.Sent != nil && e.Sent != *flt.Sent {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEmails) SetApproved(ctx context.Context, id int64, approved bool) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Approved = approved
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (f *fakeEmails) MarkSent(ctx context.Context, ids []int64, at time.Time) (int, error) {
	idx := map[int64]int{}
	for i, e := range f.rows {
		idx[e.ID] = i
	}
	seen := map[int64]bool{}
	for _, id := range ids {
		i, ok := idx[id]
		if !ok || f.rows[i].Sent {
			return 0, fmt.Errorf("%w: email %d", apperrors.ErrConflict, id)
		}
		seen[id] = true
	}
	for id := range seen {
		f.rows[idx[id]].Sent = true
	}
	f.sentAt = at
	return len(seen), nil
}

func (f *fakeEmails) PendingDispatch(ctx context.Context, limit int) ([]models.EmailQueueItem, error) {
	out := []models.EmailQueueItem{}
	for _, e := range f.rows {
		if e.Approved && !e.Sent && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmails) ExistsSince(ctx context.Context, bookingID int64, kind string, since time.Time) (bool, error) {
	return f.existing[fmt.Sprintf("%d/%s", bookingID, kind)], nil
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }
