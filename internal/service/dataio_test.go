package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"showpro/internal/config"
	"showpro/internal/csvio"
	apperrors "showpro/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDataService(t *testing.T, store *fakeDataStore, limits config.ImportConfig) *DataService {
	t.Helper()
	schema, err := csvio.DefaultSchema()
	require.NoError(t, err)
	return NewDataService(schema, store, limits)
}

func TestImportSkipsBadRowAndContinues(t *testing.T) {
	store := &fakeDataStore{}
	svc := newDataService(t, store, config.ImportConfig{MaxRows: 100})

	in := "Name,Email\nAlice,alice@example.com\n,bob@example.com\nCarol,\n"
	res, err := svc.Import(context.Background(), "artists", strings.NewReader(in), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Row)
	assert.Contains(t, res.Errors[0].Reason, "name")

	require.Len(t, store.inserted, 2)
	assert.Equal(t, "Alice", store.inserted[0].Values["name"])
	assert.Equal(t, 3, store.inserted[1].Line)
	assert.Nil(t, store.inserted[1].Values["email"])
	assert.Equal(t, []string{"name", "stage_name", "email", "phone", "agent_name", "default_fee", "notes", "active"}, store.columns)
}

func TestImportDedupesByName(t *testing.T) {
	store := &fakeDataStore{names: map[string]map[string]int64{
		"clients.name": {"acme": 1},
	}}
	svc := newDataService(t, store, config.ImportConfig{})

	in := "client,phone\nACME,1\nNew Co,2\nnew co,3\n"
	res, err := svc.Import(context.Background(), "clients", strings.NewReader(in), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 1, res.Errors[0].Row)
	assert.Equal(t, 3, res.Errors[1].Row)
	assert.Contains(t, res.Errors[0].Reason, "duplicate name")
}

func TestImportResolvesLookupsAndReportsInsertFailures(t *testing.T) {
	store := &fakeDataStore{
		names: map[string]map[string]int64{
			"artists.name":      {"the trio": 7},
			"bookings.job_code": {"sp24-00001": 1},
		},
		badLines: map[int]bool{3: true},
	}
	svc := newDataService(t, store, config.ImportConfig{})

	in := "Job,Date,Artist,Fee\n" +
		"SP24-00001,2024-03-01,The Trio,100\n" +
		",2024-03-02,the trio,200\n" +
		",2024-03-03,,300\n" +
		",2024-03-04,Unknown Band,400\n"
	res, err := svc.Import(context.Background(), "bookings", strings.NewReader(in), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 3, res.Skipped)
	require.Len(t, res.Errors, 3)
	assert.Equal(t, []int{1, 3, 4}, []int{res.Errors[0].Row, res.Errors[1].Row, res.Errors[2].Row})
	assert.Contains(t, res.Errors[1].Reason, "foreign key")
	assert.Contains(t, res.Errors[2].Reason, "Unknown Band")

	require.Len(t, store.inserted, 1)
	assert.Equal(t, int64(7), store.inserted[0].Values["artist_id"])
	assert.Nil(t, store.inserted[0].Values["job_code"])
}

func TestImportUsesMappingOverrides(t *testing.T) {
	store := &fakeDataStore{}
	svc := newDataService(t, store, config.ImportConfig{})

	in := "Performer,Contact\nAlice,a@example.com\n"
	_, err := svc.Import(context.Background(), "artists", strings.NewReader(in), nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	res, err := svc.Import(context.Background(), "artists", strings.NewReader(in),
		csvio.Mapping{"Performer": "name", "Contact": "email"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, "a@example.com", store.inserted[0].Values["email"])
}

func TestImportLimits(t *testing.T) {
	svc := newDataService(t, &fakeDataStore{}, config.ImportConfig{MaxBytes: 20, MaxRows: 2})
	ctx := context.Background()

	_, err := svc.Import(ctx, "artists", strings.NewReader("name\n"+strings.Repeat("x", 40)+"\n"), nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Import(ctx, "artists", strings.NewReader("name\na\nb\nc\n"), nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Import(ctx, "user_roles", strings.NewReader("name\na\n"), nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Import(ctx, "invoices", strings.NewReader("number\na\n"), nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPreview(t *testing.T) {
	svc := newDataService(t, &fakeDataStore{}, config.ImportConfig{})

	var in strings.Builder
	in.WriteString("Venue Name,Town\n")
	for i := 0; i < 12; i++ {
		in.WriteString("Hall,Leeds\n")
	}

	p, err := svc.Preview(context.Background(), "venues", strings.NewReader(in.String()))
	require.NoError(t, err)
	assert.Equal(t, 12, p.Total)
	assert.Len(t, p.Rows, 10)
	assert.Equal(t, map[string]string{"Venue Name": "name"}, p.Mapping)
}

func TestExport(t *testing.T) {
	store := &fakeDataStore{export: [][]any{
		{int64(1), "INV-000001", int64(3), nil, nil, []byte("100.00"), []byte("20.00"), []byte("120.00"), nil, nil, false},
	}}
	svc := newDataService(t, store, config.ImportConfig{})

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), "invoices", &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,number,client_id,booking_id,batch_id,net_amount,vat_amount,total_amount,issued_on,due_on,paid", lines[0])
	assert.Equal(t, "1,INV-000001,3,,,100.00,20.00,120.00,,,false", lines[1])

	assert.ErrorIs(t, svc.CheckExportable("user_roles"), apperrors.ErrValidation)
}
