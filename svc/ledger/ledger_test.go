package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/regdesk/pkg/records"
	"github.com/dmitrymomot/regdesk/pkg/validator"
	"github.com/dmitrymomot/regdesk/svc/ledger"
)

const regTable = "Workshop_Registrations"

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("id-%d", n.Add(1)) }
}

func newLedger(t *testing.T, opts ...ledger.Option) (*ledger.Ledger, *records.MemoryTable, *records.MemoryBackend) {
	t.Helper()
	backend := records.NewMemoryBackend()
	table := backend.Table(regTable)
	store, err := records.Open(context.Background(), backend, regTable, ledger.Headers)
	require.NoError(t, err)
	opts = append([]ledger.Option{
		ledger.WithClock(func() time.Time { return fixedNow }),
		ledger.WithIDGenerator(sequentialIDs()),
	}, opts...)
	return ledger.New(store, opts...), table, backend
}

func rawRows(t *testing.T, table *records.MemoryTable) [][]string {
	t.Helper()
	rows, err := table.Rows(context.Background())
	require.NoError(t, err)
	return rows
}

func aliceInput() ledger.Input {
	return ledger.Input{
		Name:  "Alice",
		Email: "alice@example.com",
		Details: ledger.Details{
			Contact:     "555-0100",
			ShirtNeeded: true,
			Equipment:   ledger.EquipmentBuy,
		},
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ledger.Policy
		wantErr bool
	}{
		{"", ledger.PolicySingle, false},
		{"single", ledger.PolicySingle, false},
		{" MULTI ", ledger.PolicyMulti, false},
		{"many", "", true},
	}
	for _, tt := range tests {
		got, err := ledger.ParsePolicy(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ledger.ErrInvalidPolicy)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseEquipment(t *testing.T) {
	t.Parallel()

	eq, err := ledger.ParseEquipment(" buy ")
	require.NoError(t, err)
	assert.Equal(t, ledger.EquipmentBuy, eq)

	eq, err = ledger.ParseEquipment("RETURN")
	require.NoError(t, err)
	assert.Equal(t, ledger.EquipmentReturn, eq)

	_, err = ledger.ParseEquipment("rent")
	assert.ErrorIs(t, err, ledger.ErrInvalidEquipment)
}

func TestLedger_Upsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("appends first registration", func(t *testing.T) {
		t.Parallel()

		l, table, _ := newLedger(t)
		reg, err := l.Register(ctx, aliceInput())
		require.NoError(t, err)

		assert.Equal(t, "id-1", reg.ID)
		assert.Equal(t, 200, reg.PendingAmount)
		assert.True(t, fixedNow.Equal(reg.UpdatedAt))
		assert.Equal(t, [][]string{
			ledger.Headers,
			{"Alice", "alice@example.com", "555-0100", "Yes", "Buy", "200", "2025-03-14 09:26:53", "id-1"},
		}, rawRows(t, table))
	})

	t.Run("overwrites the row of the same email", func(t *testing.T) {
		t.Parallel()

		l, table, _ := newLedger(t)
		_, err := l.Register(ctx, aliceInput())
		require.NoError(t, err)

		in := aliceInput()
		in.Email = " ALICE@example.com"
		in.Equipment = ledger.EquipmentReturn
		in.ShirtNeeded = false
		reg, err := l.Register(ctx, in)
		require.NoError(t, err)

		assert.Equal(t, "id-1", reg.ID)
		assert.Equal(t, 0, reg.PendingAmount)
		assert.Equal(t, [][]string{
			ledger.Headers,
			{"Alice", "alice@example.com", "555-0100", "No", "Return", "0", "2025-03-14 09:26:53", "id-1"},
		}, rawRows(t, table))
	})

	t.Run("legacy row without id gets one", func(t *testing.T) {
		t.Parallel()

		l, table, _ := newLedger(t)
		table.Seed(
			ledger.Headers[:7],
			[]string{"Alice", "alice@example.com", "1", "No", "Return", "0", "2024-01-01 00:00:00"},
		)
		reg, err := l.Upsert(ctx, aliceInput())
		require.NoError(t, err)
		assert.Equal(t, "id-1", reg.ID)
		assert.Len(t, rawRows(t, table), 2)
	})
}

func TestLedger_AppendIfNew(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rejects exact duplicate ignoring case and spacing", func(t *testing.T) {
		t.Parallel()

		l, table, _ := newLedger(t, ledger.WithPolicy(ledger.PolicyMulti))
		_, err := l.Register(ctx, aliceInput())
		require.NoError(t, err)

		dup := aliceInput()
		dup.Name = "  alice "
		dup.Email = "Alice@Example.com"
		dup.Equipment = "buy"
		_, err = l.Register(ctx, dup)
		assert.ErrorIs(t, err, ledger.ErrDuplicateRegistration)
		assert.Len(t, rawRows(t, table), 2)
	})

	t.Run("contact-only difference is a new registration", func(t *testing.T) {
		t.Parallel()

		l, table, _ := newLedger(t, ledger.WithPolicy(ledger.PolicyMulti))
		_, err := l.Register(ctx, aliceInput())
		require.NoError(t, err)

		other := aliceInput()
		other.Contact = "555-0199"
		reg, err := l.Register(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, "id-2", reg.ID)
		assert.Len(t, rawRows(t, table), 3)
	})
}

func TestLedger_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	l, table, _ := newLedger(t)

	in := aliceInput()
	in.Contact = "  "
	in.Equipment = "Rent"
	_, err := l.Register(ctx, in)
	require.Error(t, err)

	verrs := validator.ExtractValidationErrors(err)
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("contact"))
	assert.True(t, verrs.Has("equipment"))
	assert.False(t, verrs.Has("email"))
	assert.ErrorIs(t, err, validator.ErrValidationFailed)
	assert.Len(t, rawRows(t, table), 1)
}

func TestLedger_FeeIsDerived(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	l, table, _ := newLedger(t, ledger.WithFee(350))
	reg, err := l.Register(ctx, aliceInput())
	require.NoError(t, err)
	assert.Equal(t, 350, reg.PendingAmount)

	// A hand-edited amount cell is not trusted on read.
	rows := rawRows(t, table)
	rows[1][5] = "1"
	table.Seed(rows...)

	latest, err := l.Latest(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 350, latest.PendingAmount)
}

func TestLedger_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("edits by id keeping name", func(t *testing.T) {
		t.Parallel()

		l, table, _ := newLedger(t)
		reg, err := l.Register(ctx, aliceInput())
		require.NoError(t, err)

		updated, err := l.Update(ctx, "alice@example.com", reg.ID, ledger.Details{
			Contact:   "555-0101",
			Equipment: ledger.EquipmentReturn,
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice", updated.Name)
		assert.Equal(t, 0, updated.PendingAmount)
		assert.Equal(t, []string{"Alice", "alice@example.com", "555-0101", "No", "Return", "0", "2025-03-14 09:26:53", "id-1"},
			rawRows(t, table)[1])
	})

	t.Run("other owner is not found", func(t *testing.T) {
		t.Parallel()

		l, _, _ := newLedger(t)
		reg, err := l.Register(ctx, aliceInput())
		require.NoError(t, err)

		_, err = l.Update(ctx, "mallory@example.com", reg.ID, reg.Details())
		assert.ErrorIs(t, err, ledger.ErrRegistrationNotFound)
		assert.ErrorIs(t, err, records.ErrRowNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		l, _, _ := newLedger(t)
		_, err := l.Update(ctx, "alice@example.com", "missing", aliceInput().Details)
		assert.ErrorIs(t, err, records.ErrRowNotFound)
	})

	t.Run("multi policy rejects edit into a duplicate", func(t *testing.T) {
		t.Parallel()

		l, _, _ := newLedger(t, ledger.WithPolicy(ledger.PolicyMulti))
		first, err := l.Register(ctx, aliceInput())
		require.NoError(t, err)
		other := aliceInput()
		other.Contact = "555-0199"
		_, err = l.Register(ctx, other)
		require.NoError(t, err)

		_, err = l.Update(ctx, "alice@example.com", first.ID, other.Details)
		assert.ErrorIs(t, err, ledger.ErrDuplicateRegistration)

		// Saving unchanged details is not a duplicate of itself.
		_, err = l.Update(ctx, "alice@example.com", first.ID, first.Details())
		assert.NoError(t, err)
	})

	t.Run("interleaved writers last write wins", func(t *testing.T) {
		t.Parallel()

		l1, table, backend := newLedger(t)
		reg, err := l1.Register(ctx, aliceInput())
		require.NoError(t, err)

		store2, err := records.Open(ctx, backend, regTable, ledger.Headers)
		require.NoError(t, err)
		l2 := ledger.New(store2, ledger.WithClock(func() time.Time { return fixedNow.Add(time.Second) }))

		_, err = l1.Update(ctx, "alice@example.com", reg.ID, ledger.Details{Contact: "A", Equipment: ledger.EquipmentBuy})
		require.NoError(t, err)
		_, err = l2.Update(ctx, "alice@example.com", reg.ID, ledger.Details{Contact: "B", Equipment: ledger.EquipmentReturn})
		require.NoError(t, err)

		rows := rawRows(t, table)
		require.Len(t, rows, 2)
		assert.Equal(t, "B", rows[1][2])
		assert.Equal(t, "2025-03-14 09:26:54", rows[1][6])

		latest, err := l1.Latest(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "B", latest.Contact)
	})
}

func TestLedger_UpdateMatching(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	l, table, _ := newLedger(t)
	table.Seed(
		ledger.Headers,
		[]string{"Alice", "Alice@Example.com", "555-0100", "Yes", "buy", "200", "2024-01-01 00:00:00", ""},
	)

	original := ledger.Details{Contact: "555-0100", ShirtNeeded: true, Equipment: ledger.EquipmentBuy}
	updated, err := l.UpdateMatching(ctx, "alice@example.com", original, ledger.Details{
		Contact:   "555-0100",
		Equipment: ledger.EquipmentReturn,
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", updated.ID)
	assert.Equal(t, []string{"Alice", "alice@example.com", "555-0100", "No", "Return", "0", "2025-03-14 09:26:53", "id-1"},
		rawRows(t, table)[1])

	_, err = l.UpdateMatching(ctx, "alice@example.com", original, original)
	assert.ErrorIs(t, err, ledger.ErrRegistrationNotFound)
}

func TestLedger_UpdateMatching_Multi(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	l, table, _ := newLedger(t, ledger.WithPolicy(ledger.PolicyMulti))
	table.Seed(
		ledger.Headers,
		[]string{"Alice", "alice@example.com", "555-0100", "Yes", "Buy", "200", "2024-01-01 00:00:00", ""},
		[]string{"Alice", "alice@example.com", "555-0199", "No", "Return", "0", "2024-01-02 00:00:00", ""},
	)

	original := ledger.Details{Contact: "555-0100", ShirtNeeded: true, Equipment: ledger.EquipmentBuy}
	saved, err := l.UpdateMatching(ctx, "alice@example.com", original, original)
	require.NoError(t, err)
	assert.Equal(t, "id-1", saved.ID)
	assert.Equal(t, "id-1", rawRows(t, table)[1][7])

	again, err := l.Update(ctx, "alice@example.com", "id-1", original)
	require.NoError(t, err)
	assert.Equal(t, "id-1", again.ID)

	_, err = l.UpdateMatching(ctx, "alice@example.com",
		ledger.Details{Contact: "555-0199", Equipment: ledger.EquipmentReturn},
		original,
	)
	assert.ErrorIs(t, err, ledger.ErrDuplicateRegistration)
	assert.Empty(t, rawRows(t, table)[2][7])
}

func TestLedger_Reads(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	l, _, _ := newLedger(t, ledger.WithPolicy(ledger.PolicyMulti))
	for _, in := range []ledger.Input{
		aliceInput(),
		{Name: "Bob", Email: "bob@example.com", Details: ledger.Details{Contact: "1", Equipment: ledger.EquipmentReturn}},
		{Name: "Alice", Email: "alice@example.com", Details: ledger.Details{Contact: "2", Equipment: ledger.EquipmentReturn, ShirtNeeded: true}},
	} {
		_, err := l.Register(ctx, in)
		require.NoError(t, err)
	}

	regs, err := l.ListByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "555-0100", regs[0].Contact)

	latest, err := l.Latest(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "2", latest.Contact)

	_, err = l.Latest(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ledger.ErrRegistrationNotFound)

	all, err := l.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, ledger.Summary{Registrations: 3, Buying: 1, Shirts: 2, PendingTotal: 200}, all)

	bob, err := l.Summary(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, ledger.Summary{Registrations: 1}, bob)
}

func TestLedger_StoreErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("lookup failure", func(t *testing.T) {
		t.Parallel()

		store := &MockRecordStore{}
		store.On("Find", mock.Anything, mock.Anything).Return(nil, 0, boom)
		l := ledger.New(store)

		_, err := l.Register(ctx, aliceInput())
		assert.ErrorIs(t, err, boom)
		store.AssertNotCalled(t, "AppendRow", mock.Anything, mock.Anything)
	})

	t.Run("append failure", func(t *testing.T) {
		t.Parallel()

		store := &MockRecordStore{}
		store.On("Find", mock.Anything, mock.Anything).Return(nil, 0, records.ErrRowNotFound)
		store.On("AppendRow", mock.Anything, mock.Anything).Return(boom)
		l := ledger.New(store, ledger.WithPolicy(ledger.PolicyMulti))

		_, err := l.Register(ctx, aliceInput())
		assert.ErrorIs(t, err, boom)
		store.AssertExpectations(t)
	})

	t.Run("load failure", func(t *testing.T) {
		t.Parallel()

		store := &MockRecordStore{}
		store.On("LoadAll", mock.Anything).Return(nil, boom)
		l := ledger.New(store)

		_, err := l.Summary(ctx, "")
		assert.ErrorIs(t, err, boom)
	})
}
