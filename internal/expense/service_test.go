package expense_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/expense/store"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0

	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newService(t *testing.T, opts ...expense.Option) (*expense.Service, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	opts = append([]expense.Option{
		expense.WithClock(func() time.Time { return fixedNow }),
		expense.WithIDGenerator(sequentialIDs()),
	}, opts...)

	return expense.NewService(mem, opts...), mem
}

func TestService_Add(t *testing.T) {
	type args struct {
		fields expense.Fields
	}

	type testCase struct {
		name        string
		requireNote bool
		args        args
		wantErr     error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{fields: expense.Fields{Amount: 80, Category: expense.CategoryFood, Note: "Lunch"}},
		},
		{
			name: "EmptyNoteAllowed",
			args: args{fields: expense.Fields{Amount: 5, Category: expense.CategoryOthers}},
		},
		{
			name:    "ZeroAmount",
			args:    args{fields: expense.Fields{Amount: 0, Category: expense.CategoryFood, Note: "x"}},
			wantErr: expense.ErrInvalidAmount,
		},
		{
			name:    "NegativeAmount",
			args:    args{fields: expense.Fields{Amount: -3, Category: expense.CategoryFood, Note: "x"}},
			wantErr: expense.ErrInvalidAmount,
		},
		{
			name:    "UnknownCategory",
			args:    args{fields: expense.Fields{Amount: 3, Category: "rent", Note: "x"}},
			wantErr: expense.ErrInvalidCategory,
		},
		{
			name:        "RequiredNoteMissing",
			requireNote: true,
			args:        args{fields: expense.Fields{Amount: 3, Category: expense.CategoryFood, Note: "  "}},
			wantErr:     expense.ErrEmptyNote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t, expense.WithRequiredNote(tt.requireNote))
			ctx := context.Background()

			got, err := svc.Add(ctx, tt.args.fields)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, expense.ErrInvalid)
				assert.Nil(t, got)
				assert.Empty(t, svc.List(ctx))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "id-1", got.ID)
			assert.Equal(t, tt.args.fields.Amount, got.Amount)
			assert.Equal(t, tt.args.fields.Category, got.Category)
			assert.Equal(t, tt.args.fields.Note, got.Note)
			assert.True(t, got.CreatedAt.Equal(fixedNow))

			listed := svc.List(ctx)
			require.Len(t, listed, 1)
			assert.Equal(t, *got, listed[0])
		})
	}
}

func TestService_Add_PrependsAndUsesFreshIDs(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.Add(ctx, expense.Fields{Amount: 1, Category: expense.CategoryFood, Note: "a"})
	require.NoError(t, err)

	second, err := svc.Add(ctx, expense.Fields{Amount: 2, Category: expense.CategoryShopping, Note: "b"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	listed := svc.List(ctx)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)
}

func TestService_Add_DefaultGeneratorIsUnique(t *testing.T) {
	svc := expense.NewService(store.NewMemory())
	ctx := context.Background()

	seen := make(map[string]bool)

	for range 20 {
		e, err := svc.Add(ctx, expense.Fields{Amount: 1, Category: expense.CategoryFood})
		require.NoError(t, err)
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		assert.WithinDuration(t, time.Now(), e.CreatedAt, time.Minute)

		seen[e.ID] = true
	}
}

func TestService_Update(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Add(ctx, expense.Fields{Amount: 80, Category: expense.CategoryFood, Note: "Lunch"})
	require.NoError(t, err)

	before := svc.List(ctx)[0]

	updated, err := svc.Update(ctx, created.ID, expense.Patch{Amount: new(int64(5))})
	require.NoError(t, err)

	after := svc.List(ctx)[0]

	assert.Equal(t, int64(5), updated.Amount)
	assert.Equal(t, int64(5), after.Amount)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.Equal(t, before.Category, after.Category)
	assert.Equal(t, before.Note, after.Note)
}

func TestService_Update_AllFields(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Add(ctx, expense.Fields{Amount: 80, Category: expense.CategoryFood, Note: "Lunch"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, expense.Patch{
		Amount:   new(int64(12)),
		Category: new(expense.CategoryTransportation),
		Note:     new("Bus"),
	})
	require.NoError(t, err)

	assert.Equal(t, expense.Expense{
		ID:        created.ID,
		Amount:    12,
		Category:  expense.CategoryTransportation,
		Note:      "Bus",
		CreatedAt: created.CreatedAt,
	}, *updated)
}

func TestService_Update_NotFound(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, expense.Fields{Amount: 80, Category: expense.CategoryFood, Note: "Lunch"})
	require.NoError(t, err)

	before := svc.List(ctx)

	got, err := svc.Update(ctx, "missing", expense.Patch{Amount: new(int64(5))})
	assert.ErrorIs(t, err, expense.ErrNotFound)
	assert.Nil(t, got)
	assert.Equal(t, before, svc.List(ctx))
}

func TestService_Update_RejectsInvalidMerge(t *testing.T) {
	svc, _ := newService(t, expense.WithRequiredNote(true))
	ctx := context.Background()

	created, err := svc.Add(ctx, expense.Fields{Amount: 80, Category: expense.CategoryFood, Note: "Lunch"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, expense.Patch{Amount: new(int64(0))})
	assert.ErrorIs(t, err, expense.ErrInvalidAmount)

	_, err = svc.Update(ctx, created.ID, expense.Patch{Note: new("")})
	assert.ErrorIs(t, err, expense.ErrEmptyNote)

	assert.Equal(t, int64(80), svc.List(ctx)[0].Amount)
	assert.Equal(t, "Lunch", svc.List(ctx)[0].Note)
}

func TestService_Delete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	keep, err := svc.Add(ctx, expense.Fields{Amount: 1, Category: expense.CategoryFood})
	require.NoError(t, err)

	drop, err := svc.Add(ctx, expense.Fields{Amount: 2, Category: expense.CategoryFood})
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, drop.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	listed := svc.List(ctx)
	require.Len(t, listed, 1)
	assert.Equal(t, keep.ID, listed[0].ID)

	removed, err = svc.Delete(ctx, drop.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestService_ImportBulk(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, expense.Fields{Amount: 10, Category: expense.CategoryFood, Note: "today"})
	require.NoError(t, err)

	rows := []expense.ImportRow{
		{Amount: 3, Category: expense.CategoryGroceries, Note: "older", CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{Amount: 4, Category: expense.CategoryShopping, Note: "newer", CreatedAt: time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)},
	}

	n, err := svc.ImportBulk(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	listed := svc.List(ctx)
	require.Len(t, listed, 3)
	assert.Equal(t, "today", listed[0].Note)
	assert.Equal(t, "newer", listed[1].Note)
	assert.Equal(t, "older", listed[2].Note)
	assert.True(t, listed[2].CreatedAt.Equal(rows[0].CreatedAt))
	assert.NotEqual(t, listed[1].ID, listed[2].ID)
}

func TestService_ImportBulk_InvalidRowRejectsBatch(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	rows := []expense.ImportRow{
		{Amount: 3, Category: expense.CategoryFood, Note: "ok", CreatedAt: fixedNow},
		{Amount: 0, Category: expense.CategoryFood, Note: "bad", CreatedAt: fixedNow},
	}

	n, err := svc.ImportBulk(ctx, rows)
	assert.ErrorIs(t, err, expense.ErrInvalidAmount)
	assert.Contains(t, err.Error(), "row 2")
	assert.Zero(t, n)
	assert.Empty(t, svc.List(ctx))
}

func TestService_ImportBulk_EmptyTouchesNoStorage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storage := expense.NewMockStorage(ctrl)
	svc := expense.NewService(storage)

	n, err := svc.ImportBulk(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_ReplaceAll_DoesNotValidate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	records := []expense.Expense{
		{ID: "a", Amount: 0, Category: "whatever", CreatedAt: fixedNow},
		{ID: "b", Amount: 7, Category: expense.CategoryFood, Note: "n", CreatedAt: fixedNow.Add(-time.Hour)},
	}

	require.NoError(t, svc.ReplaceAll(ctx, records))

	listed := svc.List(ctx)
	require.Len(t, listed, 2)
	assert.Equal(t, "a", listed[0].ID)
	assert.Equal(t, int64(0), listed[0].Amount)
	assert.Equal(t, expense.Category("whatever"), listed[0].Category)
}

func TestService_List_SwallowsReadFailures(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *expense.MockStorage)
	}

	tests := []testCase{
		{
			name: "NothingStored",
			setupMock: func(m *expense.MockStorage) {
				m.EXPECT().Load(gomock.Any()).Return(nil, nil)
			},
		},
		{
			name: "StorageError",
			setupMock: func(m *expense.MockStorage) {
				m.EXPECT().Load(gomock.Any()).Return(nil, errors.New("disk unavailable"))
			},
		},
		{
			name: "CorruptPayload",
			setupMock: func(m *expense.MockStorage) {
				m.EXPECT().Load(gomock.Any()).Return([]byte(`{"not":"a list"`), nil)
			},
		},
		{
			name: "BadTimestamp",
			setupMock: func(m *expense.MockStorage) {
				m.EXPECT().Load(gomock.Any()).
					Return([]byte(`[{"id":"a","amount":5,"category":"food","createdAt":"yesterday"}]`), nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storage := expense.NewMockStorage(ctrl)
			tt.setupMock(storage)

			got := expense.NewService(storage).List(context.Background())
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestService_List_LegacyRecordWithoutNote(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	payload := `[{"id":"legacy","amount":42,"category":"groceries","createdAt":"2023-05-01T10:00:00.000Z"}]`
	require.NoError(t, mem.Save(ctx, []byte(payload)))

	listed := expense.NewService(mem).List(ctx)
	require.Len(t, listed, 1)
	assert.Equal(t, "", listed[0].Note)
	assert.Equal(t, int64(42), listed[0].Amount)
	assert.Equal(t, expense.CategoryGroceries, listed[0].Category)
	assert.True(t, listed[0].CreatedAt.Equal(time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)))
}

func TestService_SaveError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storage := expense.NewMockStorage(ctrl)
	storage.EXPECT().Load(gomock.Any()).Return(nil, nil)
	storage.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("read-only"))

	svc := expense.NewService(storage)

	got, err := svc.Add(context.Background(), expense.Fields{Amount: 1, Category: expense.CategoryFood})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "saving expenses")
	assert.Nil(t, got)
}

func TestService_Delete_UnknownIDDoesNotWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storage := expense.NewMockStorage(ctrl)
	storage.EXPECT().Load(gomock.Any()).Return(nil, nil)

	removed, err := expense.NewService(storage).Delete(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestService_ImportBulk_SortsFarDates(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	rows := []expense.ImportRow{
		{Amount: 1, Category: expense.CategoryFood, Note: "y2024", CreatedAt: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)},
		{Amount: 1, Category: expense.CategoryFood, Note: "y3024", CreatedAt: time.Date(3024, 1, 15, 12, 0, 0, 0, time.UTC)},
		{Amount: 1, Category: expense.CategoryFood, Note: "y1024", CreatedAt: time.Date(1024, 1, 15, 12, 0, 0, 0, time.UTC)},
	}

	_, err := svc.ImportBulk(ctx, rows)
	require.NoError(t, err)

	notes := []string{}
	for _, e := range svc.List(ctx) {
		notes = append(notes, e.Note)
	}

	assert.Equal(t, []string{"y3024", "y2024", "y1024"}, notes)
}

func TestService_MutationsFailOnStorageReadError(t *testing.T) {
	type testCase struct {
		name   string
		mutate func(svc *expense.Service) error
	}

	note := "x"

	tests := []testCase{
		{
			name: "Add",
			mutate: func(svc *expense.Service) error {
				_, err := svc.Add(context.Background(), expense.Fields{Amount: 1, Category: expense.CategoryFood})
				return err
			},
		},
		{
			name: "Update",
			mutate: func(svc *expense.Service) error {
				_, err := svc.Update(context.Background(), "a", expense.Patch{Note: &note})
				return err
			},
		},
		{
			name: "Delete",
			mutate: func(svc *expense.Service) error {
				_, err := svc.Delete(context.Background(), "a")
				return err
			},
		},
		{
			name: "ImportBulk",
			mutate: func(svc *expense.Service) error {
				_, err := svc.ImportBulk(context.Background(), []expense.ImportRow{
					{Amount: 1, Category: expense.CategoryFood, CreatedAt: fixedNow},
				})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			storage := expense.NewMockStorage(ctrl)
			storage.EXPECT().Load(gomock.Any()).Return(nil, errors.New("database is locked"))
			storage.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)

			err := tt.mutate(expense.NewService(storage))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "loading expenses")
		})
	}
}

func TestService_Add_CorruptPayloadStartsEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storage := expense.NewMockStorage(ctrl)
	storage.EXPECT().Load(gomock.Any()).Return([]byte(`not json`), nil)
	storage.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	_, err := expense.NewService(storage).Add(context.Background(), expense.Fields{Amount: 1, Category: expense.CategoryFood})
	require.NoError(t, err)
}
