package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Karlitosantana/reima-resale/internal/entity"
	"github.com/Karlitosantana/reima-resale/internal/normalize"

	"github.com/golang/mock/gomock"
)

func TestItemService_Export(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)
	m.local.EXPECT().Load(gomock.Any()).Return([]normalize.RawItem{
		{ID: "e-1", Name: "Export me", Status: "sold", SalePrice: "2400"},
	}, nil).Times(1)
	m.local.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	s := m.newService(nil, "", false)

	payload, err := s.Export(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var exported []entity.Item
	if err := json.Unmarshal(payload, &exported); err != nil {
		t.Fatalf("export payload is not valid JSON: %v", err)
	}
	if len(exported) != 1 || exported[0].ID != "e-1" {
		t.Fatalf("exported = %v, want the single record", exported)
	}
	if exported[0].SalePrice != 2400 {
		t.Errorf("sale price = %v, want canonical 2400", exported[0].SalePrice)
	}
}

func TestItemService_Import(t *testing.T) {
	testCases := []struct {
		desc    string
		payload string
		mocks   func(m *serviceMocks)
		wantErr error
		wantLen int
	}{
		{
			desc:    "ValidPayloadReplacesCollection",
			payload: `[{"id":"i-1","name":"Imported overall","status":"sold","salePrice":"1200"}]`,
			mocks: func(m *serviceMocks) {
				m.local.EXPECT().Store(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, items []entity.Item) error {
						if len(items) != 1 || items[0].SalePrice != 1200 {
							t.Errorf("stored = %v, want one canonical record", items)
						}
						return nil
					}).Times(1)
				m.cache.EXPECT().Purge().Times(1)
				m.notifier.EXPECT().Changed(gomock.Any()).Return(nil).Times(1)
			},
			wantLen: 1,
		},
		{
			desc:    "EmptyArrayAccepted",
			payload: `[]`,
			mocks: func(m *serviceMocks) {
				m.local.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(1)
				m.cache.EXPECT().Purge().Times(1)
				m.notifier.EXPECT().Changed(gomock.Any()).Return(nil).Times(1)
			},
			wantLen: 0,
		},
		{
			desc:    "NotAnArrayRejected",
			payload: `{"id":"i-1","name":"Single object"}`,
			mocks:   func(m *serviceMocks) {},
			wantErr: entity.ErrInvalidData,
		},
		{
			desc:    "MalformedJSONRejected",
			payload: `[{"id":`,
			mocks:   func(m *serviceMocks) {},
			wantErr: entity.ErrInvalidData,
		},
		{
			desc:    "FirstRecordMissingNameRejected",
			payload: `[{"id":"i-1"}]`,
			mocks:   func(m *serviceMocks) {},
			wantErr: entity.ErrInvalidData,
		},
		{
			desc:    "FirstRecordMissingIDRejected",
			payload: `[{"name":"No id"}]`,
			mocks:   func(m *serviceMocks) {},
			wantErr: entity.ErrInvalidData,
		},
		{
			desc:    "StoreFailurePropagates",
			payload: `[{"id":"i-1","name":"Imported"}]`,
			mocks: func(m *serviceMocks) {
				m.local.EXPECT().Store(gomock.Any(), gomock.Any()).
					Return(entity.ErrStorageCapacity).Times(1)
			},
			wantErr: entity.ErrStorageCapacity,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newServiceMocks(ctrl)
			tc.mocks(m)

			s := m.newService(nil, "", false)

			items, err := s.Import(context.Background(), []byte(tc.payload))

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(items) != tc.wantLen {
				t.Fatalf("imported %d items, want %d", len(items), tc.wantLen)
			}
		})
	}
}

// Export output must survive a round trip through Import unchanged.
func TestItemService_ExportImportRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newServiceMocks(ctrl)
	m.local.EXPECT().Load(gomock.Any()).Return([]normalize.RawItem{
		{ID: "rt-1", Name: "Round trip", Status: "sold", SalePrice: float64(900), PurchasePrice: float64(400)},
	}, nil).Times(1)
	m.local.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	s := m.newService(nil, "", false)

	payload, err := s.Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var stored []entity.Item
	m.local.EXPECT().Store(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, items []entity.Item) error {
			stored = items
			return nil
		}).Times(1)
	m.cache.EXPECT().Purge().Times(1)
	m.notifier.EXPECT().Changed(gomock.Any()).Return(nil).Times(1)

	imported, err := s.Import(context.Background(), payload)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if len(imported) != 1 || len(stored) != 1 {
		t.Fatalf("imported/stored = %d/%d, want 1/1", len(imported), len(stored))
	}
	if stored[0].ID != "rt-1" || stored[0].SalePrice != 900 {
		t.Errorf("round-tripped record = %+v, want original values", stored[0])
	}
	if len(stored[0].Sales) != 1 {
		t.Errorf("sales = %v, want the synthesized entry preserved", stored[0].Sales)
	}
}
