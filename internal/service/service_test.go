package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/auth"
	mock_auth "github.com/Karlitosantana/reima-resale/internal/auth/mock"
	"github.com/Karlitosantana/reima-resale/internal/entity"
	"github.com/Karlitosantana/reima-resale/internal/normalize"
	mock_notify "github.com/Karlitosantana/reima-resale/internal/notify/mock"
	"github.com/Karlitosantana/reima-resale/internal/service"
	mock_service "github.com/Karlitosantana/reima-resale/internal/service/mock"
	mock_cache "github.com/Karlitosantana/reima-resale/pkg/cache/mock"
	mock_logger "github.com/Karlitosantana/reima-resale/pkg/logger/mock"
	mock_metric "github.com/Karlitosantana/reima-resale/pkg/metric/mock"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
)

type serviceMocks struct {
	local    *mock_service.MockLocalStore
	remote   *mock_service.MockRemoteStore
	provider *mock_auth.MockProvider
	notifier *mock_notify.MockNotifier
	logger   *mock_logger.MockLogger
	metrics  *mock_metric.MockStorage
	cache    *mock_cache.MockCache[string, *entity.Item]
}

func newServiceMocks(ctrl *gomock.Controller) *serviceMocks {
	m := &serviceMocks{
		local:    mock_service.NewMockLocalStore(ctrl),
		remote:   mock_service.NewMockRemoteStore(ctrl),
		provider: mock_auth.NewMockProvider(ctrl),
		notifier: mock_notify.NewMockNotifier(ctrl),
		logger:   mock_logger.NewMockLogger(ctrl),
		metrics:  mock_metric.NewMockStorage(ctrl),
		cache:    mock_cache.NewMockCache[string, *entity.Item](ctrl),
	}

	m.cache.EXPECT().SetOnEvicted(gomock.Any()).AnyTimes()
	m.logger.EXPECT().Ctx(gomock.Any()).Return(m.logger).AnyTimes()
	m.logger.EXPECT().LogAttrs(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	return m
}

func fixedNormalizer() *normalize.Normalizer {
	return &normalize.Normalizer{
		Now: func() time.Time {
			return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
		},
		NewID: uuid.NewString,
	}
}

func (m *serviceMocks) newService(remote service.RemoteStore, adminEmail string, demoSeed bool) *service.ItemService {
	return service.NewItemService(
		m.local,
		remote,
		fixedNormalizer(),
		m.provider,
		auth.AdminEmailPolicy(adminEmail),
		m.notifier,
		m.logger,
		m.metrics,
		m.cache,
		5*time.Minute,
		1000,
		demoSeed,
	)
}

func generateFakeItem() *entity.Item {
	return &entity.Item{
		ID:             uuid.NewString(),
		Name:           gofakeit.ProductName(),
		Category:       entity.CategoryJackets,
		Condition:      entity.ConditionGood,
		PurchasePrice:  float64(gofakeit.Number(100, 2000)),
		PurchaseDate:   "2024-01-10",
		PurchaseSource: gofakeit.Company(),
		Status:         entity.StatusActive,
		Images:         []string{},
		Quantity:       1,
		Sales:          []entity.Sale{},
		CreatedAt:      time.Now().UnixMilli(),
	}
}

func TestItemService_SaveItem(t *testing.T) {
	adminIdentity := &auth.Identity{ID: "u-1", Email: "owner@example.com"}

	testCases := []struct {
		desc      string
		setup     func() *entity.Item
		useRemote bool
		mocks     func(m *serviceMocks, item *entity.Item)
		wantErr   error
	}{
		{
			desc:  "LocalOnly_Success",
			setup: generateFakeItem,
			mocks: func(m *serviceMocks, item *entity.Item) {
				m.local.EXPECT().Load(gomock.Any()).Return(nil, nil).Times(1)
				m.local.EXPECT().Store(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, items []entity.Item) error {
						if len(items) != 1 || items[0].ID != item.ID {
							t.Errorf("stored items = %v, want single item %s", items, item.ID)
						}
						return nil
					}).Times(1)
				m.cache.EXPECT().Put(item.ID, gomock.Any(), gomock.Any()).Times(1)
				m.notifier.EXPECT().Changed(gomock.Any()).Return(nil).Times(1)
			},
		},
		{
			desc: "LocalOnly_ReplacesExisting",
			setup: func() *entity.Item {
				item := generateFakeItem()
				item.ID = "existing"
				return item
			},
			mocks: func(m *serviceMocks, item *entity.Item) {
				m.local.EXPECT().Load(gomock.Any()).Return([]normalize.RawItem{
					{ID: "existing", Name: "Old name"},
					{ID: "other", Name: "Other"},
				}, nil).Times(1)
				m.local.EXPECT().Store(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, items []entity.Item) error {
						if len(items) != 2 {
							t.Fatalf("stored %d items, want 2", len(items))
						}
						if items[0].Name != item.Name {
							t.Errorf("existing item not replaced, name = %q", items[0].Name)
						}
						return nil
					}).Times(1)
				m.cache.EXPECT().Put(item.ID, gomock.Any(), gomock.Any()).Times(1)
				m.notifier.EXPECT().Changed(gomock.Any()).Return(nil).Times(1)
			},
		},
		{
			desc: "InvalidItem_EmptyName",
			setup: func() *entity.Item {
				item := generateFakeItem()
				item.Name = "   "
				return item
			},
			mocks:   func(m *serviceMocks, item *entity.Item) {},
			wantErr: entity.ErrInvalidData,
		},
		{
			desc: "InvalidItem_NegativePurchasePrice",
			setup: func() *entity.Item {
				item := generateFakeItem()
				item.PurchasePrice = -1
				return item
			},
			mocks:   func(m *serviceMocks, item *entity.Item) {},
			wantErr: entity.ErrInvalidData,
		},
		{
			desc:      "Remote_NotAuthenticated",
			setup:     generateFakeItem,
			useRemote: true,
			mocks: func(m *serviceMocks, item *entity.Item) {
				m.local.EXPECT().Load(gomock.Any()).Return(nil, nil).Times(1)
				m.local.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(1)
				m.cache.EXPECT().Put(item.ID, gomock.Any(), gomock.Any()).Times(1)
				m.provider.EXPECT().CurrentUser(gomock.Any()).Return(nil, nil).Times(1)
				// Local state changed, so the notification still fires.
				m.notifier.EXPECT().Changed(gomock.Any()).Return(nil).Times(1)
			},
			wantErr: entity.ErrNotAuthenticated,
		},
		{
			desc:      "Remote_Success",
			setup:     generateFakeItem,
			useRemote: true,
			mocks: func(m *serviceMocks, item *entity.Item) {
				m.local.EXPECT().Load(gomock.Any()).Return(nil, nil).Times(1)
				m.local.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(1)
				m.cache.EXPECT().Put(item.ID, gomock.Any(), gomock.Any()).Times(1)
				m.provider.EXPECT().CurrentUser(gomock.Any()).Return(adminIdentity, nil).Times(1)
				m.remote.EXPECT().Upsert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, saved *entity.Item) error {
						if saved.ID != item.ID {
							t.Errorf("upserted id = %q, want %q", saved.ID, item.ID)
						}
						return nil
					}).Times(1)
				m.notifier.EXPECT().Changed(gomock.Any()).Return(nil).Times(1)
			},
		},
		{
			desc:      "Remote_UpsertFailsAfterLocalWrite",
			setup:     generateFakeItem,
			useRemote: true,
			mocks: func(m *serviceMocks, item *entity.Item) {
				m.local.EXPECT().Load(gomock.Any()).Return(nil, nil).Times(1)
				m.local.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(1)
				m.cache.EXPECT().Put(item.ID, gomock.Any(), gomock.Any()).Times(1)
				m.provider.EXPECT().CurrentUser(gomock.Any()).Return(adminIdentity, nil).Times(1)
				m.remote.EXPECT().Upsert(gomock.Any(), gomock.Any()).
					Return(errors.New("connection refused")).Times(1)
				m.notifier.EXPECT().Changed(gomock.Any()).Return(nil).Times(1)
			},
			wantErr: errors.New("connection refused"),
		},
		{
			desc:  "LocalWriteFailureIsNotFatal",
			setup: generateFakeItem,
			mocks: func(m *serviceMocks, item *entity.Item) {
				m.local.EXPECT().Load(gomock.Any()).Return(nil, entity.ErrStorageCapacity).Times(1)
				m.cache.EXPECT().Put(item.ID, gomock.Any(), gomock.Any()).Times(1)
				m.notifier.EXPECT().Changed(gomock.Any()).Return(nil).Times(1)
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newServiceMocks(ctrl)
			item := tc.setup()
			tc.mocks(m, item)

			var remote service.RemoteStore
			if tc.useRemote {
				remote = m.remote
			}
			s := m.newService(remote, "", false)

			err := s.SaveItem(context.Background(), item)

			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tc.wantErr)
			}
			if errors.Is(tc.wantErr, entity.ErrInvalidData) ||
				errors.Is(tc.wantErr, entity.ErrNotAuthenticated) {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected error to wrap %v, got %v", tc.wantErr, err)
				}
			}
		})
	}
}

func TestItemService_ListItems_Local(t *testing.T) {
	t.Run("MigratesLegacyShapesAndPersists", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		m.local.EXPECT().Load(gomock.Any()).Return([]normalize.RawItem{
			{ID: "legacy-1", Name: "Old overall", Status: "sold", SalePrice: "2400", PurchasePrice: "1500"},
		}, nil).Times(1)
		m.local.EXPECT().Store(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, items []entity.Item) error {
				if len(items) != 1 {
					t.Fatalf("persisted %d items, want 1", len(items))
				}
				if items[0].SalePrice != 2400 {
					t.Errorf("sale price = %v, want coerced 2400", items[0].SalePrice)
				}
				if len(items[0].Sales) != 1 {
					t.Errorf("sales = %v, want synthesized entry", items[0].Sales)
				}
				return nil
			}).Times(1)

		s := m.newService(nil, "", true)

		items, err := s.ListItems(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 1 || items[0].ID != "legacy-1" {
			t.Fatalf("items = %v, want the migrated record", items)
		}
	})

	t.Run("SeedsDemoDataWhenEmpty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		m.local.EXPECT().Load(gomock.Any()).Return(nil, nil).Times(1)
		m.local.EXPECT().Store(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, items []entity.Item) error {
				if len(items) == 0 {
					t.Error("expected demo items to be persisted")
				}
				return nil
			}).Times(1)

		s := m.newService(nil, "", true)

		items, err := s.ListItems(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) == 0 {
			t.Fatal("expected demo items")
		}
	})

	t.Run("NoSeedingWhenDisabled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		m.local.EXPECT().Load(gomock.Any()).Return(nil, nil).Times(1)

		s := m.newService(nil, "", false)

		items, err := s.ListItems(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 0 {
			t.Fatalf("items = %v, want empty", items)
		}
	})
}

func TestItemService_ListItems_Remote(t *testing.T) {
	identity := &auth.Identity{ID: "u-1", Email: "owner@example.com"}

	t.Run("NoUserSoftDegradesToEmpty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		m.provider.EXPECT().CurrentUser(gomock.Any()).Return(nil, nil).Times(1)

		s := m.newService(m.remote, "", true)

		items, err := s.ListItems(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if items == nil || len(items) != 0 {
			t.Fatalf("items = %v, want empty non-nil", items)
		}
	})

	t.Run("RemoteRowsNormalized", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		m.provider.EXPECT().CurrentUser(gomock.Any()).Return(identity, nil).Times(1)
		m.remote.EXPECT().List(gomock.Any(), uint64(1000)).Return([]normalize.RawItem{
			{ID: "r-1", Name: "Remote overall", Status: "sold", RowSalePrice: float64(2900)},
		}, nil).Times(1)

		s := m.newService(m.remote, "", true)

		items, err := s.ListItems(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 1 || items[0].SalePrice != 2900 {
			t.Fatalf("items = %v, want row-level sale price applied", items)
		}
	})

	t.Run("RemoteFailureFallsBackToLocal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		m.provider.EXPECT().CurrentUser(gomock.Any()).Return(identity, nil).Times(1)
		m.remote.EXPECT().List(gomock.Any(), uint64(1000)).
			Return(nil, errors.New("connection refused")).Times(1)
		m.metrics.EXPECT().IncrementFallbacks("list").Times(1)
		m.local.EXPECT().Load(gomock.Any()).Return([]normalize.RawItem{
			{ID: "cached-1", Name: "Cached jacket"},
		}, nil).Times(1)

		s := m.newService(m.remote, "", true)

		items, err := s.ListItems(context.Background())
		if err != nil {
			t.Fatalf("expected fallback, got error: %v", err)
		}
		if len(items) != 1 || items[0].ID != "cached-1" {
			t.Fatalf("items = %v, want the cached record", items)
		}
	})

	t.Run("EmptyRemoteMigratesLocalData", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		// ListItems itself, then one per SaveItem during migration.
		m.provider.EXPECT().CurrentUser(gomock.Any()).Return(identity, nil).Times(3)
		m.remote.EXPECT().List(gomock.Any(), uint64(1000)).Return([]normalize.RawItem{}, nil).Times(1)
		// populateRemote load plus one read-modify-write per migrated item.
		m.local.EXPECT().Load(gomock.Any()).Return([]normalize.RawItem{
			{ID: "l-1", Name: "First"},
			{ID: "l-2", Name: "Second"},
		}, nil).Times(3)
		m.local.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(2)
		m.cache.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
		m.remote.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil).Times(2)
		m.notifier.EXPECT().Changed(gomock.Any()).Return(nil).Times(2)

		s := m.newService(m.remote, "", true)

		items, err := s.ListItems(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("items = %v, want both migrated records", items)
		}
	})
}

func TestItemService_DeleteItem(t *testing.T) {
	adminIdentity := &auth.Identity{ID: "u-1", Email: "owner@example.com"}
	otherIdentity := &auth.Identity{ID: "u-2", Email: "guest@example.com"}

	t.Run("LocalOnly_RemovesAndNotifies", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		m.local.EXPECT().Load(gomock.Any()).Return([]normalize.RawItem{
			{ID: "keep", Name: "Keep"},
			{ID: "drop", Name: "Drop"},
		}, nil).Times(1)
		m.local.EXPECT().Store(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, items []entity.Item) error {
				if len(items) != 1 || items[0].ID != "keep" {
					t.Errorf("stored items = %v, want only the kept record", items)
				}
				return nil
			}).Times(1)
		m.cache.EXPECT().Purge().Times(1)
		m.notifier.EXPECT().Changed(gomock.Any()).Return(nil).Times(1)

		s := m.newService(nil, "", false)

		if err := s.DeleteItem(context.Background(), "drop"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Remote_PolicyDeniesNonAdmin", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		m.local.EXPECT().Load(gomock.Any()).Return(nil, nil).Times(1)
		m.local.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(1)
		m.cache.EXPECT().Purge().Times(1)
		m.provider.EXPECT().CurrentUser(gomock.Any()).Return(otherIdentity, nil).Times(1)
		m.notifier.EXPECT().Changed(gomock.Any()).Return(nil).Times(1)

		s := m.newService(m.remote, "owner@example.com", false)

		err := s.DeleteItem(context.Background(), "any")
		if !errors.Is(err, entity.ErrNotAuthorized) {
			t.Fatalf("expected ErrNotAuthorized, got %v", err)
		}
	})

	t.Run("Remote_AdminDeletes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		m.local.EXPECT().Load(gomock.Any()).Return(nil, nil).Times(1)
		m.local.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(1)
		m.cache.EXPECT().Purge().Times(1)
		m.provider.EXPECT().CurrentUser(gomock.Any()).Return(adminIdentity, nil).Times(1)
		m.remote.EXPECT().Delete(gomock.Any(), "item-x").Return(nil).Times(1)
		m.notifier.EXPECT().Changed(gomock.Any()).Return(nil).Times(1)

		s := m.newService(m.remote, "owner@example.com", false)

		if err := s.DeleteItem(context.Background(), "item-x"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("EmptyIDRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		s := m.newService(nil, "", false)

		if err := s.DeleteItem(context.Background(), ""); !errors.Is(err, entity.ErrInvalidData) {
			t.Fatalf("expected ErrInvalidData, got %v", err)
		}
	})
}

func TestItemService_GetItem(t *testing.T) {
	t.Run("CacheHit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		cached := generateFakeItem()
		m.cache.EXPECT().Get(cached.ID).Return(cached, true).Times(1)

		s := m.newService(nil, "", false)

		item, err := s.GetItem(context.Background(), cached.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item != cached {
			t.Fatal("expected the cached instance")
		}
	})

	t.Run("CacheMissLoadsCollection", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		m.cache.EXPECT().Get("wanted").Return(nil, false).Times(1)
		m.local.EXPECT().Load(gomock.Any()).Return([]normalize.RawItem{
			{ID: "other", Name: "Other"},
			{ID: "wanted", Name: "Wanted"},
		}, nil).Times(1)
		m.local.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).Times(1)
		m.cache.EXPECT().Put("wanted", gomock.Any(), gomock.Any()).Times(1)

		s := m.newService(nil, "", false)

		item, err := s.GetItem(context.Background(), "wanted")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Name != "Wanted" {
			t.Fatalf("item = %+v, want the matching record", item)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		m := newServiceMocks(ctrl)
		m.cache.EXPECT().Get("missing").Return(nil, false).Times(1)
		m.local.EXPECT().Load(gomock.Any()).Return(nil, nil).Times(1)

		s := m.newService(nil, "", false)

		if _, err := s.GetItem(context.Background(), "missing"); !errors.Is(err, entity.ErrDataNotFound) {
			t.Fatalf("expected ErrDataNotFound, got %v", err)
		}
	})
}
