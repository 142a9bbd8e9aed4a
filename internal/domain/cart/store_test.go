package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

const testKey = "cart:session:test"

type StoreSuite struct {
	suite.Suite
	ctx       context.Context
	persister *MemoryPersister
	hook      *logtest.Hook
	log       *logrus.Logger
	store     *Store

	beans  product.Product
	brew   product.Product
	legacy product.Product
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.persister = NewMemoryPersister()
	s.log, s.hook = logtest.NewNullLogger()
	s.store = NewStore(s.ctx, s.persister, testKey, s.log)

	s.beans = product.Product{
		ID:       "6f9d3c52-1e7a-4b8f-a0c4-2d5e8f1b3a01",
		Name:     "House Espresso Beans",
		Category: "beans",
		Price:    decimal.NewFromInt(10),
		InStock:  true,
	}
	s.brew = product.Product{
		ID:       "6f9d3c52-1e7a-4b8f-a0c4-2d5e8f1b3a02",
		Name:     "Nitro Cold Brew",
		Category: "ready-to-drink",
		Price:    decimal.NewFromInt(5),
		InStock:  true,
	}
	s.legacy = product.Product{ID: "17", Name: "Old Catalog Item", Price: decimal.NewFromInt(3)}
}

func (s *StoreSuite) reload() *Store {
	return NewStore(s.ctx, s.persister, testKey, s.log)
}

func (s *StoreSuite) TestAddTwiceMergesIntoOneLine() {
	for _, size := range Sizes() {
		s.SetupTest()

		s.Require().NoError(s.store.AddToCart(s.ctx, s.beans, 1, size))
		s.Require().NoError(s.store.AddToCart(s.ctx, s.beans, 1, size))

		lines := s.store.Lines()
		s.Require().Len(lines, 1, "size %s", size)
		s.Equal(Key{ProductID: s.beans.ID, Size: size}, lines[0].Key())
		s.Equal(2, s.store.ItemCount())
	}
}

func (s *StoreSuite) TestSizesAreSeparateLines() {
	s.Require().NoError(s.store.AddToCart(s.ctx, s.beans, 1, SizeSmall))
	s.Require().NoError(s.store.AddToCart(s.ctx, s.beans, 2, SizeLarge))

	s.Len(s.store.Lines(), 2)
	s.Equal(3, s.store.ItemCount())
}

func (s *StoreSuite) TestNonCanonicalProductIsRefused() {
	s.Require().NoError(s.store.AddToCart(s.ctx, s.beans, 1, SizeSmall))
	before := s.store.Lines()

	err := s.store.AddToCart(s.ctx, s.legacy, 1, SizeSmall)

	s.NoError(err)
	s.Equal(before, s.store.Lines())
	s.Require().NotNil(s.hook.LastEntry())
	s.Equal(logrus.WarnLevel, s.hook.LastEntry().Level)
	s.Equal("17", s.hook.LastEntry().Data["product_id"])
}

func (s *StoreSuite) TestInvalidQuantityAndSizeAreRefused() {
	s.NoError(s.store.AddToCart(s.ctx, s.beans, 0, SizeSmall))
	s.NoError(s.store.AddToCart(s.ctx, s.beans, 1, CupSize("venti")))

	s.True(s.store.IsEmpty())
	s.Len(s.hook.AllEntries(), 2)
}

func (s *StoreSuite) TestUpdateQuantityZeroIsRemove() {
	viaUpdate := NewStore(s.ctx, NewMemoryPersister(), "a", s.log)
	viaRemove := NewStore(s.ctx, NewMemoryPersister(), "b", s.log)
	for _, st := range []*Store{viaUpdate, viaRemove} {
		s.Require().NoError(st.AddToCart(s.ctx, s.beans, 2, SizeMedium))
		s.Require().NoError(st.AddToCart(s.ctx, s.brew, 1, SizeSmall))
	}

	s.Require().NoError(viaUpdate.UpdateQuantity(s.ctx, s.beans.ID, 0, SizeMedium))
	s.Require().NoError(viaRemove.RemoveFromCart(s.ctx, s.beans.ID, SizeMedium))

	s.Equal(lineKeys(viaRemove.Lines()), lineKeys(viaUpdate.Lines()))
	s.Equal(viaRemove.ItemCount(), viaUpdate.ItemCount())
}

func (s *StoreSuite) TestUpdateQuantitySetsAbsoluteValue() {
	s.Require().NoError(s.store.AddToCart(s.ctx, s.beans, 2, SizeSmall))

	s.Require().NoError(s.store.UpdateQuantity(s.ctx, s.beans.ID, 7, SizeSmall))
	s.Equal(7, s.store.ItemCount())

	// Absent key is a no-op
	s.Require().NoError(s.store.UpdateQuantity(s.ctx, s.beans.ID, 3, SizeLarge))
	s.Len(s.store.Lines(), 1)
	s.Equal(7, s.store.ItemCount())
}

func (s *StoreSuite) TestRemoveAbsentIsNoop() {
	s.Require().NoError(s.store.AddToCart(s.ctx, s.beans, 1, SizeSmall))

	s.NoError(s.store.RemoveFromCart(s.ctx, s.brew.ID, SizeSmall))
	s.Len(s.store.Lines(), 1)
}

func (s *StoreSuite) TestTotals() {
	s.Require().NoError(s.store.AddToCart(s.ctx, s.beans, 2, SizeSmall))
	s.Require().NoError(s.store.AddToCart(s.ctx, s.brew, 1, SizeSmall))

	s.True(decimal.NewFromInt(25).Equal(s.store.Total()), "got %s", s.store.Total())
	s.True(decimal.NewFromInt(25).Equal(s.store.ChargedTotal()))

	s.Require().NoError(s.store.UpdateQuantity(s.ctx, s.brew.ID, 0, SizeSmall))
	s.Require().NoError(s.store.AddToCart(s.ctx, s.brew, 1, SizeLarge))

	totals := s.store.Totals()
	s.True(decimal.NewFromInt(25).Equal(totals.SubTotal))
	s.True(decimal.NewFromInt(40).Equal(totals.SizeSurcharge))
	s.True(decimal.NewFromInt(65).Equal(totals.Total))
	s.Equal(2, totals.LineCount)
	s.Equal(3, totals.ItemCount)
}

func (s *StoreSuite) TestSnapshotRoundTrip() {
	s.Require().NoError(s.store.AddToCart(s.ctx, s.beans, 2, SizeMedium))
	s.Require().NoError(s.store.AddToCart(s.ctx, s.brew, 1, SizeSmall))
	s.Require().NoError(s.store.AddToCart(s.ctx, s.beans, 1, SizeLarge))

	restored := s.reload()

	original := s.store.Lines()
	got := restored.Lines()
	s.Require().Len(got, len(original))
	for i := range original {
		s.Equal(original[i].Key(), got[i].Key())
		s.Equal(original[i].Quantity, got[i].Quantity)
		s.True(original[i].Product.Price.Equal(got[i].Product.Price))
		s.Equal(original[i].Product.Name, got[i].Product.Name)
	}
	s.True(s.store.ChargedTotal().Equal(restored.ChargedTotal()))
}

func (s *StoreSuite) TestClearIsPersisted() {
	s.Require().NoError(s.store.AddToCart(s.ctx, s.beans, 2, SizeMedium))
	s.Require().NoError(s.store.ClearCart(s.ctx))

	s.True(s.store.IsEmpty())
	s.True(s.reload().IsEmpty())
}

func (s *StoreSuite) TestCorruptSnapshotStartsEmpty() {
	s.persister.Put(testKey, []byte("{not json"))

	st := s.reload()

	s.True(st.IsEmpty())
	s.Require().NotNil(s.hook.LastEntry())
	s.Equal(logrus.ErrorLevel, s.hook.LastEntry().Level)
}

func (s *StoreSuite) TestRestoreDropsInvalidLinesAndMergesDuplicates() {
	data, err := json.Marshal(Snapshot{Items: []Line{
		{Product: s.legacy, Quantity: 2, Size: SizeSmall},
		{Product: s.beans, Quantity: -4, Size: CupSize("venti")},
		{Product: s.beans, Quantity: 1, Size: CupSize("venti")},
		{Product: s.beans, Quantity: 0, Size: SizeMedium},
		{Product: s.beans, Quantity: 1, Size: SizeMedium},
		{Product: s.beans, Quantity: 2, Size: SizeMedium},
		{Product: s.brew, Quantity: 1},
	}})
	s.Require().NoError(err)
	s.persister.Put(testKey, data)

	st := s.reload()

	s.Equal([]Key{
		{ProductID: s.beans.ID, Size: SizeMedium},
		{ProductID: s.brew.ID, Size: SizeSmall},
	}, lineKeys(st.Lines()))
	s.Equal(4, st.ItemCount())
	s.True(decimal.NewFromInt(95).Equal(st.ChargedTotal()), "got %s", st.ChargedTotal())

	s.Len(s.hook.AllEntries(), 4)
	for _, entry := range s.hook.AllEntries() {
		s.Equal(logrus.WarnLevel, entry.Level)
	}
}

func (s *StoreSuite) TestSaveFailureIsReportedButMutationStands() {
	s.persister.FailSaves(errors.New("redis down"))

	err := s.store.AddToCart(s.ctx, s.beans, 1, SizeSmall)

	s.Error(err)
	s.Equal(1, s.store.ItemCount())
	s.True(s.reload().IsEmpty())
}

func lineKeys(lines []Line) []Key {
	keys := make([]Key, len(lines))
	for i, l := range lines {
		keys[i] = l.Key()
	}
	return keys
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want CupSize
		ok   bool
	}{
		{in: "", want: SizeSmall, ok: true},
		{in: "medium", want: SizeMedium, ok: true},
		{in: "large", want: SizeLarge, ok: true},
		{in: "Large", want: CupSize("Large"), ok: false},
	}

	for _, tt := range tests {
		got, ok := ParseSize(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestChargedUnitPrice(t *testing.T) {
	line := Line{Product: product.Product{Price: decimal.RequireFromString("4.50")}, Size: SizeMedium}

	require.True(t, decimal.RequireFromString("24.50").Equal(line.ChargedUnitPrice()))
	require.True(t, decimal.RequireFromString("4.50").Equal(line.UnitPrice()))
}

func TestServiceOpenUsesSessionKey(t *testing.T) {
	persister := NewMemoryPersister()
	cfg := &config.Config{Cart: config.CartConfig{KeyPrefix: "cart:session:"}}
	svc := NewService(persister, cfg, logrus.New())
	ctx := context.Background()

	first := svc.Open(ctx, "abc")
	require.NoError(t, first.AddToCart(ctx, product.Product{
		ID:    "6f9d3c52-1e7a-4b8f-a0c4-2d5e8f1b3a09",
		Name:  "Drip Kettle",
		Price: decimal.NewFromInt(30),
	}, 1, SizeSmall))

	_, err := persister.Load(ctx, "cart:session:abc")
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Open(ctx, "abc").ItemCount())
	assert.Equal(t, 0, svc.Open(ctx, "other").ItemCount())
}
