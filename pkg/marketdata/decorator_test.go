package marketdata_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/mocks"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type DecoratorTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	source *mocks.MockSource
}

func TestDecoratorSuite(t *testing.T) {
	suite.Run(t, new(DecoratorTestSuite))
}

func (suite *DecoratorTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.source = mocks.NewMockSource(suite.ctrl)
	suite.source.EXPECT().Name().Return("fake").AnyTimes()
}

func (suite *DecoratorTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *DecoratorTestSuite) TestCacheServesRepeatedFetch() {
	series := mocks.Series("AAPL", 5)
	suite.source.EXPECT().Fetch(gomock.Any(), "AAPL", marketdata.PeriodOneMonth).Return(series, nil).Times(1)

	cached := marketdata.NewCachedSource(suite.source, time.Minute)
	suite.Equal("fake", cached.Name())

	for i := 0; i < 3; i++ {
		got, err := cached.Fetch(context.Background(), "AAPL", marketdata.PeriodOneMonth)
		suite.NoError(err)
		suite.Equal(5, got.Len())
	}

	suite.Equal(1, cached.Len())
}

func (suite *DecoratorTestSuite) TestCacheKeysByPeriod() {
	suite.source.EXPECT().Fetch(gomock.Any(), "AAPL", gomock.Any()).Return(mocks.Series("AAPL", 5), nil).Times(2)

	cached := marketdata.NewCachedSource(suite.source, time.Minute)
	_, _ = cached.Fetch(context.Background(), "AAPL", marketdata.PeriodOneMonth)
	_, _ = cached.Fetch(context.Background(), "AAPL", marketdata.PeriodOneYear)
}

func (suite *DecoratorTestSuite) TestCacheExpires() {
	suite.source.EXPECT().Fetch(gomock.Any(), "AAPL", marketdata.PeriodOneMonth).Return(mocks.Series("AAPL", 5), nil).Times(2)

	cached := marketdata.NewCachedSource(suite.source, time.Nanosecond)
	_, _ = cached.Fetch(context.Background(), "AAPL", marketdata.PeriodOneMonth)
	time.Sleep(time.Millisecond)
	_, _ = cached.Fetch(context.Background(), "AAPL", marketdata.PeriodOneMonth)
}

func (suite *DecoratorTestSuite) TestCacheDoesNotStoreErrors() {
	fetchErr := errors.New("upstream down")

	gomock.InOrder(
		suite.source.EXPECT().Fetch(gomock.Any(), "AAPL", marketdata.PeriodOneMonth).Return(types.PriceSeries{}, fetchErr),
		suite.source.EXPECT().Fetch(gomock.Any(), "AAPL", marketdata.PeriodOneMonth).Return(mocks.Series("AAPL", 3), nil),
	)

	cached := marketdata.NewCachedSource(suite.source, time.Minute)

	_, err := cached.Fetch(context.Background(), "AAPL", marketdata.PeriodOneMonth)
	suite.ErrorIs(err, fetchErr)

	got, err := cached.Fetch(context.Background(), "AAPL", marketdata.PeriodOneMonth)
	suite.NoError(err)
	suite.Equal(3, got.Len())

	cached.ClearCache()
	suite.Equal(0, cached.Len())
}

func (suite *DecoratorTestSuite) TestThrottleSpacesCalls() {
	suite.source.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).Return(types.EmptySeries("X"), nil).Times(3)

	throttled := marketdata.NewThrottledSource(suite.source, 20*time.Millisecond)
	suite.Equal("fake", throttled.Name())

	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := throttled.Fetch(context.Background(), "X", marketdata.PeriodOneDay)
			suite.NoError(err)
		}()
	}

	wg.Wait()

	suite.GreaterOrEqual(time.Since(start), 35*time.Millisecond)
}

func (suite *DecoratorTestSuite) TestThrottleHonoursCancellation() {
	suite.source.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).Return(types.EmptySeries("X"), nil).Times(1)

	throttled := marketdata.NewThrottledSource(suite.source, time.Hour)
	_, err := throttled.Fetch(context.Background(), "X", marketdata.PeriodOneDay)
	suite.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = throttled.Fetch(ctx, "X", marketdata.PeriodOneDay)
	suite.Error(err)
}
