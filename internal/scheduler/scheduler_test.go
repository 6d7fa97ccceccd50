package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-analysis/internal/indicator"
	"github.com/rxtech-lab/argo-analysis/internal/pipeline"
	"github.com/rxtech-lab/argo-analysis/internal/scheduler"
	"github.com/rxtech-lab/argo-analysis/internal/trend"
	"github.com/rxtech-lab/argo-analysis/mocks"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type SchedulerTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	source *mocks.MockSource
	runner *pipeline.Runner
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

func (suite *SchedulerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.source = mocks.NewMockSource(suite.ctrl)
	suite.source.EXPECT().Name().Return("mock").AnyTimes()

	engine, err := indicator.NewEngine(indicator.DefaultParams())
	suite.Require().NoError(err)
	classifier, err := trend.NewClassifier(trend.DefaultThresholds())
	suite.Require().NoError(err)

	suite.runner = pipeline.NewRunner(suite.source, engine, classifier)
}

func (suite *SchedulerTestSuite) TestRegisterValidation() {
	s := scheduler.NewScheduler(suite.runner, nil, nil)

	_, err := s.Register(scheduler.Watch{Schedule: "not a schedule", Symbols: []string{"AAPL"}})
	suite.Equal(errors.ErrCodeInvalidConfiguration, errors.GetCode(err))

	_, err = s.Register(scheduler.Watch{Schedule: "@hourly"})
	suite.Equal(errors.ErrCodeInvalidTicker, errors.GetCode(err))

	_, err = s.Register(scheduler.Watch{Schedule: "*/5 * * * *", Symbols: []string{"aapl"}})
	suite.NoError(err)
	suite.Equal(1, s.Entries())
}

func (suite *SchedulerTestSuite) TestRunNowDeliversBatch() {
	suite.source.EXPECT().Fetch(gomock.Any(), "AAPL", marketdata.PeriodOneMonth).Return(mocks.Series("AAPL", 30), nil)

	var got *pipeline.BatchResult
	s := scheduler.NewScheduler(suite.runner, nil, func(batch *pipeline.BatchResult) { got = batch })

	s.RunNow(scheduler.Watch{Symbols: []string{"AAPL"}, Period: marketdata.PeriodOneMonth})
	suite.Require().NotNil(got)
	suite.Len(got.Successful(), 1)
}

func (suite *SchedulerTestSuite) TestScheduledRun() {
	suite.source.EXPECT().Fetch(gomock.Any(), "MSFT", gomock.Any()).Return(mocks.Series("MSFT", 30), nil).MinTimes(1)

	done := make(chan *pipeline.BatchResult, 8)
	s := scheduler.NewScheduler(suite.runner, nil, func(batch *pipeline.BatchResult) { done <- batch })

	_, err := s.Register(scheduler.Watch{Schedule: "@every 1s", Symbols: []string{"MSFT"}, Period: marketdata.PeriodOneMonth})
	suite.Require().NoError(err)

	s.Start()

	select {
	case batch := <-done:
		suite.Len(batch.Successful(), 1)
	case <-time.After(5 * time.Second):
		suite.Fail("scheduled run did not fire")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)
}
