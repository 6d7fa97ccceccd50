package mocks

//go:generate mockgen -destination=./mock_source.go -package=mocks github.com/rxtech-lab/argo-analysis/pkg/marketdata Source
//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/rxtech-lab/argo-analysis/internal/indicator Indicator
