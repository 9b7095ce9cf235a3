package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/ports"
)

// CategoryClassifier is a mock ports.CategoryClassifier.
type CategoryClassifier struct {
	mock.Mock
}

var _ ports.CategoryClassifier = (*CategoryClassifier)(nil)

// NewCategoryClassifier registers AssertExpectations on cleanup.
func NewCategoryClassifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *CategoryClassifier {
	m := &CategoryClassifier{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *CategoryClassifier) Classify(ctx context.Context, summary domain.ProfileSummary) ([]string, error) {
	args := m.Called(ctx, summary)
	labels, _ := args.Get(0).([]string)

	return labels, args.Error(1)
}

// HealthChecker is a mock ports.HealthChecker.
type HealthChecker struct {
	mock.Mock
}

var _ ports.HealthChecker = (*HealthChecker)(nil)

func (m *HealthChecker) Name() string {
	return m.Called().String(0)
}

func (m *HealthChecker) Check(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
