package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/hrflow/modules/hrm/domain/aggregates/employee"
	"github.com/iota-uz/hrflow/pkg/composables"
	"github.com/iota-uz/hrflow/pkg/eventbus"
	"github.com/sirupsen/logrus"
)

func TestEmployeeService_ReadsDelegateToRepository(t *testing.T) {
	repo := newMemEmployeeRepo()
	svc := NewEmployeeService(repo, eventbus.NewEventPublisher(logrus.New()))

	_, err := repo.Create(context.Background(), employee.New(
		"Jane", "Doe", "janedoe1", "jane@x.com", "hash", "Employee", "Dev", "Eng",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	))
	require.NoError(t, err)

	count, err := svc.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	all, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "jane@x.com", all[0].Email())
}

func TestEmployeeService_CreateRequiresPool(t *testing.T) {
	svc := NewEmployeeService(newMemEmployeeRepo(), eventbus.NewEventPublisher(logrus.New()))

	_, err := svc.Create(context.Background(), employee.Employee{})
	require.ErrorIs(t, err, composables.ErrNoPool)
}
