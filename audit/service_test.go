// audit/service_test.go
package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/warden/audit"
	"github.com/dev-mohitbeniwal/warden/test/mock"
)

func TestServiceLogAccess(t *testing.T) {
	repo := new(mock.AuditRepository)
	svc := audit.NewService(repo)

	entry := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        "user-1",
		Action:        "ACCESS_CHECK",
		Codename:      "teams:read",
		AccessGranted: true,
	}
	repo.On("LogAccess", context.Background(), entry).Return(nil)

	err := svc.LogAccess(context.Background(), entry)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestServiceQueryLogs(t *testing.T) {
	repo := new(mock.AuditRepository)
	svc := audit.NewService(repo)

	from := time.Now().Add(-time.Hour)
	to := time.Now()
	expected := []audit.AuditLog{{UserID: "user-1", Action: "CREATE_ROLE"}}
	repo.On("QueryLogs", context.Background(), from, to, "user-1", "").Return(expected, nil)

	logs, err := svc.QueryLogs(context.Background(), from, to, "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, expected, logs)
	repo.AssertExpectations(t)
}
