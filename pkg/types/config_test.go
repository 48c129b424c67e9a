package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:   "valid sqlite config",
			config: Config{Backend: "sqlite", DataDir: "/tmp/data"},
		},
		{
			name:   "sqlite with empty DataDir is valid at config level",
			config: Config{Backend: "sqlite"},
		},
		{
			name: "negative loan duration rejected",
			config: Config{
				Backend:     "sqlite",
				Circulation: CirculationConfig{ExternalLoanDays: -1},
			},
			wantErr: ErrPolicyNegative,
		},
		{
			name: "negative request window rejected",
			config: Config{
				Backend:       "sqlite",
				Notifications: NotificationConfig{RequestWindowHours: -24},
			},
			wantErr: ErrPolicyNegative,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	assert.Equal(t, DefaultInternalLoanHours, c.Circulation.GetInternalLoanHours())
	assert.Equal(t, DefaultExternalLoanDays, c.Circulation.GetExternalLoanDays())
	assert.Equal(t, DefaultClaimRetries, c.Circulation.GetClaimRetries())
	assert.Equal(t, DefaultRequestWindowHours, c.Notifications.GetRequestWindowHours())
	assert.Equal(t, DefaultRefreshSchedule, c.Notifications.GetRefreshSchedule())

	c.Circulation.ExternalLoanDays = 30
	c.Notifications.RefreshSchedule = "@every 1m"
	assert.Equal(t, 30, c.Circulation.GetExternalLoanDays())
	assert.Equal(t, "@every 1m", c.Notifications.GetRefreshSchedule())
}

func TestIdentityValidate(t *testing.T) {
	assert.NoError(t, Identity{UserID: "u1", Role: RoleAdmin}.Validate())
	assert.ErrorIs(t, Identity{Role: RoleAdmin}.Validate(), ErrInvalidID)
	assert.ErrorIs(t, Identity{UserID: "u1", Role: "librarian"}.Validate(), ErrInvalidRole)
}
