package config

import (
	"log/slog"
	"testing"

	"github.com/Jacobbrewer1/satla/pkg/dataaccess"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, k := range []string{
		EnvBotToken, EnvApplicationId, EnvGuildId, EnvDbDriver, EnvMongoUri,
		EnvMongoDatabase, EnvSqlitePath, EnvMonitoringPort,
	} {
		t.Setenv(k, env[k])
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr string
	}{
		{
			name: "mongo defaults",
			env: map[string]string{
				EnvBotToken:      "token",
				EnvApplicationId: "app",
				EnvMongoUri:      "mongodb://localhost",
			},
			want: &Config{
				BotToken:       "token",
				ApplicationId:  "app",
				DbDriver:       dataaccess.DriverMongo,
				MongoUri:       "mongodb://localhost",
				MongoDatabase:  dataaccess.DefaultMongoDatabase,
				SqlitePath:     "data/satla.db",
				MonitoringPort: "8080",
			},
		},
		{
			name: "sqlite",
			env: map[string]string{
				EnvBotToken:       "token",
				EnvApplicationId:  "app",
				EnvGuildId:        "g1",
				EnvDbDriver:       dataaccess.DriverSQLite,
				EnvSqlitePath:     "/tmp/bot.db",
				EnvMonitoringPort: "9090",
			},
			want: &Config{
				BotToken:       "token",
				ApplicationId:  "app",
				GuildId:        "g1",
				DbDriver:       dataaccess.DriverSQLite,
				MongoDatabase:  dataaccess.DefaultMongoDatabase,
				SqlitePath:     "/tmp/bot.db",
				MonitoringPort: "9090",
			},
		},
		{
			name:    "missing token",
			env:     map[string]string{EnvApplicationId: "app", EnvMongoUri: "mongodb://localhost"},
			wantErr: "BOT_TOKEN is required",
		},
		{
			name:    "mongo without uri",
			env:     map[string]string{EnvBotToken: "token", EnvApplicationId: "app"},
			wantErr: "MONGO_URI is required for the mongodb driver",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{EnvBotToken: "token", EnvApplicationId: "app", EnvDbDriver: "postgres"},
			wantErr: `unknown DB_DRIVER "postgres"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)

			got, err := Parse(slog.Default())
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
