package config

const (
	// AppName is the name of the application.
	AppName = "satla"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvGuildId is the environment variable for the guild slash commands are registered in.
	// Commands are registered globally when it is empty.
	EnvGuildId = `GUILD_ID`

	// EnvDbDriver is the environment variable selecting the store.
	EnvDbDriver = `DB_DRIVER`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvMongoDatabase is the environment variable for the MongoDB database name.
	EnvMongoDatabase = `MONGO_DATABASE`

	// EnvSqlitePath is the environment variable for the SQLite database file.
	EnvSqlitePath = `SQLITE_PATH`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`

	defaultSqlitePath     = "data/satla.db"
	defaultMonitoringPort = "8080"
)

// Config is the runtime configuration of the bot.
type Config struct {
	// BotToken is the token for the bot.
	BotToken string

	// ApplicationId is the ID of the application.
	ApplicationId string

	// GuildId is the guild commands are registered in. Empty registers them globally.
	GuildId string

	// DbDriver is either dataaccess.DriverMongo or dataaccess.DriverSQLite.
	DbDriver string

	// MongoUri is the URI for the MongoDB database.
	MongoUri string

	// MongoDatabase is the name of the MongoDB database.
	MongoDatabase string

	// SqlitePath is the SQLite database file.
	SqlitePath string

	// MonitoringPort is the port for the monitoring server.
	MonitoringPort string
}
