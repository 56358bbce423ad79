package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`

	Database Database `envPrefix:"DB_"`

	Paypal      Paypal      `envPrefix:"PAYPAL_"`
	Nowpayments Nowpayments `envPrefix:"NOWPAYMENTS_"`
	Notify      Notify      `envPrefix:"NOTIFY_"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"` // sqlite | mysql
	URL    string `env:"URL" envDefault:"data/orders.db"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	WebhookID    string `env:"WEBHOOK_ID"`
}

type Nowpayments struct {
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://api.nowpayments.io"`
	ApiKey     string `env:"API_KEY"`
	IPNSecret  string `env:"IPN_SECRET"`
}

type Notify struct {
	CSVPath           string `env:"CSV_PATH" envDefault:"data/bookings.csv"`
	DiscordWebhookURL string `env:"DISCORD_WEBHOOK_URL"`
	NotifyOnCreated   bool   `env:"ON_CREATED" envDefault:"false"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
