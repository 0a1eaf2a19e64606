package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultSkipCount = 10

type Config struct {
	Extraction Extraction     `yaml:"extraction"`
	Collector  Collector      `yaml:"collector"`
	Postgres   PostgresConfig `yaml:"postgres"`
	Log        LogConfig      `yaml:"log"`
}

type Extraction struct {
	// Leading navigation blocks dropped before classification.
	SkipCount      int             `yaml:"skip_count"`
	LeagueKeywords []string        `yaml:"league_keywords"`
	WagerKeywords  []string        `yaml:"wager_keywords"`
	TeamSeparators []string        `yaml:"team_separators"`
	SummaryLabels  SummaryLabels   `yaml:"summary_labels"`
	Defaults       SummaryDefaults `yaml:"defaults"`
}

type SummaryLabels struct {
	Games         []string `yaml:"games"`
	TotalOdds     []string `yaml:"total_odds"`
	PossiblePrize []string `yaml:"possible_prize"`
	BettorName    []string `yaml:"bettor_name"`
	Stake         []string `yaml:"stake"`
}

type SummaryDefaults struct {
	PossiblePrize string `yaml:"possible_prize"`
	BettorName    string `yaml:"bettor_name"`
	Stake         string `yaml:"stake"`
}

// Collector holds the CSS selectors of the ticket page layout.
type Collector struct {
	TicketURL string            `yaml:"ticket_url"` // format string, %s is the ticket code
	Ready     string            `yaml:"ready"`
	Row       string            `yaml:"row"`
	Summary   map[string]string `yaml:"summary"`
	Timeout   time.Duration     `yaml:"timeout"`
	Headless  bool              `yaml:"headless"`
	Workers   int               `yaml:"workers"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Extraction: Extraction{
			SkipCount: DefaultSkipCount,
			LeagueKeywords: []string{
				"UEFA", "CONMEBOL", "CONCACAF", "AFC", "CAF", "FIFA",
				"Brazil", "Brasil", "England", "Inglaterra", "Spain", "Espanha",
				"Italy", "Itália", "Germany", "Alemanha", "France", "França",
				"Portugal", "Argentina", "Netherlands", "Holanda", "Mexico", "México",
				"USA", "EUA", "World",
				"Série A", "Série B", "Serie A", "Premier League", "La Liga", "LaLiga",
				"Bundesliga", "Ligue 1", "Eredivisie", "Primeira Liga", "MLS",
				"Champions League", "Europa League", "Conference League",
				"Libertadores", "Sudamericana", "Copa", "Cup", "Brasileirão",
				"Campeonato", "Paulista", "Carioca",
			},
			WagerKeywords: []string{
				"Winner:", "Vencedor:", "Match Winner", "Resultado Final", "Result",
				"Draw", "Empate", "Double Chance", "Dupla Chance",
				"Both teams to score", "Ambas as equipes marcam", "Ambas Marcam",
				"Over", "Under", "Mais de", "Menos de", "Total",
				"Goals", "Gols", "Corners", "Escanteios", "Cards", "Cartões",
				"Handicap", "Player", "Jogador", "to score", "marcar",
			},
			TeamSeparators: []string{"x"},
			SummaryLabels: SummaryLabels{
				Games:         []string{"Games", "Jogos", "Quantidade de jogos"},
				TotalOdds:     []string{"Total odds", "Odds total", "Cotação total", "Cotação"},
				PossiblePrize: []string{"Possible prize", "Possível prêmio", "Possível retorno", "Prêmio"},
				BettorName:    []string{"Bettor", "Apostador", "Cliente"},
				Stake:         []string{"Stake", "Valor apostado", "Aposta"},
			},
			Defaults: SummaryDefaults{
				PossiblePrize: "R$ 0,00",
				BettorName:    "Não informado",
				Stake:         "R$ 0,00",
			},
		},
		Collector: Collector{
			Ready:    `body`,
			Row:      `div.bet-row`,
			Timeout:  30 * time.Second,
			Headless: true,
			Workers:  3,
			Summary: map[string]string{
				"games":          `.ticket-games-count`,
				"total_odds":     `.ticket-total-odds`,
				"possible_prize": `.ticket-possible-prize`,
				"bettor_name":    `.ticket-bettor`,
				"stake":          `.ticket-stake`,
			},
		},
		Postgres: PostgresConfig{
			Port: "5432",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over Default() and applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := overrideFromEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.Extraction.SkipCount < 0 {
		return nil, fmt.Errorf("skip_count must not be negative, got %d", cfg.Extraction.SkipCount)
	}

	return cfg, nil
}

func overrideFromEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("SKIP_COUNT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse SKIP_COUNT: %w", err)
		}
		cfg.Extraction.SkipCount = n
	}

	if v, ok := os.LookupEnv("TICKET_URL"); ok {
		cfg.Collector.TicketURL = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}

	if v, ok := os.LookupEnv("DB_HOST"); ok {
		cfg.Postgres.Host = v
	}
	if v, ok := os.LookupEnv("DB_PORT"); ok {
		cfg.Postgres.Port = v
	}
	if v, ok := os.LookupEnv("DB_USER"); ok {
		cfg.Postgres.User = v
	}
	if v, ok := os.LookupEnv("DB_PASS"); ok {
		cfg.Postgres.Password = v
	}
	if v, ok := os.LookupEnv("DB"); ok {
		cfg.Postgres.DBName = v
	}

	return nil
}
