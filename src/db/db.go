package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Cast4nha/scrapper-sub000/src/config"
	"github.com/Cast4nha/scrapper-sub000/src/domain"

	pq "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS tickets (
    ticket_id SERIAL PRIMARY KEY,
    code TEXT NOT NULL,
    total_games INTEGER NOT NULL,
    total_odds TEXT NOT NULL,
    possible_prize TEXT NOT NULL,
    bettor_name TEXT NOT NULL,
    stake TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS games (
    game_id SERIAL PRIMARY KEY,
    ticket_id INTEGER NOT NULL REFERENCES tickets(ticket_id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    league TEXT NOT NULL,
    home_team TEXT NOT NULL,
    away_team TEXT NOT NULL,
    kickoff TEXT,
    selections TEXT[][] NOT NULL
);`

type DB struct {
	db *sql.DB
}

func GetDB(cfg config.PostgresConfig) (*DB, error) {
	connInfo := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
	)

	conn, err := sql.Open("postgres", connInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	return &DB{db: conn}, nil
}

func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// InsertTicket stores the ticket with all of its games in one transaction.
func (db *DB) InsertTicket(ctx context.Context, ticket *domain.Ticket) (int, error) {
	var ticketID int

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return ticketID, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(
		ctx,
		`INSERT INTO tickets (code, total_games, total_odds, possible_prize, bettor_name, stake)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING ticket_id;`,
		ticket.Code,
		ticket.TotalGames,
		ticket.TotalOdds,
		ticket.PossiblePrize,
		ticket.BettorName,
		ticket.Stake,
	).Scan(&ticketID)
	if err != nil {
		return ticketID, fmt.Errorf("failed to insert ticket %s: %w", ticket.Code, err)
	}

	for i := range ticket.Games {
		if _, err := insertGame(ctx, tx, ticketID, i, &ticket.Games[i]); err != nil {
			return ticketID, err
		}
	}

	if err := tx.Commit(); err != nil {
		return ticketID, fmt.Errorf("failed to commit ticket %s: %w", ticket.Code, err)
	}

	return ticketID, nil
}

func insertGame(ctx context.Context, tx *sql.Tx, ticketID, position int, game *domain.Game) (int, error) {
	var gameID int

	selArr := [][]string{}
	for _, sel := range game.Selections {
		selArr = append(selArr, []string{sel.Description, sel.Odds.String()})
	}

	var kickoff sql.NullString
	if game.Kickoff != nil {
		kickoff = sql.NullString{String: *game.Kickoff, Valid: true}
	}

	err := tx.QueryRowContext(
		ctx,
		`INSERT INTO games (ticket_id, position, league, home_team, away_team, kickoff, selections)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING game_id;`,
		ticketID,
		position,
		game.League,
		game.HomeTeam,
		game.AwayTeam,
		kickoff,
		pq.Array(selArr),
	).Scan(&gameID)
	if err != nil {
		return gameID, fmt.Errorf("failed to insert game %s x %s: %w", game.HomeTeam, game.AwayTeam, err)
	}

	return gameID, nil
}
