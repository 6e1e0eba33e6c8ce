// internal/scores/store.go
//
// SQLite-backed score/user store.
// Exposes:
//   - Users: CreateUser, UserByUsername, UserByID.
//   - Results: RecordResult (once per round), RecentResults.
//   - Aggregates: Stats (per user) and Leaderboard (top players).
//
// Rounds themselves are never stored here; callers pass the counters of a
// finished round and the store derives the score with game.ComputeScore.

package scores

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/words"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username taken")
)

// Query size limits.
const (
	DefaultLeaderboardLimit = 20  // leaderboard rows when no limit is given
	DefaultRecentResults    = 50  // history rows when no limit is given
	MaxRecentResults        = 100 // history rows never exceed this
)

// User matches the users table shape.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	GamesPlayed  int       `json:"gamesPlayed"`
	Wins         int       `json:"wins"`
	Streak       int       `json:"streak"`
	BestScore    int       `json:"bestScore"`
}

// Result is the outcome of one finished round, as reported by the caller.
type Result struct {
	RoundID    string
	Won        bool
	WrongCount int
	HintUsed   int
	Tier       words.Tier
}

// Score is the final score the result is worth.
func (r Result) Score() int { return game.ComputeScore(r.Won, r.WrongCount, r.HintUsed) }

// Stats is a user's aggregate record.
type Stats struct {
	BestScore   int `json:"bestScore"`
	Wins        int `json:"wins"`
	GamesPlayed int `json:"gamesPlayed"`
	Streak      int `json:"streak"`
}

// LeaderboardRow is one ranked player.
type LeaderboardRow struct {
	Username    string `json:"username"`
	BestScore   int    `json:"bestScore"`
	Wins        int    `json:"wins"`
	GamesPlayed int    `json:"gamesPlayed"`
}

// ResultRow is one stored round result.
type ResultRow struct {
	RoundID    string `json:"roundId"`
	Won        bool   `json:"won"`
	WrongCount int    `json:"wrongCount"`
	HintUsed   int    `json:"hintUsed"`
	Difficulty string `json:"difficulty"`
	Score      int    `json:"score"`
	CreatedAt  string `json:"createdAt"`
}

// Store wraps the database handle.
type Store struct{ db *sql.DB }

// Open opens the SQLite database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// ------------------------------- users -------------------------------------

// CreateUser inserts a user with an already-hashed password.
// Usernames are unique case-insensitively.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	var exists int
	_ = s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE lower(username)=lower(?)`, username).Scan(&exists)
	if exists == 1 {
		return nil, ErrUsernameTaken
	}
	u := &User{
		ID:           genID(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt.Format(time.RFC3339))
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// UserByUsername loads a user by case-insensitive username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, wins, streak, best_score
	                                  FROM users WHERE lower(username)=lower(?)`, strings.TrimSpace(username))
	return scanUser(row)
}

// UserByID loads a user by ID.
func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at, games_played, wins, streak, best_score
	                                  FROM users WHERE id=?`, id)
	return scanUser(row)
}

// scanUser converts a *sql.Row into a User.
func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.GamesPlayed, &u.Wins, &u.Streak, &u.BestScore)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &u, nil
}

// ------------------------------ results ------------------------------------

// RecordResult stores a finished round and updates the user's aggregates in
// one transaction: games played, wins, streak (reset on a loss) and best
// score. Recording the same round twice is a no-op.
func (s *Store) RecordResult(ctx context.Context, userID string, r Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	score := r.Score()
	res, err := tx.ExecContext(ctx, `
        INSERT OR IGNORE INTO results
            (user_id, round_id, won, wrong_count, hint_used, difficulty, score)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, r.RoundID, r.Won, r.WrongCount, r.HintUsed, string(r.Tier), score,
	)
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return ErrUserNotFound
		}
		return fmt.Errorf("insert result: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	var gp, wins, streak, best int
	row := tx.QueryRowContext(ctx, `SELECT games_played, wins, streak, best_score FROM users WHERE id=?`, userID)
	if err := row.Scan(&gp, &wins, &streak, &best); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	gp++
	if r.Won {
		wins++
		streak++
	} else {
		streak = 0
	}
	best = max(best, score)
	if _, err := tx.ExecContext(ctx, `UPDATE users SET games_played=?, wins=?, streak=?, best_score=? WHERE id=?`,
		gp, wins, streak, best, userID); err != nil {
		return fmt.Errorf("update stats: %w", err)
	}
	return tx.Commit()
}

// Stats returns a user's aggregates. Unknown users get zero stats.
func (s *Store) Stats(ctx context.Context, userID string) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `SELECT best_score, wins, games_played, streak FROM users WHERE id=?`, userID).
		Scan(&st.BestScore, &st.Wins, &st.GamesPlayed, &st.Streak)
	if errors.Is(err, sql.ErrNoRows) {
		return Stats{}, nil
	}
	return st, err
}

/**
 * Leaderboard fetches the top players.
 *
 * - Only users with at least one recorded game.
 * - Ordered by best score DESC, wins DESC, games played ASC, username ASC.
 * - Default limit is 20 if not specified.
 */
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT username, best_score, wins, games_played
        FROM users
        WHERE games_played > 0
        ORDER BY best_score DESC, wins DESC, games_played ASC, username ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LeaderboardRow, 0, limit)
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.Username, &r.BestScore, &r.Wins, &r.GamesPlayed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentResults returns a user's latest results, newest first, at most
// MaxRecentResults of them.
func (s *Store) RecentResults(ctx context.Context, userID string, limit int) ([]ResultRow, error) {
	if limit <= 0 {
		limit = DefaultRecentResults
	}
	limit = min(limit, MaxRecentResults)
	rows, err := s.db.QueryContext(ctx, `
        SELECT round_id, won, wrong_count, hint_used, difficulty, score, created_at
        FROM results
        WHERE user_id=?
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ResultRow{}
	for rows.Next() {
		var r ResultRow
		if err := rows.Scan(&r.RoundID, &r.Won, &r.WrongCount, &r.HintUsed, &r.Difficulty, &r.Score, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// genID creates a 22‑char URL‑safe, crypto‑random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b[:])
}
