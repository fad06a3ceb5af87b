// Package store persists launch and vesting state. Two formats are
// supported: a SQLite database for crash-durable operation, and a compact
// borsh snapshot for state export between processes.
package store

import (
	"database/sql"
	"math/big"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/launchvest/launchvest-go/distribution"
	"github.com/launchvest/launchvest-go/shared"
	"github.com/launchvest/launchvest-go/vesting"
)

// Store wraps a SQLite database holding one launch's state.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS launch_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		phase INTEGER NOT NULL,
		paused INTEGER NOT NULL,
		remaining_supply TEXT NOT NULL,
		total_minted TEXT NOT NULL,
		mint_cap TEXT NOT NULL,
		total_raised TEXT NOT NULL,
		largest_purchase TEXT NOT NULL,
		largest_purchaser TEXT NOT NULL,
		retained_excess TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS participant (
		address TEXT PRIMARY KEY
	);
	CREATE TABLE IF NOT EXISTS vesting_config (
		token TEXT PRIMARY KEY,
		duration_min INTEGER NOT NULL,
		duration_max INTEGER NOT NULL,
		total_supply_cap TEXT,
		launch_contract TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS vesting_schedule (
		id INTEGER PRIMARY KEY,
		token TEXT NOT NULL,
		user TEXT NOT NULL,
		start_time INTEGER NOT NULL,
		cliff_duration INTEGER NOT NULL,
		duration INTEGER NOT NULL,
		total_amount TEXT NOT NULL,
		transferred_amount TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_schedule_user ON vesting_schedule(token, user);
	`
	_, err := db.Exec(query)
	return errors.Wrap(err, "init schema")
}

// SaveLaunchState replaces the persisted controller state.
func (s *Store) SaveLaunchState(state distribution.State) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO launch_state (id, phase, paused, remaining_supply, total_minted,
			mint_cap, total_raised, largest_purchase, largest_purchaser, retained_excess)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			phase = excluded.phase,
			paused = excluded.paused,
			remaining_supply = excluded.remaining_supply,
			total_minted = excluded.total_minted,
			mint_cap = excluded.mint_cap,
			total_raised = excluded.total_raised,
			largest_purchase = excluded.largest_purchase,
			largest_purchaser = excluded.largest_purchaser,
			retained_excess = excluded.retained_excess`,
		int(state.Phase), boolToInt(state.Paused),
		state.RemainingSupply.String(), state.TotalMinted.String(),
		state.MintCap.String(), state.TotalRaised.String(),
		state.LargestPurchase.String(), state.LargestPurchaser.String(),
		state.RetainedExcess.String(),
	)
	if err != nil {
		return errors.Wrap(err, "upsert launch_state")
	}

	if _, err := tx.Exec(`DELETE FROM participant`); err != nil {
		return errors.Wrap(err, "clear participants")
	}
	for _, p := range state.Participants {
		if _, err := tx.Exec(`INSERT INTO participant (address) VALUES (?)`, p.String()); err != nil {
			return errors.Wrap(err, "insert participant")
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}

// LoadLaunchState reads the persisted controller state. found is false when
// the database holds no launch yet.
func (s *Store) LoadLaunchState() (state distribution.State, found bool, err error) {
	var (
		phase, paused                                                    int
		remaining, minted, mintCap, raised, largest, purchaser, retained string
	)
	row := s.db.QueryRow(`
		SELECT phase, paused, remaining_supply, total_minted, mint_cap,
			total_raised, largest_purchase, largest_purchaser, retained_excess
		FROM launch_state WHERE id = 1`)
	err = row.Scan(&phase, &paused, &remaining, &minted, &mintCap,
		&raised, &largest, &purchaser, &retained)
	if err == sql.ErrNoRows {
		return distribution.State{}, false, nil
	}
	if err != nil {
		return distribution.State{}, false, errors.Wrap(err, "scan launch_state")
	}

	state.Phase = distribution.Phase(phase)
	state.Paused = paused != 0
	state.LargestPurchaser = shared.Address(purchaser)
	for _, col := range []struct {
		raw  string
		name string
		dst  **big.Int
	}{
		{remaining, "remaining_supply", &state.RemainingSupply},
		{minted, "total_minted", &state.TotalMinted},
		{mintCap, "mint_cap", &state.MintCap},
		{raised, "total_raised", &state.TotalRaised},
		{largest, "largest_purchase", &state.LargestPurchase},
		{retained, "retained_excess", &state.RetainedExcess},
	} {
		v, perr := parseBig(col.raw)
		if perr != nil {
			return distribution.State{}, false, errors.Wrapf(perr, "column %s", col.name)
		}
		*col.dst = v
	}

	rows, err := s.db.Query(`SELECT address FROM participant`)
	if err != nil {
		return distribution.State{}, false, errors.Wrap(err, "query participants")
	}
	defer rows.Close()
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return distribution.State{}, false, errors.Wrap(err, "scan participant")
		}
		state.Participants = append(state.Participants, shared.Address(addr))
	}
	return state, true, errors.Wrap(rows.Err(), "participants")
}

// SaveVesting replaces the persisted vesting schedules and per-token
// configurations.
func (s *Store) SaveVesting(schedules []*vesting.Schedule, configs map[shared.Address]vesting.TokenVestingConfig) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM vesting_config`); err != nil {
		return errors.Wrap(err, "clear configs")
	}
	if _, err := tx.Exec(`DELETE FROM vesting_schedule`); err != nil {
		return errors.Wrap(err, "clear schedules")
	}

	for token, cfg := range configs {
		var capText interface{}
		if cfg.TotalSupplyCap != nil {
			capText = cfg.TotalSupplyCap.String()
		}
		_, err := tx.Exec(`
			INSERT INTO vesting_config (token, duration_min, duration_max, total_supply_cap, launch_contract)
			VALUES (?, ?, ?, ?, ?)`,
			token.String(), cfg.DurationMin, cfg.DurationMax, capText, cfg.LaunchContract.String())
		if err != nil {
			return errors.Wrap(err, "insert config")
		}
	}
	for _, sch := range schedules {
		_, err := tx.Exec(`
			INSERT INTO vesting_schedule (id, token, user, start_time, cliff_duration, duration, total_amount, transferred_amount)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sch.ID, sch.Token.String(), sch.User.String(),
			sch.StartTime, sch.CliffDuration, sch.Duration,
			sch.TotalAmount.String(), sch.TransferredAmount.String())
		if err != nil {
			return errors.Wrap(err, "insert schedule")
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}

// LoadVesting reads every persisted schedule and configuration.
func (s *Store) LoadVesting() ([]*vesting.Schedule, map[shared.Address]vesting.TokenVestingConfig, error) {
	configs := make(map[shared.Address]vesting.TokenVestingConfig)
	rows, err := s.db.Query(`SELECT token, duration_min, duration_max, total_supply_cap, launch_contract FROM vesting_config`)
	if err != nil {
		return nil, nil, errors.Wrap(err, "query configs")
	}
	for rows.Next() {
		var (
			token, launch string
			capText       sql.NullString
			cfg           vesting.TokenVestingConfig
		)
		if err := rows.Scan(&token, &cfg.DurationMin, &cfg.DurationMax, &capText, &launch); err != nil {
			rows.Close()
			return nil, nil, errors.Wrap(err, "scan config")
		}
		if capText.Valid {
			v, perr := parseBig(capText.String)
			if perr != nil {
				rows.Close()
				return nil, nil, errors.Wrap(perr, "total_supply_cap")
			}
			cfg.TotalSupplyCap = v
		}
		cfg.LaunchContract = shared.Address(launch)
		configs[shared.Address(token)] = cfg
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, nil, errors.Wrap(err, "configs")
	}
	rows.Close()

	var schedules []*vesting.Schedule
	rows, err = s.db.Query(`
		SELECT id, token, user, start_time, cliff_duration, duration, total_amount, transferred_amount
		FROM vesting_schedule ORDER BY id`)
	if err != nil {
		return nil, nil, errors.Wrap(err, "query schedules")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			sch                vesting.Schedule
			token, user        string
			total, transferred string
		)
		if err := rows.Scan(&sch.ID, &token, &user, &sch.StartTime,
			&sch.CliffDuration, &sch.Duration, &total, &transferred); err != nil {
			return nil, nil, errors.Wrap(err, "scan schedule")
		}
		sch.Token = shared.Address(token)
		sch.User = shared.Address(user)
		if sch.TotalAmount, err = parseBig(total); err != nil {
			return nil, nil, errors.Wrap(err, "total_amount")
		}
		if sch.TransferredAmount, err = parseBig(transferred); err != nil {
			return nil, nil, errors.Wrap(err, "transferred_amount")
		}
		out := sch
		schedules = append(schedules, &out)
	}
	return schedules, configs, errors.Wrap(rows.Err(), "schedules")
}

func parseBig(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("bad integer %q", s)
	}
	return v, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
