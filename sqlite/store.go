package sqlite

import (
	"context"
	"time"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"

	"bsid.es/despertador"
	"bsid.es/despertador/sqlite/migration"
)

var _ despertador.AlarmStore = (*Store)(nil)

// Store is the durable AlarmStore. Ids come from sqlite's autoincrement
// sequence, which survives restarts and never hands out a value twice, so
// insertion order is ascending id. Fire times are stored as UTC unix
// nanoseconds. The currently ringing alarm lives in the single-row ringing
// table (alarm_id 0 means none).
type Store struct {
	pool *sqlitex.Pool
}

// Open opens (or creates) the database at path and applies pending
// migrations.
func Open(path string, poolSize int) (*Store, error) {
	pool, err := sqlitex.Open(path, 0, poolSize)
	if err != nil {
		return nil, despertador.Errorf(despertador.ErrStoreUnavailable, "open %s: %v", path, err)
	}
	conn := pool.Get(context.Background())
	err = Migrate(conn, migration.Scripts)
	pool.Put(conn)
	if err != nil {
		pool.Close()
		return nil, despertador.Errorf(despertador.ErrStoreUnavailable, "migrate %s: %v", path, err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	return s.pool.Close()
}

func (s *Store) conn(ctx context.Context) (*sqlite.Conn, error) {
	conn := s.pool.Get(ctx)
	if conn == nil {
		return nil, despertador.Errorf(despertador.ErrStoreUnavailable, "no database connection")
	}
	return conn, nil
}

func (s *Store) Create(ctx context.Context, fireAt time.Time, label string) (alarm despertador.Alarm, err error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return despertador.Alarm{}, err
	}
	defer s.pool.Put(conn)
	release := sqlitex.Save(conn)
	defer release(&err)

	err = sqlitex.Exec(conn,
		"insert into alarms (fire_at, label, active) values (?, ?, 1)",
		nil, fireAt.UnixNano(), label)
	if err != nil {
		return despertador.Alarm{}, despertador.Errorf(despertador.ErrStoreUnavailable, "insert alarm: %v", err)
	}
	id := conn.LastInsertRowID()

	if label == "" {
		label = despertador.DefaultLabel(id)
		err = sqlitex.Exec(conn, "update alarms set label = ? where id = ?", nil, label, id)
		if err != nil {
			return despertador.Alarm{}, despertador.Errorf(despertador.ErrStoreUnavailable, "label alarm %d: %v", id, err)
		}
	}

	return despertador.Alarm{
		ID:     id,
		FireAt: fireAt,
		Label:  label,
		Active: true,
	}, nil
}

func (s *Store) Get(ctx context.Context, id int64) (despertador.Alarm, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return despertador.Alarm{}, err
	}
	defer s.pool.Put(conn)
	return getAlarm(conn, id)
}

func getAlarm(conn *sqlite.Conn, id int64) (despertador.Alarm, error) {
	var alarm despertador.Alarm
	found := false
	err := sqlitex.Exec(conn,
		"select id, fire_at, label, active from alarms where id = ?",
		func(stmt *sqlite.Stmt) error {
			found = true
			alarm = scanAlarm(stmt)
			return nil
		}, id)
	if err != nil {
		return despertador.Alarm{}, despertador.Errorf(despertador.ErrStoreUnavailable, "get alarm %d: %v", id, err)
	}
	if !found {
		return despertador.Alarm{}, despertador.Errorf(despertador.ErrNotFound, "alarm %d", id)
	}
	return alarm, nil
}

func scanAlarm(stmt *sqlite.Stmt) despertador.Alarm {
	return despertador.Alarm{
		ID:     stmt.ColumnInt64(0),
		FireAt: time.Unix(0, stmt.ColumnInt64(1)).UTC(),
		Label:  stmt.ColumnText(2),
		Active: stmt.ColumnInt(3) != 0,
	}
}

func (s *Store) Update(ctx context.Context, id int64, mutate func(*despertador.Alarm) error) (alarm despertador.Alarm, err error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return despertador.Alarm{}, err
	}
	defer s.pool.Put(conn)
	release := sqlitex.Save(conn)
	defer release(&err)

	alarm, err = getAlarm(conn, id)
	if err != nil {
		return despertador.Alarm{}, err
	}
	if err = mutate(&alarm); err != nil {
		return despertador.Alarm{}, err
	}
	alarm.ID = id

	err = sqlitex.Exec(conn,
		"update alarms set fire_at = ?, label = ?, active = ? where id = ?",
		nil, alarm.FireAt.UnixNano(), alarm.Label, boolInt(alarm.Active), id)
	if err != nil {
		return despertador.Alarm{}, despertador.Errorf(despertador.ErrStoreUnavailable, "update alarm %d: %v", id, err)
	}
	return alarm, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	conn, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Exec(conn, "delete from alarms where id = ?", nil, id)
	if err != nil {
		return despertador.Errorf(despertador.ErrStoreUnavailable, "delete alarm %d: %v", id, err)
	}
	if conn.Changes() == 0 {
		return despertador.Errorf(despertador.ErrNotFound, "alarm %d", id)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]despertador.Alarm, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var alarms []despertador.Alarm
	err = sqlitex.Exec(conn,
		"select id, fire_at, label, active from alarms order by id",
		func(stmt *sqlite.Stmt) error {
			alarms = append(alarms, scanAlarm(stmt))
			return nil
		})
	if err != nil {
		return nil, despertador.Errorf(despertador.ErrStoreUnavailable, "list alarms: %v", err)
	}
	return alarms, nil
}

func (s *Store) DueBefore(ctx context.Context, at time.Time) ([]int64, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var due []int64
	err = sqlitex.Exec(conn,
		"select id from alarms where active = 1 and fire_at <= ? order by id",
		func(stmt *sqlite.Stmt) error {
			due = append(due, stmt.ColumnInt64(0))
			return nil
		}, at.UnixNano())
	if err != nil {
		return nil, despertador.Errorf(despertador.ErrStoreUnavailable, "due alarms: %v", err)
	}
	return due, nil
}

func (s *Store) Current(ctx context.Context) (int64, bool, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return 0, false, err
	}
	defer s.pool.Put(conn)

	var id int64
	err = sqlitex.Exec(conn,
		"select alarm_id from ringing where id = 0",
		func(stmt *sqlite.Stmt) error {
			id = stmt.ColumnInt64(0)
			return nil
		})
	if err != nil {
		return 0, false, despertador.Errorf(despertador.ErrStoreUnavailable, "get ringing alarm: %v", err)
	}
	return id, id != 0, nil
}

func (s *Store) SetCurrent(ctx context.Context, id int64) error {
	return s.setCurrent(ctx, id)
}

func (s *Store) ClearCurrent(ctx context.Context) error {
	return s.setCurrent(ctx, 0)
}

func (s *Store) setCurrent(ctx context.Context, id int64) error {
	conn, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Exec(conn, "update ringing set alarm_id = ? where id = 0", nil, id)
	if err != nil {
		return despertador.Errorf(despertador.ErrStoreUnavailable, "set ringing alarm: %v", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
