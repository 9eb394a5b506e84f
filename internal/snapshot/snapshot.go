// Package snapshot writes the entity store to a SQLite file and reads it
// back. It is a best-effort dump taken at shutdown, not a durable log.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"teamboard/internal/db"
	"teamboard/internal/domain"
	"teamboard/internal/migrate"
	"teamboard/internal/repo"
)

const timeLayout = time.RFC3339Nano

var tables = []string{"users", "roles", "campaigns", "tasks", "metrics", "activities", "id_counters"}

// Summary describes a snapshot file.
type Summary struct {
	Path          string
	SchemaVersion int
	Rows          map[string]int
}

// Save replaces the contents of the file at path with s.
func Save(ctx context.Context, path string, s repo.Snapshot) error {
	conn, err := db.Open(path)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(ctx, conn); err != nil {
		return err
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := writeRows(ctx, tx, s); err != nil {
		return err
	}
	return tx.Commit()
}

func writeRows(ctx context.Context, tx *sql.Tx, s repo.Snapshot) error {
	for _, u := range s.Users {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users(id,name,email,password,role,avatar) VALUES (?,?,?,?,?,?)`,
			u.ID, u.Name, u.Email, u.Password, u.Role, nullable(u.Avatar)); err != nil {
			return fmt.Errorf("insert user %d: %w", u.ID, err)
		}
	}
	for _, r := range s.Roles {
		perms, err := json.Marshal(nonNil(r.Permissions))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO roles(id,name,description,permissions_json) VALUES (?,?,?,?)`,
			r.ID, r.Name, r.Description, string(perms)); err != nil {
			return fmt.Errorf("insert role %d: %w", r.ID, err)
		}
	}
	for _, c := range s.Campaigns {
		if _, err := tx.ExecContext(ctx, `INSERT INTO campaigns(id,name,progress,start_date,end_date,status) VALUES (?,?,?,?,?,?)`,
			c.ID, c.Name, c.Progress, c.StartDate.UTC().Format(timeLayout), formatTime(c.EndDate), c.Status); err != nil {
			return fmt.Errorf("insert campaign %d: %w", c.ID, err)
		}
	}
	for _, t := range s.Tasks {
		if _, err := tx.ExecContext(ctx, `INSERT INTO tasks(id,title,description,user_id,campaign_id,status,due_date,completed_at) VALUES (?,?,?,?,?,?,?,?)`,
			t.ID, t.Title, t.Description, t.UserID, t.CampaignID, t.Status, formatTime(t.DueDate), formatTime(t.CompletedAt)); err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
	}
	for _, m := range s.Metrics {
		if _, err := tx.ExecContext(ctx, `INSERT INTO metrics(id,user_id,tasks_completed,tasks_total,on_time_rate,productivity_score) VALUES (?,?,?,?,?,?)`,
			m.ID, m.UserID, m.TasksCompleted, m.TasksTotal, m.OnTimeRate, m.ProductivityScore); err != nil {
			return fmt.Errorf("insert metric %d: %w", m.ID, err)
		}
	}
	for _, a := range s.Activities {
		if _, err := tx.ExecContext(ctx, `INSERT INTO activities(id,user_id,action,timestamp,resource_type,resource_id) VALUES (?,?,?,?,?,?)`,
			a.ID, a.UserID, a.Action, a.Timestamp.UTC().Format(timeLayout), a.ResourceType, a.ResourceID); err != nil {
			return fmt.Errorf("insert activity %d: %w", a.ID, err)
		}
	}
	counters := map[string]int64{
		"users":      s.NextIDs.Users,
		"roles":      s.NextIDs.Roles,
		"campaigns":  s.NextIDs.Campaigns,
		"tasks":      s.NextIDs.Tasks,
		"metrics":    s.NextIDs.Metrics,
		"activities": s.NextIDs.Activities,
	}
	for kind, next := range counters {
		if _, err := tx.ExecContext(ctx, `INSERT INTO id_counters(kind,next_id) VALUES (?,?)`, kind, next); err != nil {
			return fmt.Errorf("insert counter %s: %w", kind, err)
		}
	}
	return nil
}

// Load reads the snapshot at path. The boolean is false when no file exists.
func Load(ctx context.Context, path string) (repo.Snapshot, bool, error) {
	path = db.Path(path)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return repo.Snapshot{}, false, nil
		}
		return repo.Snapshot{}, false, err
	}
	conn, err := db.Open(path)
	if err != nil {
		return repo.Snapshot{}, false, err
	}
	defer conn.Close()
	if err := migrate.Migrate(ctx, conn); err != nil {
		return repo.Snapshot{}, false, err
	}
	var s repo.Snapshot
	if err := readRows(ctx, conn, &s); err != nil {
		return repo.Snapshot{}, false, err
	}
	return s, true, nil
}

func readRows(ctx context.Context, conn *sql.DB, s *repo.Snapshot) error {
	if err := query(ctx, conn, `SELECT id,name,email,password,role,COALESCE(avatar,'') FROM users ORDER BY id`, func(rows *sql.Rows) error {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.Avatar); err != nil {
			return err
		}
		s.Users = append(s.Users, u)
		return nil
	}); err != nil {
		return fmt.Errorf("read users: %w", err)
	}
	if err := query(ctx, conn, `SELECT id,name,description,permissions_json FROM roles ORDER BY id`, func(rows *sql.Rows) error {
		var r domain.Role
		var perms string
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &perms); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(perms), &r.Permissions); err != nil {
			return fmt.Errorf("role %d permissions: %w", r.ID, err)
		}
		s.Roles = append(s.Roles, r)
		return nil
	}); err != nil {
		return fmt.Errorf("read roles: %w", err)
	}
	if err := query(ctx, conn, `SELECT id,name,progress,start_date,end_date,status FROM campaigns ORDER BY id`, func(rows *sql.Rows) error {
		var c domain.Campaign
		var start string
		var end sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Progress, &start, &end, &c.Status); err != nil {
			return err
		}
		var err error
		if c.StartDate, err = time.Parse(timeLayout, start); err != nil {
			return err
		}
		if c.EndDate, err = parseTime(end); err != nil {
			return err
		}
		s.Campaigns = append(s.Campaigns, c)
		return nil
	}); err != nil {
		return fmt.Errorf("read campaigns: %w", err)
	}
	if err := query(ctx, conn, `SELECT id,title,description,user_id,campaign_id,status,due_date,completed_at FROM tasks ORDER BY id`, func(rows *sql.Rows) error {
		var t domain.Task
		var desc, due, completed sql.NullString
		var campaign sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Title, &desc, &t.UserID, &campaign, &t.Status, &due, &completed); err != nil {
			return err
		}
		if desc.Valid {
			t.Description = &desc.String
		}
		if campaign.Valid {
			t.CampaignID = &campaign.Int64
		}
		var err error
		if t.DueDate, err = parseTime(due); err != nil {
			return err
		}
		if t.CompletedAt, err = parseTime(completed); err != nil {
			return err
		}
		s.Tasks = append(s.Tasks, t)
		return nil
	}); err != nil {
		return fmt.Errorf("read tasks: %w", err)
	}
	if err := query(ctx, conn, `SELECT id,user_id,tasks_completed,tasks_total,on_time_rate,productivity_score FROM metrics ORDER BY id`, func(rows *sql.Rows) error {
		var m domain.Metric
		if err := rows.Scan(&m.ID, &m.UserID, &m.TasksCompleted, &m.TasksTotal, &m.OnTimeRate, &m.ProductivityScore); err != nil {
			return err
		}
		s.Metrics = append(s.Metrics, m)
		return nil
	}); err != nil {
		return fmt.Errorf("read metrics: %w", err)
	}
	if err := query(ctx, conn, `SELECT id,user_id,action,timestamp,resource_type,resource_id FROM activities ORDER BY id`, func(rows *sql.Rows) error {
		var a domain.Activity
		var ts string
		var rtype sql.NullString
		var rid sql.NullInt64
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &ts, &rtype, &rid); err != nil {
			return err
		}
		var err error
		if a.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
			return err
		}
		if rtype.Valid {
			a.ResourceType = &rtype.String
		}
		if rid.Valid {
			a.ResourceID = &rid.Int64
		}
		s.Activities = append(s.Activities, a)
		return nil
	}); err != nil {
		return fmt.Errorf("read activities: %w", err)
	}
	return query(ctx, conn, `SELECT kind,next_id FROM id_counters`, func(rows *sql.Rows) error {
		var kind string
		var next int64
		if err := rows.Scan(&kind, &next); err != nil {
			return err
		}
		switch kind {
		case "users":
			s.NextIDs.Users = next
		case "roles":
			s.NextIDs.Roles = next
		case "campaigns":
			s.NextIDs.Campaigns = next
		case "tasks":
			s.NextIDs.Tasks = next
		case "metrics":
			s.NextIDs.Metrics = next
		case "activities":
			s.NextIDs.Activities = next
		}
		return nil
	})
}

// Inspect reports the schema version and row counts of the file at path.
func Inspect(ctx context.Context, path string) (Summary, error) {
	path = db.Path(path)
	if _, err := os.Stat(path); err != nil {
		return Summary{}, err
	}
	conn, err := db.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer conn.Close()
	sum := Summary{Path: path, Rows: map[string]int{}}
	if sum.SchemaVersion, err = migrate.Version(ctx, conn); err != nil {
		return Summary{}, err
	}
	if sum.SchemaVersion == 0 {
		return sum, nil
	}
	for _, table := range tables[:6] {
		var n int
		if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
			return Summary{}, fmt.Errorf("count %s: %w", table, err)
		}
		sum.Rows[table] = n
	}
	return sum, nil
}

func query(ctx context.Context, conn *sql.DB, q string, scan func(*sql.Rows) error) error {
	rows, err := conn.QueryContext(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
