package db

import (
	"testing"
)

func TestRebind(t *testing.T) {
	cases := []struct {
		driver string
		in     string
		want   string
	}{
		{DriverSQLite, `SELECT * FROM t WHERE a = ? AND b = ?`, `SELECT * FROM t WHERE a = ? AND b = ?`},
		{DriverPostgres, `SELECT * FROM t WHERE a = ? AND b = ?`, `SELECT * FROM t WHERE a = $1 AND b = $2`},
		{DriverPostgres, `SELECT '?' FROM t WHERE a = ?`, `SELECT '?' FROM t WHERE a = $1`},
		{DriverPostgres, `INSERT INTO t VALUES (?,?,?)`, `INSERT INTO t VALUES ($1,$2,$3)`},
	}
	for _, tc := range cases {
		d := &DB{Driver: tc.driver}
		if got := d.Rebind(tc.in); got != tc.want {
			t.Fatalf("Rebind(%s, %q) = %q, want %q", tc.driver, tc.in, got, tc.want)
		}
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
	if _, err := Open(DriverPostgres, ""); err == nil {
		t.Fatalf("expected error for empty postgres dsn")
	}
}

func TestOpen_AppliesMigrationsAndRollback(t *testing.T) {
	d, err := Open(DriverSQLite, "file:migrations_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	var n int
	if err := d.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	migs, err := loadMigrations(DriverSQLite)
	if err != nil {
		t.Fatalf("load migrations: %v", err)
	}
	if n == 0 || n != len(migs) {
		t.Fatalf("applied %d migrations, embedded %d", n, len(migs))
	}
	if _, err := d.Exec(`SELECT id, items, version FROM orders LIMIT 1`); err != nil {
		t.Fatalf("orders table missing: %v", err)
	}

	// Re-applying is a no-op.
	if err := applyMigrations(d); err != nil {
		t.Fatalf("reapply: %v", err)
	}

	if err := RollbackLast(d); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if _, err := d.Exec(`SELECT id FROM orders LIMIT 1`); err == nil {
		t.Fatalf("expected orders table to be dropped after rollback")
	}
	if err := d.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil || n != len(migs)-1 {
		t.Fatalf("schema_migrations after rollback: n=%d err=%v", n, err)
	}
	if err := applyMigrations(d); err != nil {
		t.Fatalf("re-apply after rollback: %v", err)
	}
}

func TestLoadMigrations_BothDialects(t *testing.T) {
	for _, drv := range []string{DriverSQLite, DriverPostgres} {
		migs, err := loadMigrations(drv)
		if err != nil {
			t.Fatalf("%s: %v", drv, err)
		}
		for v, m := range migs {
			if m.upFile == "" || m.downFile == "" {
				t.Fatalf("%s: migration %04d incomplete: %+v", drv, v, m)
			}
		}
		if len(migs) < 2 {
			t.Fatalf("%s: expected at least two migrations, got %d", drv, len(migs))
		}
	}
}
