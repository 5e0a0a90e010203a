package training

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
)

func TestReplacePlan(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM plan_entries`).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	mock.ExpectQuery(`INSERT INTO plan_entries`).
		WithArgs(pgxmock.AnyArg(), "user-1", 1, "run", 5.0, 5.5, "Lockerer Lauf").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	mock.ExpectQuery(`INSERT INTO plan_entries`).
		WithArgs(pgxmock.AnyArg(), "user-1", 2, "rest", 0.0, 0.0, "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	svc := NewService(mock)
	entries, err := svc.ReplacePlan(context.Background(), "user-1", []PlanEntry{
		{Day: 1, Kind: "run", DistanceKm: 5.0, TargetPace: 5.5, Description: "Lockerer Lauf"},
		{Day: 2, Kind: "rest"},
	})
	if err != nil {
		t.Fatalf("replace plan: %v", err)
	}
	if len(entries) != 2 || entries[0].ID == "" {
		t.Fatalf("expected entries with generated ids")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNextSessionSkipsRestDays(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`WHERE user_id=\$1 AND kind='run' AND NOT completed`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "day", "kind", "distance_km", "target_pace", "description", "completed", "created_at"}).
			AddRow("entry-3", "user-1", 3, "run", 8.0, 5.5, "Tempolauf", false, time.Now()))

	svc := NewService(mock)
	entry, err := svc.NextSession(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("next session: %v", err)
	}
	if entry.Day != 3 || entry.DistanceKm != 8.0 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestMarkCompleted(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`UPDATE plan_entries SET completed=true`).
		WithArgs("entry-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	svc := NewService(mock)
	if err := svc.MarkCompleted(context.Background(), "entry-1"); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
}

func TestReplacePlanInsertError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM plan_entries`).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectQuery(`INSERT INTO plan_entries`).
		WithArgs(pgxmock.AnyArg(), "user-1", 1, "run", 0.0, 0.0, "").
		WillReturnError(errPlan)

	svc := NewService(mock)
	if _, err := svc.ReplacePlan(context.Background(), "user-1", []PlanEntry{{Day: 1, Kind: "run"}}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParsePace(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"5:30", 5.5, false},
		{"6:00", 6.0, false},
		{"4:45", 4.75, false},
		{"5.5", 5.5, false},
		{" 5:30 ", 5.5, false},
		{"", 0, true},
		{"5:61", 0, true},
		{"abc", 0, true},
		{"5:ab", 0, true},
	}
	for _, tc := range cases {
		got, err := ParsePace(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParsePace(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePace(%q): %v", tc.in, err)
			continue
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ParsePace(%q) = %f, want %f", tc.in, got, tc.want)
		}
	}
}

var errPlan = errors.New("plan error")
