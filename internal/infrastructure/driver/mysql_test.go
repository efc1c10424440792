package driver

import (
	"reflect"
	"testing"
)

func TestMysqlAdapterSequentialPlaceholders(t *testing.T) {
	query, args := mysqlAdapter(`
INSERT INTO lesson_progress (learner_id, lesson_id, furthest_seconds, duration_seconds)
VALUES ($1, $2, 0, $3)
	`, []interface{}{"learner-1", "lesson-1", 900.0})

	want := " INSERT INTO lesson_progress (learner_id, lesson_id, furthest_seconds, duration_seconds) VALUES (?, ?, 0, ?) "
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []interface{}{"learner-1", "lesson-1", 900.0}) {
		t.Errorf("args = %v, order changed for already-sequential placeholders", args)
	}
}

// Statements that bind WHERE columns before SET columns number their
// placeholders out of text order. The rewrite has to follow the `$N`
// references, not the original arg positions.
func TestMysqlAdapterReordersArgs(t *testing.T) {
	query, args := mysqlAdapter(`
UPDATE lesson_progress
SET
    furthest_seconds = GREATEST(furthest_seconds, $3),
    duration_seconds = $4
WHERE
    learner_id = $1 AND lesson_id = $2
	`, []interface{}{"learner-1", "lesson-1", 420.5, 900.0})

	want := " UPDATE lesson_progress SET furthest_seconds = GREATEST(furthest_seconds, ?), duration_seconds = ? WHERE learner_id = ? AND lesson_id = ? "
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []interface{}{420.5, 900.0, "learner-1", "lesson-1"}) {
		t.Errorf("args = %v, want [420.5 900 learner-1 lesson-1]", args)
	}
}

func TestMysqlAdapterConditionalUpdate(t *testing.T) {
	_, args := mysqlAdapter(`
UPDATE attempt_cycle SET passed = $2, closed_at = $3 WHERE id = $1 AND closed_at IS NULL
	`, []interface{}{"cycle-1", true, int64(1700000000)})

	if !reflect.DeepEqual(args, []interface{}{true, int64(1700000000), "cycle-1"}) {
		t.Errorf("args = %v, want [true 1700000000 cycle-1]", args)
	}
}

func TestMysqlAdapterRepeatedPlaceholder(t *testing.T) {
	query, args := mysqlAdapter(`SELECT id FROM lesson WHERE subject_id = $1 OR id = $1`,
		[]interface{}{"subject-1"})

	if query != "SELECT id FROM lesson WHERE subject_id = ? OR id = ?" {
		t.Errorf("query = %q", query)
	}
	if !reflect.DeepEqual(args, []interface{}{"subject-1", "subject-1"}) {
		t.Errorf("args = %v, repeated placeholder should bind its arg twice", args)
	}
}

func TestMysqlAdapterQuotedIdentifiers(t *testing.T) {
	query, args := mysqlAdapter(`SELECT "number" FROM attempt_cycle WHERE id = $1`,
		[]interface{}{"cycle-1"})

	if query != "SELECT `number` FROM attempt_cycle WHERE id = ?" {
		t.Errorf("query = %q", query)
	}
	if !reflect.DeepEqual(args, []interface{}{"cycle-1"}) {
		t.Errorf("args = %v", args)
	}
}
