package db

import (
	"context"
	"database/sql"
	"fmt"

	"formatrack_backend/models"
	"formatrack_backend/store"

	"github.com/lib/pq"
)

const courseClientIDs = `
	COALESCE(
		(SELECT array_agg(cc.client_id ORDER BY cc.client_id) FROM cours_clients cc WHERE cc.cours_id = co.id),
		'{}'
	)`

func toInts(ids pq.Int64Array) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

func toInt64s(ids []int) pq.Int64Array {
	out := make(pq.Int64Array, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func getCourse(ctx context.Context, q querier, id int) (models.Course, error) {
	var c models.Course
	var ids pq.Int64Array
	err := q.QueryRowContext(ctx, `
		SELECT co.id, co.intitule, co.enseignant, co.created_at, `+courseClientIDs+`
		FROM cours co
		WHERE co.id = $1
	`, id).Scan(&c.ID, &c.Intitule, &c.Enseignant, &c.CreatedAt, &ids)
	if err != nil {
		return c, mapError(err)
	}
	c.Clients = toInts(ids)
	return c, nil
}

// enroll inserts one enrollment per client id. A repeated id violates the
// (cours_id, client_id) uniqueness and an unknown id the client foreign key.
func enroll(ctx context.Context, tx *sql.Tx, courseID int, clientIDs []int) error {
	if len(clientIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO cours_clients (cours_id, client_id)
		SELECT $1, unnest($2::int[])
	`, courseID, toInt64s(clientIDs))
	return mapError(err)
}

func (s *Store) ListCourses(ctx context.Context) ([]models.CourseSummary, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			co.id,
			co.intitule,
			co.enseignant,
			co.created_at,
			COALESCE(array_agg(cc.client_id ORDER BY cc.client_id) FILTER (WHERE cc.client_id IS NOT NULL), '{}'),
			string_agg(cl.nom || ' ' || cl.prenom, ', ' ORDER BY cl.nom, cl.prenom),
			COUNT(cc.client_id)
		FROM cours co
		LEFT JOIN cours_clients cc ON cc.cours_id = co.id
		LEFT JOIN clients cl ON cl.id = cc.client_id
		GROUP BY co.id
		ORDER BY co.created_at DESC, co.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("error fetching courses: %w", err)
	}
	defer rows.Close()

	courses := []models.CourseSummary{}
	for rows.Next() {
		var c models.CourseSummary
		var ids pq.Int64Array
		var noms sql.NullString
		if err := rows.Scan(&c.ID, &c.Intitule, &c.Enseignant, &c.CreatedAt, &ids, &noms, &c.NombreClients); err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		c.Clients = toInts(ids)
		c.ClientsNoms = nullString(noms)
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (s *Store) GetCourse(ctx context.Context, id int) (models.Course, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return getCourse(ctx, s.db, id)
}

func (s *Store) CreateCourse(ctx context.Context, req models.CourseRequest) (models.Course, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var course models.Course
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var id int
		err := tx.QueryRowContext(ctx, `
			INSERT INTO cours (intitule, enseignant)
			VALUES ($1, $2)
			RETURNING id
		`, req.Intitule, req.Enseignant).Scan(&id)
		if err != nil {
			return mapError(err)
		}
		if err := enroll(ctx, tx, id, req.Clients); err != nil {
			return err
		}
		course, err = getCourse(ctx, tx, id)
		return err
	})
	return course, err
}

func (s *Store) UpdateCourse(ctx context.Context, id int, req models.CourseRequest) (models.Course, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var course models.Course
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE cours SET intitule = $1, enseignant = $2 WHERE id = $3
		`, req.Intitule, req.Enseignant, id)
		if err != nil {
			return mapError(err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return store.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cours_clients WHERE cours_id = $1`, id); err != nil {
			return fmt.Errorf("error clearing enrollments: %w", err)
		}
		if err := enroll(ctx, tx, id, req.Clients); err != nil {
			return err
		}
		course, err = getCourse(ctx, tx, id)
		return err
	})
	return course, err
}

// DeleteCourse cascades to enrollments, attendance and incidents; clients are kept.
func (s *Store) DeleteCourse(ctx context.Context, id int) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return deleteByID(ctx, s.db, `DELETE FROM cours WHERE id = $1`, id)
}

func (s *Store) ListCourseClients(ctx context.Context, courseID int) ([]models.Client, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := exists(ctx, s.db, `SELECT EXISTS (SELECT 1 FROM cours WHERE id = $1)`, courseID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients c
		JOIN cours_clients cc ON cc.client_id = c.id
		WHERE cc.cours_id = $1
		ORDER BY c.nom, c.prenom
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("error fetching course clients: %w", err)
	}
	return scanClients(rows)
}
