package db

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"formatrack_backend/models"
	"formatrack_backend/rules"
	"formatrack_backend/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	tc.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "formatrack",
			"POSTGRES_PASSWORD": "formatrack",
			"POSTGRES_DB":       "formatrack",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := Config{
		Host:         host,
		Port:         port.Int(),
		User:         "formatrack",
		Password:     "formatrack",
		DBName:       "formatrack",
		MaxOpenConns: 10,
	}
	require.NoError(t, Migrate(cfg.DSN()))

	database, err := Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return NewStore(database, 5*time.Second)
}

func newClient(nom string, prix, verse int64) models.Client {
	return rules.NewClient(models.CreateClientRequest{
		Nom:           nom,
		Prenom:        "Test",
		PrixFormation: prix,
		MontantVerse:  verse,
	}, time.Now())
}

func TestPostgresStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin, err := s.CreateUser(ctx, "admin", "hash")
	require.NoError(t, err)

	t.Run("users", func(t *testing.T) {
		_, err := s.CreateUser(ctx, "admin", "hash")
		assert.ErrorIs(t, err, store.ErrConflict)

		creds, err := s.UserByUsername(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, "hash", creds.PasswordHash)

		_, err = s.UserByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, store.ErrNotFound)

		created, err := s.SeedAdmin(ctx, "admin2", "admin123", func(p string) (string, error) { return p, nil })
		require.NoError(t, err)
		assert.False(t, created, "users already exist")
	})

	t.Run("balance is derived", func(t *testing.T) {
		c, err := s.CreateClient(ctx, newClient("Balance", 100000, 20000))
		require.NoError(t, err)
		assert.Equal(t, int64(80000), c.MontantRestant)
		assert.Equal(t, models.StatutEnCours, c.StatutFormation)

		prix := int64(150000)
		c, err = s.UpdateClient(ctx, c.ID, models.ClientPatch{PrixFormation: &prix}, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(130000), c.MontantRestant)
		assert.Nil(t, c.DateStatutModifie)

		statut := models.StatutSuspendu
		c, err = s.UpdateClient(ctx, c.ID, models.ClientPatch{StatutFormation: &statut}, time.Now())
		require.NoError(t, err)
		require.NotNil(t, c.DateStatutModifie)

		_, err = s.UpdateClient(ctx, 999999, models.ClientPatch{PrixFormation: &prix}, time.Now())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("payments", func(t *testing.T) {
		c, err := s.CreateClient(ctx, newClient("Paiement", 50000, 0))
		require.NoError(t, err)

		p, err := s.RecordPayment(ctx, c.ID, 20000, admin.ID, time.Now())
		require.NoError(t, err)
		require.NotNil(t, p.Username)
		assert.Equal(t, "admin", *p.Username)

		_, err = s.RecordPayment(ctx, c.ID, 40000, admin.ID, time.Now())
		assert.ErrorIs(t, err, store.ErrInsufficientBalance)

		got, err := s.GetClient(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(20000), got.MontantVerse)
		assert.Equal(t, int64(30000), got.MontantRestant)

		history, err := s.ListClientPayments(ctx, c.ID)
		require.NoError(t, err)
		assert.Len(t, history, 1, "rejected payment must be rolled back")
	})

	t.Run("concurrent payments cannot overdraw", func(t *testing.T) {
		c, err := s.CreateClient(ctx, newClient("Concurrent", 10000, 0))
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make(chan error, 5)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.RecordPayment(ctx, c.ID, 3000, admin.ID, time.Now())
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var ok int
		for err := range errs {
			if err == nil {
				ok++
			} else {
				assert.ErrorIs(t, err, store.ErrInsufficientBalance)
			}
		}
		assert.Equal(t, 3, ok)

		got, err := s.GetClient(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(9000), got.MontantVerse)
		assert.Equal(t, int64(1000), got.MontantRestant)
	})

	t.Run("course cascade", func(t *testing.T) {
		a, err := s.CreateClient(ctx, newClient("Aka", 0, 0))
		require.NoError(t, err)
		b, err := s.CreateClient(ctx, newClient("Bi", 0, 0))
		require.NoError(t, err)

		_, err = s.CreateCourse(ctx, models.CourseRequest{Intitule: "Dup", Enseignant: "X", Clients: []int{a.ID, a.ID}})
		assert.ErrorIs(t, err, store.ErrConflict)
		_, err = s.CreateCourse(ctx, models.CourseRequest{Intitule: "Ghost", Enseignant: "X", Clients: []int{999999}})
		assert.ErrorIs(t, err, store.ErrNotFound)

		course, err := s.CreateCourse(ctx, models.CourseRequest{Intitule: "Cascade", Enseignant: "X", Clients: []int{b.ID, a.ID}})
		require.NoError(t, err)
		assert.Equal(t, []int{a.ID, b.ID}, course.Clients)

		heure := "09:45"
		att := models.Attendance{ClientID: a.ID, CoursID: course.ID, DatePresence: "2026-03-10", HeurePresence: &heure, Etat: models.EtatPresent}
		inc, err := rules.DeriveIncident(att)
		require.NoError(t, err)
		saved, err := s.RecordAttendance(ctx, att, inc)
		require.NoError(t, err)
		require.NotNil(t, saved.HeurePresence)
		assert.Equal(t, "09:45", *saved.HeurePresence)

		incidents, err := s.ListClientIncidents(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, incidents, 1)
		assert.Equal(t, models.IncidentRetard, incidents[0].Type)
		assert.Equal(t, "Cascade", incidents[0].CoursNom)

		course, err = s.UpdateCourse(ctx, course.ID, models.CourseRequest{Intitule: "Cascade", Enseignant: "Y", Clients: []int{b.ID}})
		require.NoError(t, err)
		assert.Equal(t, []int{b.ID}, course.Clients)

		require.NoError(t, s.DeleteCourse(ctx, course.ID))
		assert.ErrorIs(t, s.DeleteCourse(ctx, course.ID), store.ErrNotFound)

		incidents, err = s.ListClientIncidents(ctx, a.ID)
		require.NoError(t, err)
		assert.Empty(t, incidents)
		_, err = s.GetClient(ctx, b.ID)
		assert.NoError(t, err, "clients survive their course")
	})

	t.Run("deleting a user keeps payments", func(t *testing.T) {
		clerk, err := s.CreateUser(ctx, "clerk", "hash")
		require.NoError(t, err)
		c, err := s.CreateClient(ctx, newClient("Orphan", 1000, 0))
		require.NoError(t, err)
		p, err := s.RecordPayment(ctx, c.ID, 500, clerk.ID, time.Now())
		require.NoError(t, err)

		require.NoError(t, s.DeleteUser(ctx, clerk.ID))

		got, err := s.GetPayment(ctx, p.ID)
		require.NoError(t, err)
		assert.Nil(t, got.UtilisateurID)
		assert.Nil(t, got.Username)

		_, err = s.RecordPayment(ctx, c.ID, 100, clerk.ID, time.Now())
		assert.ErrorIs(t, err, store.ErrActorNotFound)
		client, err := s.GetClient(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(500), client.MontantVerse)
	})
}

func TestDashboardStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin, err := s.CreateUser(ctx, "admin", "hash")
	require.NoError(t, err)

	loc := time.FixedZone("WAT", 3600)
	dayStart := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)

	active, err := s.CreateClient(ctx, newClient("Actif", 100000, 0))
	require.NoError(t, err)
	done := newClient("Fini", 100000, 0)
	done.StatutFormation = models.StatutTermine
	finished, err := s.CreateClient(ctx, done)
	require.NoError(t, err)

	course, err := s.CreateCourse(ctx, models.CourseRequest{Intitule: "Stats", Enseignant: "X", Clients: []int{active.ID, finished.ID}})
	require.NoError(t, err)

	for i, at := range []time.Time{
		dayStart.Add(-time.Minute),   // yesterday
		dayStart,                     // first instant of today
		dayStart.Add(23 * time.Hour), // late today
		dayStart.Add(24 * time.Hour), // tomorrow
	} {
		_, err := s.RecordPayment(ctx, active.ID, int64(1000*(i+1)), admin.ID, at)
		require.NoError(t, err, fmt.Sprint(at))
	}

	for _, a := range []models.Attendance{
		{ClientID: active.ID, CoursID: course.ID, DatePresence: "2026-03-10", Etat: models.EtatAbsent},
		{ClientID: finished.ID, CoursID: course.ID, DatePresence: "2026-03-10", Etat: models.EtatAbsent},
		{ClientID: active.ID, CoursID: course.ID, DatePresence: "2026-03-09", Etat: models.EtatAbsent},
	} {
		inc, err := rules.DeriveIncident(a)
		require.NoError(t, err)
		_, err = s.RecordAttendance(ctx, a, inc)
		require.NoError(t, err)
	}

	stats, err := s.DashboardStats(ctx, dayStart)
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{
		TotalClients:        2,
		ClientsActifs:       1,
		TotalCours:          1,
		PaiementsAujourdhui: 2000 + 3000,
		AbsentsAujourdhui:   2,
		TotalRecettes:       1000 + 2000 + 3000 + 4000,
	}, stats)
}
