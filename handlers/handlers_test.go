package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"formatrack_backend/middleware"
	"formatrack_backend/models"
	"formatrack_backend/receipt"
	"formatrack_backend/routes"
	"formatrack_backend/store/storetest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	t      *testing.T
	router *gin.Engine
	store  *storetest.Store
	now    time.Time
	admin  models.User
	token  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	now := time.Date(2026, 3, 10, 10, 15, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	st := storetest.New(clock)
	hash, err := middleware.HashPassword("admin123")
	require.NoError(t, err)
	admin, err := st.CreateUser(context.Background(), "admin", hash)
	require.NoError(t, err)

	tokens := middleware.NewTokenService([]byte("test-secret"), 24*time.Hour).WithClock(clock)
	token, err := tokens.Generate(models.Identity{ID: admin.ID, Username: admin.Username})
	require.NoError(t, err)

	r := gin.New()
	routes.SetupRoutes(r, routes.Options{
		Store:    st,
		Tokens:   tokens,
		Receipts: receipt.NewPDFRenderer("FormaTrack - Centre de Formation", time.UTC),
		Now:      clock,
	})
	return &testEnv{t: t, router: r, store: st, now: now, admin: admin, token: token}
}

func (e *testEnv) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// do sends an authenticated request as the seeded admin.
func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	return e.request(method, path, body, e.token)
}

func itoa(i int) string { return strconv.Itoa(i) }

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

func (e *testEnv) createClient(body map[string]any) models.Client {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/clients", body)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Client](e.t, w)
}

func (e *testEnv) createCourse(intitule string, clients ...int) models.Course {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/cours", map[string]any{
		"intitule":   intitule,
		"enseignant": "M. Traoré",
		"clients":    clients,
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Course](e.t, w)
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)

	t.Run("success", func(t *testing.T) {
		w := e.request(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "admin123"}, "")
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[models.LoginResponse](t, w)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "admin", resp.User.Username)
		assert.NotContains(t, w.Body.String(), "password")

		me := e.request(http.MethodGet, "/api/auth/me", nil, resp.Token)
		require.Equal(t, http.StatusOK, me.Code)
		assert.Equal(t, models.Identity{ID: e.admin.ID, Username: "admin"}, decode[models.Identity](t, me))
	})

	t.Run("unknown user", func(t *testing.T) {
		w := e.request(http.MethodPost, "/api/auth/login", map[string]string{"username": "ghost", "password": "admin123"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Utilisateur non trouvé", errorOf(t, w))
	})

	t.Run("wrong password", func(t *testing.T) {
		w := e.request(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "nope123"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Mot de passe incorrect", errorOf(t, w))
	})

	t.Run("missing fields", func(t *testing.T) {
		w := e.request(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Requête invalide", errorOf(t, w))
		assert.NotContains(t, w.Body.String(), "Key:")
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newTestEnv(t)

	w := e.request(http.MethodGet, "/api/clients", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token d'accès requis", errorOf(t, w))

	w = e.request(http.MethodGet, "/api/clients", nil, "forged")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Token invalide", errorOf(t, w))
}

func TestCreateClientDefaults(t *testing.T) {
	e := newTestEnv(t)

	c := e.createClient(map[string]any{
		"nom":            "Koné",
		"prenom":         "Awa",
		"prix_formation": 150000,
		"montant_verse":  50000,
	})

	assert.Positive(t, c.ID)
	assert.Equal(t, models.TypeStagiaire, c.TypeFormation)
	assert.Equal(t, models.StatutEnCours, c.StatutFormation)
	assert.Equal(t, "2026-03-10", c.DateInscription)
	assert.Equal(t, int64(100000), c.MontantRestant)
	assert.Nil(t, c.DateStatutModifie)
}

func TestCreateClientValidation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing nom", map[string]any{"prenom": "Awa"}},
		{"unknown field", map[string]any{"nom": "Koné", "prenom": "Awa", "solde": 12}},
		{"derived field", map[string]any{"nom": "Koné", "prenom": "Awa", "montant_restant": 12}},
		{"bad type", map[string]any{"nom": "Koné", "prenom": "Awa", "type_formation": "stage"}},
		{"bad date", map[string]any{"nom": "Koné", "prenom": "Awa", "date_inscription": "10/03/2026"}},
		{"negative price", map[string]any{"nom": "Koné", "prenom": "Awa", "prix_formation": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/api/clients", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	t.Run("messages hide decoder details", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/clients", map[string]any{"nom": "Koné", "prenom": "Awa", "solde": 12})
		assert.Equal(t, `Champ inconnu: "solde"`, errorOf(t, w))

		w = e.do(http.MethodPost, "/api/clients", map[string]any{"prenom": "Awa"})
		assert.Equal(t, "Requête invalide", errorOf(t, w))
		assert.NotContains(t, w.Body.String(), "CreateClientRequest")
	})

	clients := decode[[]models.Client](t, e.do(http.MethodGet, "/api/clients", nil))
	assert.Empty(t, clients)
}

func TestUpdateClientRecomputesBalance(t *testing.T) {
	e := newTestEnv(t)
	c := e.createClient(map[string]any{"nom": "Koné", "prenom": "Awa", "prix_formation": 100000, "montant_verse": 20000})

	w := e.do(http.MethodPut, "/api/clients/"+itoa(c.ID), map[string]any{"prix_formation": 120000})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Client](t, w)
	assert.Equal(t, int64(120000), updated.PrixFormation)
	assert.Equal(t, int64(20000), updated.MontantVerse)
	assert.Equal(t, int64(100000), updated.MontantRestant)
	assert.Equal(t, "Awa", updated.Prenom)

	w = e.do(http.MethodPut, "/api/clients/"+itoa(c.ID), map[string]any{"montant_verse": 30000})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(90000), decode[models.Client](t, w).MontantRestant)
}

func TestUpdateClientAcceptsEchoedReadOnlyFields(t *testing.T) {
	e := newTestEnv(t)
	c := e.createClient(map[string]any{"nom": "Koné", "prenom": "Awa", "prix_formation": 100000})

	echoed := map[string]any{
		"id":                  999,
		"nom":                 "Koné",
		"prenom":              "Aminata",
		"montant_restant":     1,
		"created_at":          "2020-01-01T00:00:00Z",
		"date_statut_modifie": nil,
		"prix_formation":      100000,
	}
	w := e.do(http.MethodPut, "/api/clients/"+itoa(c.ID), echoed)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decode[models.Client](t, w)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, "Aminata", updated.Prenom)
	assert.Equal(t, int64(100000), updated.MontantRestant)
}

func TestUpdateClientRejectsInvalidInput(t *testing.T) {
	e := newTestEnv(t)
	c := e.createClient(map[string]any{"nom": "Koné", "prenom": "Awa"})

	w := e.do(http.MethodPut, "/api/clients/"+itoa(c.ID), map[string]any{"solde": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPut, "/api/clients/"+itoa(c.ID), map[string]any{"statut_formation": "fini"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPut, "/api/clients/"+itoa(c.ID), map[string]any{"nom": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPut, "/api/clients/4242", map[string]any{"nom": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Client non trouvé", errorOf(t, w))

	w = e.do(http.MethodPut, "/api/clients/abc", map[string]any{"nom": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateClientStampsStatusChange(t *testing.T) {
	e := newTestEnv(t)
	c := e.createClient(map[string]any{"nom": "Koné", "prenom": "Awa"})

	w := e.do(http.MethodPut, "/api/clients/"+itoa(c.ID), map[string]any{"statut_formation": "en_cours"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[models.Client](t, w).DateStatutModifie)

	w = e.do(http.MethodPut, "/api/clients/"+itoa(c.ID), map[string]any{"statut_formation": "suspendu"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.Client](t, w)
	assert.Equal(t, models.StatutSuspendu, updated.StatutFormation)
	require.NotNil(t, updated.DateStatutModifie)
	assert.True(t, e.now.Equal(*updated.DateStatutModifie))
}

func TestPayments(t *testing.T) {
	e := newTestEnv(t)
	c := e.createClient(map[string]any{"nom": "Koné", "prenom": "Awa", "prix_formation": 100000, "montant_verse": 20000})

	t.Run("exceeds remaining", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/paiements", map[string]any{"client_id": c.ID, "montant": 90000})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Le montant ne peut pas être supérieur au montant restant", errorOf(t, w))
	})

	t.Run("not positive", func(t *testing.T) {
		for _, montant := range []int{0, -500} {
			w := e.do(http.MethodPost, "/api/paiements", map[string]any{"client_id": c.ID, "montant": montant})
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
	})

	t.Run("missing client", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/paiements", map[string]any{"montant": 100})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Requête invalide", errorOf(t, w))
		assert.NotContains(t, w.Body.String(), "CreatePaymentRequest")
	})

	t.Run("unknown client", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/paiements", map[string]any{"client_id": 9999, "montant": 100})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejections leave the balance untouched", func(t *testing.T) {
		got := decode[models.Client](t, e.do(http.MethodGet, "/api/clients/"+itoa(c.ID), nil))
		assert.Equal(t, int64(20000), got.MontantVerse)
		assert.Empty(t, decode[[]models.PaymentRow](t, e.do(http.MethodGet, "/api/paiements", nil)))
	})

	t.Run("records and increments", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/paiements", map[string]any{"client_id": c.ID, "montant": 30000})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		p := decode[models.PaymentRow](t, w)
		assert.Equal(t, int64(30000), p.Montant)
		require.NotNil(t, p.UtilisateurID)
		assert.Equal(t, e.admin.ID, *p.UtilisateurID)
		require.NotNil(t, p.Username)
		assert.Equal(t, "admin", *p.Username)

		got := decode[models.Client](t, e.do(http.MethodGet, "/api/clients/"+itoa(c.ID), nil))
		assert.Equal(t, int64(50000), got.MontantVerse)
		assert.Equal(t, int64(50000), got.MontantRestant)

		history := decode[[]models.PaymentRow](t, e.do(http.MethodGet, "/api/clients/"+itoa(c.ID)+"/paiements", nil))
		require.Len(t, history, 1)
		assert.Equal(t, "Koné", history[0].Nom)
	})

	t.Run("exact remaining settles the balance", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/paiements", map[string]any{"client_id": c.ID, "montant": 50000})
		require.Equal(t, http.StatusCreated, w.Code)

		got := decode[models.Client](t, e.do(http.MethodGet, "/api/clients/"+itoa(c.ID), nil))
		assert.Equal(t, int64(0), got.MontantRestant)

		w = e.do(http.MethodPost, "/api/paiements", map[string]any{"client_id": c.ID, "montant": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPaymentReceipt(t *testing.T) {
	e := newTestEnv(t)
	c := e.createClient(map[string]any{"nom": "Koné", "prenom": "Awa", "prix_formation": 100000})
	w := e.do(http.MethodPost, "/api/paiements", map[string]any{"client_id": c.ID, "montant": 25000})
	require.Equal(t, http.StatusCreated, w.Code)
	p := decode[models.PaymentRow](t, w)

	w = e.do(http.MethodGet, "/api/paiements/"+itoa(p.ID)+"/recu", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "recu_Koné_Awa_"+itoa(p.ID)+".pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = e.do(http.MethodGet, "/api/paiements/9999/recu", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Paiement non trouvé", errorOf(t, w))
}

func TestAttendanceDerivesIncidents(t *testing.T) {
	e := newTestEnv(t)
	c := e.createClient(map[string]any{"nom": "Koné", "prenom": "Awa"})
	course := e.createCourse("Informatique", c.ID)

	record := func(etat, heure string) *httptest.ResponseRecorder {
		return e.do(http.MethodPost, "/api/presences", map[string]any{
			"client_id": c.ID, "cours_id": course.ID, "etat": etat, "heure_presence": heure,
		})
	}

	w := record("present", "09:00")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	a := decode[models.Attendance](t, w)
	assert.Equal(t, "2026-03-10", a.DatePresence)
	assert.Empty(t, decode[[]models.IncidentRow](t, e.do(http.MethodGet, "/api/absences-retards", nil)))

	require.Equal(t, http.StatusCreated, record("present", "09:01").Code)
	require.Equal(t, http.StatusCreated, record("absent", "").Code)

	incidents := decode[[]models.IncidentRow](t, e.do(http.MethodGet, "/api/absences-retards", nil))
	require.Len(t, incidents, 2)

	absence, retard := incidents[0], incidents[1]
	assert.Equal(t, models.IncidentAbsence, absence.Type)
	assert.Nil(t, absence.HeurePresence)
	assert.Equal(t, "2026-03-10", absence.Date)
	assert.Equal(t, models.IncidentRetard, retard.Type)
	require.NotNil(t, retard.HeurePresence)
	assert.Equal(t, "09:01", *retard.HeurePresence)
	assert.Equal(t, "Informatique", retard.CoursNom)

	perClient := decode[[]models.IncidentRow](t, e.do(http.MethodGet, "/api/clients/"+itoa(c.ID)+"/absences-retards", nil))
	assert.Len(t, perClient, 2)

	rows := decode[[]models.AttendanceRow](t, e.do(http.MethodGet, "/api/presences", nil))
	require.Len(t, rows, 3)
	assert.Equal(t, "Awa", rows[0].Prenom)

	w = e.do(http.MethodDelete, "/api/absences-retards/"+itoa(absence.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(http.MethodDelete, "/api/absences-retards/"+itoa(absence.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAttendanceValidation(t *testing.T) {
	e := newTestEnv(t)
	c := e.createClient(map[string]any{"nom": "Koné", "prenom": "Awa"})
	course := e.createCourse("Couture", c.ID)

	w := e.do(http.MethodPost, "/api/presences", map[string]any{"client_id": c.ID, "cours_id": course.ID, "etat": "present", "heure_presence": "9h30"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/presences", map[string]any{"client_id": c.ID, "cours_id": course.ID, "etat": "malade"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/presences", map[string]any{"client_id": 9999, "cours_id": course.ID, "etat": "absent"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Empty(t, decode[[]models.AttendanceRow](t, e.do(http.MethodGet, "/api/presences", nil)))
	assert.Empty(t, decode[[]models.IncidentRow](t, e.do(http.MethodGet, "/api/absences-retards", nil)))
}

func TestCourses(t *testing.T) {
	e := newTestEnv(t)
	awa := e.createClient(map[string]any{"nom": "Koné", "prenom": "Awa"})
	issa := e.createClient(map[string]any{"nom": "Bamba", "prenom": "Issa"})

	course := e.createCourse("Informatique", awa.ID, issa.ID)
	assert.ElementsMatch(t, []int{awa.ID, issa.ID}, course.Clients)

	list := decode[[]models.CourseSummary](t, e.do(http.MethodGet, "/api/cours", nil))
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].NombreClients)
	require.NotNil(t, list[0].ClientsNoms)
	assert.Equal(t, "Bamba Issa, Koné Awa", *list[0].ClientsNoms)

	enrolled := decode[[]models.Client](t, e.do(http.MethodGet, "/api/cours/"+itoa(course.ID)+"/clients", nil))
	require.Len(t, enrolled, 2)
	assert.Equal(t, "Bamba", enrolled[0].Nom)

	t.Run("duplicate enrollment", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/cours", map[string]any{"intitule": "Couture", "enseignant": "Mme Diallo", "clients": []int{awa.ID, awa.ID}})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown client", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/cours", map[string]any{"intitule": "Couture", "enseignant": "Mme Diallo", "clients": []int{9999}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing enseignant", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/cours", map[string]any{"intitule": "Couture", "enseignant": "  "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update replaces enrollments", func(t *testing.T) {
		w := e.do(http.MethodPut, "/api/cours/"+itoa(course.ID), map[string]any{"intitule": "Informatique avancée", "enseignant": "M. Traoré", "clients": []int{issa.ID}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode[models.Course](t, w)
		assert.Equal(t, "Informatique avancée", updated.Intitule)
		assert.Equal(t, []int{issa.ID}, updated.Clients)

		got := decode[models.Course](t, e.do(http.MethodGet, "/api/cours/"+itoa(course.ID), nil))
		assert.Equal(t, []int{issa.ID}, got.Clients)
	})

	t.Run("delete cascades", func(t *testing.T) {
		w := e.do(http.MethodPost, "/api/presences", map[string]any{"client_id": issa.ID, "cours_id": course.ID, "etat": "absent"})
		require.Equal(t, http.StatusCreated, w.Code)

		w = e.do(http.MethodDelete, "/api/cours/"+itoa(course.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Cours supprimé avec succès", decode[map[string]string](t, w)["message"])

		assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/cours/"+itoa(course.ID), nil).Code)
		assert.Empty(t, decode[[]models.AttendanceRow](t, e.do(http.MethodGet, "/api/presences", nil)))
		assert.Empty(t, decode[[]models.IncidentRow](t, e.do(http.MethodGet, "/api/absences-retards", nil)))
		assert.Len(t, decode[[]models.Client](t, e.do(http.MethodGet, "/api/clients", nil)), 2)
	})
}

func TestDeleteClientCascades(t *testing.T) {
	e := newTestEnv(t)
	c := e.createClient(map[string]any{"nom": "Koné", "prenom": "Awa", "prix_formation": 50000})
	course := e.createCourse("Informatique", c.ID)
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/paiements", map[string]any{"client_id": c.ID, "montant": 1000}).Code)
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/presences", map[string]any{"client_id": c.ID, "cours_id": course.ID, "etat": "absent"}).Code)

	w := e.do(http.MethodDelete, "/api/clients/"+itoa(c.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/clients/"+itoa(c.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/clients/"+itoa(c.ID)+"/paiements", nil).Code)
	assert.Empty(t, decode[[]models.PaymentRow](t, e.do(http.MethodGet, "/api/paiements", nil)))
	assert.Empty(t, decode[[]models.IncidentRow](t, e.do(http.MethodGet, "/api/absences-retards", nil)))
	assert.Empty(t, decode[models.Course](t, e.do(http.MethodGet, "/api/cours/"+itoa(course.ID), nil)).Clients)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/clients/"+itoa(c.ID), nil).Code)
}

func TestUsers(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/api/users", map[string]any{"username": "secretaire", "password": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/users", map[string]any{"username": "secretaire", "password": strings.Repeat("a", 80)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Requête invalide", errorOf(t, w))

	// 40 runes pass the binding, 80 bytes do not fit bcrypt.
	w = e.do(http.MethodPost, "/api/users", map[string]any{"username": "secretaire", "password": strings.Repeat("é", 40)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Le mot de passe est trop long", errorOf(t, w))

	w = e.do(http.MethodPost, "/api/users", map[string]any{"username": "secretaire", "password": "abcdef"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	other := decode[models.User](t, w)
	assert.NotContains(t, w.Body.String(), "password")

	w = e.do(http.MethodPost, "/api/users", map[string]any{"username": "secretaire", "password": "abcdef"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Ce nom d'utilisateur existe déjà", errorOf(t, w))

	assert.Len(t, decode[[]models.User](t, e.do(http.MethodGet, "/api/users", nil)), 2)

	t.Run("self deletion is refused", func(t *testing.T) {
		w := e.do(http.MethodDelete, "/api/users/"+itoa(e.admin.ID), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Vous ne pouvez pas supprimer votre propre compte", errorOf(t, w))
		assert.Len(t, decode[[]models.User](t, e.do(http.MethodGet, "/api/users", nil)), 2)
	})

	t.Run("deleting an actor keeps their payments", func(t *testing.T) {
		login := e.request(http.MethodPost, "/api/auth/login", map[string]string{"username": "secretaire", "password": "abcdef"}, "")
		require.Equal(t, http.StatusOK, login.Code)
		token := decode[models.LoginResponse](t, login).Token

		c := e.createClient(map[string]any{"nom": "Koné", "prenom": "Awa", "prix_formation": 10000})
		require.Equal(t, http.StatusCreated, e.request(http.MethodPost, "/api/paiements", map[string]any{"client_id": c.ID, "montant": 5000}, token).Code)

		w := e.do(http.MethodDelete, "/api/users/"+itoa(other.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		payments := decode[[]models.PaymentRow](t, e.do(http.MethodGet, "/api/paiements", nil))
		require.Len(t, payments, 1)
		assert.Nil(t, payments[0].UtilisateurID)
		assert.Nil(t, payments[0].Username)

		assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/users/"+itoa(other.ID), nil).Code)

		w = e.request(http.MethodPost, "/api/paiements", map[string]any{"client_id": c.ID, "montant": 1000}, token)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Utilisateur non trouvé", errorOf(t, w))
		assert.Len(t, decode[[]models.PaymentRow](t, e.do(http.MethodGet, "/api/paiements", nil)), 1)
		got := decode[models.Client](t, e.do(http.MethodGet, "/api/clients/"+itoa(c.ID), nil))
		assert.Equal(t, int64(5000), got.MontantVerse)
	})
}

func TestDashboardStats(t *testing.T) {
	e := newTestEnv(t)
	awa := e.createClient(map[string]any{"nom": "Koné", "prenom": "Awa", "prix_formation": 100000})
	issa := e.createClient(map[string]any{"nom": "Bamba", "prenom": "Issa", "prix_formation": 80000, "statut_formation": "termine"})
	course := e.createCourse("Informatique", awa.ID, issa.ID)

	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/paiements", map[string]any{"client_id": awa.ID, "montant": 15000}).Code)
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/paiements", map[string]any{"client_id": issa.ID, "montant": 5000}).Code)
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/presences", map[string]any{"client_id": issa.ID, "cours_id": course.ID, "etat": "absent"}).Code)
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/presences", map[string]any{"client_id": awa.ID, "cours_id": course.ID, "etat": "present", "heure_presence": "10:00"}).Code)

	// A payment from yesterday counts toward the total only.
	_, err := e.store.RecordPayment(context.Background(), awa.ID, 1000, e.admin.ID, e.now.AddDate(0, 0, -1))
	require.NoError(t, err)

	w := e.do(http.MethodGet, "/api/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DashboardStats{
		TotalClients:        2,
		ClientsActifs:       1,
		TotalCours:          1,
		PaiementsAujourdhui: 20000,
		AbsentsAujourdhui:   1,
		TotalRecettes:       21000,
	}, decode[models.DashboardStats](t, w))
	assert.Contains(t, w.Body.String(), `"paiementsAujourdhui":20000`)
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)

	w := e.request(http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	e.store.PingErr = assert.AnError
	w = e.request(http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
