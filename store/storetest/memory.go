// Package storetest provides an in-memory store.Store for handler and routing tests.
// It mirrors the PostgreSQL store's observable rules: the derived balance, cascades,
// the conditional payment increment and the error sentinels.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"formatrack_backend/models"
	"formatrack_backend/rules"
	"formatrack_backend/store"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time
	seq int

	users      map[int]models.UserCredentials
	clients    map[int]models.Client
	courses    map[int]models.Course
	attendance map[int]models.Attendance
	incidents  map[int]models.Incident
	payments   map[int]models.Payment

	// PingErr is returned by Ping when set.
	PingErr error
}

var _ store.Store = (*Store)(nil)

func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:        now,
		users:      map[int]models.UserCredentials{},
		clients:    map[int]models.Client{},
		courses:    map[int]models.Course{},
		attendance: map[int]models.Attendance{},
		incidents:  map[int]models.Incident{},
		payments:   map[int]models.Payment{},
	}
}

func (s *Store) nextID() int {
	s.seq++
	return s.seq
}

// sortedDesc returns the keys of m newest first.
func sortedDesc[T any](m map[int]T) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	return ids
}

func (s *Store) Ping(context.Context) error { return s.PingErr }

// Users

func (s *Store) UserByUsername(_ context.Context, username string) (models.UserCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.UserCredentials{}, store.ErrNotFound
}

func (s *Store) ListUsers(context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for _, id := range sortedDesc(s.users) {
		out = append(out, s.users[id].User)
	}
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, username, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return models.User{}, store.ErrConflict
		}
	}
	u := models.UserCredentials{
		User:         models.User{ID: s.nextID(), Username: username, CreatedAt: s.now()},
		PasswordHash: passwordHash,
	}
	s.users[u.ID] = u
	return u.User, nil
}

// DeleteUser keeps the user's payments and clears their actor.
func (s *Store) DeleteUser(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	for pid, p := range s.payments {
		if p.UtilisateurID != nil && *p.UtilisateurID == id {
			p.UtilisateurID = nil
			s.payments[pid] = p
		}
	}
	return nil
}

func (s *Store) CountUsers(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

// Clients

func (s *Store) ListClients(context.Context) ([]models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Client{}
	for _, id := range sortedDesc(s.clients) {
		out = append(out, s.clients[id])
	}
	return out, nil
}

func (s *Store) GetClient(_ context.Context, id int) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return c, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateClient(_ context.Context, c models.Client) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID()
	c.CreatedAt = s.now()
	c.MontantRestant = rules.Remaining(c.PrixFormation, c.MontantVerse)
	s.clients[c.ID] = c
	return c, nil
}

func (s *Store) UpdateClient(_ context.Context, id int, p models.ClientPatch, now time.Time) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return c, store.ErrNotFound
	}
	c = rules.ApplyClientPatch(c, p, now)
	s.clients[id] = c
	return c, nil
}

func (s *Store) DeleteClient(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.clients, id)
	for cid, course := range s.courses {
		course.Clients = without(course.Clients, id)
		s.courses[cid] = course
	}
	for aid, a := range s.attendance {
		if a.ClientID == id {
			delete(s.attendance, aid)
		}
	}
	for iid, inc := range s.incidents {
		if inc.ClientID == id {
			delete(s.incidents, iid)
		}
	}
	for pid, p := range s.payments {
		if p.ClientID == id {
			delete(s.payments, pid)
		}
	}
	return nil
}

func without(ids []int, id int) []int {
	out := []int{}
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (s *Store) ListClientPayments(_ context.Context, clientID int) ([]models.PaymentRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[clientID]; !ok {
		return nil, store.ErrNotFound
	}
	return s.paymentRows(func(p models.Payment) bool { return p.ClientID == clientID }), nil
}

func (s *Store) ListClientIncidents(_ context.Context, clientID int) ([]models.IncidentRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[clientID]; !ok {
		return nil, store.ErrNotFound
	}
	return s.incidentRows(func(i models.Incident) bool { return i.ClientID == clientID }), nil
}

// Courses

func (s *Store) checkEnrollment(ids []int) error {
	seen := map[int]bool{}
	for _, id := range ids {
		if seen[id] {
			return store.ErrConflict
		}
		seen[id] = true
		if _, ok := s.clients[id]; !ok {
			return store.ErrNotFound
		}
	}
	return nil
}

func sortedCopy(ids []int) []int {
	out := append([]int{}, ids...)
	sort.Ints(out)
	return out
}

func (s *Store) ListCourses(context.Context) ([]models.CourseSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.CourseSummary{}
	for _, id := range sortedDesc(s.courses) {
		course := s.courses[id]
		summary := models.CourseSummary{Course: course, NombreClients: len(course.Clients)}
		if len(course.Clients) > 0 {
			enrolled := s.clientsOf(course)
			names := make([]string, len(enrolled))
			for i, c := range enrolled {
				names[i] = c.Nom + " " + c.Prenom
			}
			joined := strings.Join(names, ", ")
			summary.ClientsNoms = &joined
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *Store) GetCourse(_ context.Context, id int) (models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[id]
	if !ok {
		return c, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateCourse(_ context.Context, req models.CourseRequest) (models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkEnrollment(req.Clients); err != nil {
		return models.Course{}, err
	}
	c := models.Course{
		ID:         s.nextID(),
		Intitule:   req.Intitule,
		Enseignant: req.Enseignant,
		CreatedAt:  s.now(),
		Clients:    sortedCopy(req.Clients),
	}
	s.courses[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCourse(_ context.Context, id int, req models.CourseRequest) (models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[id]
	if !ok {
		return c, store.ErrNotFound
	}
	if err := s.checkEnrollment(req.Clients); err != nil {
		return models.Course{}, err
	}
	c.Intitule = req.Intitule
	c.Enseignant = req.Enseignant
	c.Clients = sortedCopy(req.Clients)
	s.courses[id] = c
	return c, nil
}

func (s *Store) DeleteCourse(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.courses, id)
	for aid, a := range s.attendance {
		if a.CoursID == id {
			delete(s.attendance, aid)
		}
	}
	for iid, inc := range s.incidents {
		if inc.CoursID == id {
			delete(s.incidents, iid)
		}
	}
	return nil
}

func (s *Store) clientsOf(course models.Course) []models.Client {
	out := []models.Client{}
	for _, id := range course.Clients {
		out = append(out, s.clients[id])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Nom != out[j].Nom {
			return out[i].Nom < out[j].Nom
		}
		return out[i].Prenom < out[j].Prenom
	})
	return out
}

func (s *Store) ListCourseClients(_ context.Context, courseID int) ([]models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.courses[courseID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.clientsOf(course), nil
}

// Attendance

func (s *Store) ListAttendance(context.Context) ([]models.AttendanceRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.AttendanceRow{}
	for _, id := range sortedDesc(s.attendance) {
		a := s.attendance[id]
		client := s.clients[a.ClientID]
		out = append(out, models.AttendanceRow{
			Attendance: a,
			Nom:        client.Nom,
			Prenom:     client.Prenom,
			CoursNom:   s.courses[a.CoursID].Intitule,
		})
	}
	return out, nil
}

func (s *Store) RecordAttendance(_ context.Context, a models.Attendance, inc *models.Incident) (models.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[a.ClientID]; !ok {
		return a, store.ErrNotFound
	}
	if _, ok := s.courses[a.CoursID]; !ok {
		return a, store.ErrNotFound
	}
	a.ID = s.nextID()
	s.attendance[a.ID] = a
	if inc != nil {
		i := *inc
		i.ID = s.nextID()
		s.incidents[i.ID] = i
	}
	return a, nil
}

// Payments

func (s *Store) paymentRow(p models.Payment) models.PaymentRow {
	client := s.clients[p.ClientID]
	row := models.PaymentRow{Payment: p, Nom: client.Nom, Prenom: client.Prenom}
	if p.UtilisateurID != nil {
		if u, ok := s.users[*p.UtilisateurID]; ok {
			name := u.Username
			row.Username = &name
		}
	}
	return row
}

func (s *Store) paymentRows(keep func(models.Payment) bool) []models.PaymentRow {
	out := []models.PaymentRow{}
	for _, id := range sortedDesc(s.payments) {
		if p := s.payments[id]; keep(p) {
			out = append(out, s.paymentRow(p))
		}
	}
	return out
}

func (s *Store) ListPayments(context.Context) ([]models.PaymentRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paymentRows(func(models.Payment) bool { return true }), nil
}

func (s *Store) GetPayment(_ context.Context, id int) (models.PaymentRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return models.PaymentRow{}, store.ErrNotFound
	}
	return s.paymentRow(p), nil
}

// RecordPayment applies the same conditional increment as the database: the
// balance is checked and moved under one lock.
func (s *Store) RecordPayment(_ context.Context, clientID int, montant int64, userID int, at time.Time) (models.PaymentRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return models.PaymentRow{}, store.ErrNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return models.PaymentRow{}, store.ErrActorNotFound
	}
	if c.MontantRestant < montant {
		return models.PaymentRow{}, store.ErrInsufficientBalance
	}
	c.MontantVerse += montant
	c.MontantRestant = rules.Remaining(c.PrixFormation, c.MontantVerse)
	s.clients[clientID] = c

	p := models.Payment{ID: s.nextID(), ClientID: clientID, Montant: montant, DatePaiement: at, UtilisateurID: &userID}
	s.payments[p.ID] = p
	return s.paymentRow(p), nil
}

// Incidents

func (s *Store) incidentRows(keep func(models.Incident) bool) []models.IncidentRow {
	out := []models.IncidentRow{}
	for _, id := range sortedDesc(s.incidents) {
		inc := s.incidents[id]
		if !keep(inc) {
			continue
		}
		client := s.clients[inc.ClientID]
		out = append(out, models.IncidentRow{
			Incident: inc,
			Nom:      client.Nom,
			Prenom:   client.Prenom,
			CoursNom: s.courses[inc.CoursID].Intitule,
		})
	}
	return out
}

func (s *Store) ListIncidents(context.Context) ([]models.IncidentRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incidentRows(func(models.Incident) bool { return true }), nil
}

func (s *Store) DeleteIncident(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.incidents[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.incidents, id)
	return nil
}

// Stats

func (s *Store) DashboardStats(_ context.Context, dayStart time.Time) (models.DashboardStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dayEnd := dayStart.AddDate(0, 0, 1)
	today := dayStart.Format(rules.DateLayout)

	var st models.DashboardStats
	st.TotalClients = len(s.clients)
	for _, c := range s.clients {
		if c.StatutFormation == models.StatutEnCours {
			st.ClientsActifs++
		}
	}
	st.TotalCours = len(s.courses)
	for _, p := range s.payments {
		st.TotalRecettes += p.Montant
		if !p.DatePaiement.Before(dayStart) && p.DatePaiement.Before(dayEnd) {
			st.PaiementsAujourdhui += p.Montant
		}
	}
	for _, inc := range s.incidents {
		if inc.Type == models.IncidentAbsence && inc.Date == today {
			st.AbsentsAujourdhui++
		}
	}
	return st, nil
}
