package fakeapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nkiryanov/carectl/internal/models"
)

type tokenResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         *models.User `json:"user,omitempty"`
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[struct {
		Email    string `json:"email"`
		Password string `json:"senha"`
	}](w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, found := b.accounts[in.Email]
	if !found || !checkPassword(acc.passwordHash, in.Password) {
		renderError(w, "Credenciais inválidas", http.StatusUnauthorized)
		return
	}

	b.renderPair(w, acc.user.ID, nil)
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[struct {
		Name     string   `json:"nome"`
		Email    string   `json:"email"`
		Password string   `json:"senha"`
		Phone    string   `json:"telefone"`
		Roles    []string `json:"roles"`
	}](w, r)
	if !ok {
		return
	}
	if in.Name == "" || in.Email == "" || in.Password == "" {
		renderError(w, "Nome, email e senha são obrigatórios", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.accounts[in.Email]; exists {
		renderError(w, "Email já cadastrado", http.StatusConflict)
		return
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		renderError(w, "Senha inválida", http.StatusBadRequest)
		return
	}

	b.nextUserID++
	user := models.User{ID: b.nextUserID, Name: in.Name, Email: in.Email, Phone: in.Phone, Roles: in.Roles}
	b.accounts[in.Email] = &account{user: user, passwordHash: hash}

	b.renderPair(w, user.ID, &user)
}

// renderPair must be called with b.mu held
func (b *Backend) renderPair(w http.ResponseWriter, userID int64, user *models.User) {
	access, refresh, err := b.issuePair(userID)
	if err != nil {
		renderError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	b.refreshTokens[refresh] = userID

	renderJSON(w, tokenResponse{Token: access, RefreshToken: refresh, User: user})
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[struct {
		RefreshToken string `json:"refreshToken"`
	}](w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.refreshCalls++
	userID, found := b.refreshTokens[in.RefreshToken]
	if !found {
		renderError(w, "Refresh token inválido", http.StatusUnauthorized)
		return
	}

	if !b.rotate {
		access, _, err := b.issuePair(userID)
		if err != nil {
			renderError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		renderJSON(w, tokenResponse{Token: access})
		return
	}

	delete(b.refreshTokens, in.RefreshToken)
	b.renderPair(w, userID, nil)
}

func (b *Backend) handleNoContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) currentUser(r *http.Request) (models.User, bool) {
	userID, _ := r.Context().Value(userIDKey{}).(int64)

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, acc := range b.accounts {
		if acc.user.ID == userID {
			return acc.user, true
		}
	}
	return models.User{}, false
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := b.currentUser(r)
	if !ok {
		renderError(w, "Usuário não encontrado", http.StatusNotFound)
		return
	}
	renderJSON(w, user)
}

func (b *Backend) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[models.ProfileInput](w, r)
	if !ok {
		return
	}
	user, ok := b.currentUser(r)
	if !ok {
		renderError(w, "Usuário não encontrado", http.StatusNotFound)
		return
	}

	user.Name, user.Email, user.Phone = in.Name, in.Email, in.Phone
	renderJSON(w, user)
}

func (b *Backend) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	users := make([]models.User, 0, len(b.accounts))
	for _, acc := range b.accounts {
		users = append(users, acc.user)
	}
	renderJSON(w, users)
}

func (b *Backend) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	today := time.Now().Format("2006-01-02")
	visitsToday := 0
	for _, a := range b.appointments {
		if a.Date == today {
			visitsToday++
		}
	}

	renderJSON(w, models.DashboardStats{
		TotalPatients:    len(b.patients),
		TotalVisits:      len(b.appointments),
		VisitsToday:      visitsToday,
		VisitsLast30Days: []models.DayCount{{Date: today, Count: visitsToday}},
	})
}

func (b *Backend) handleReport(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("formato") {
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(MinimalPDF(2))
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		_, _ = fmt.Fprintf(w, "relatorio,status\n%s,%s\n", r.PathValue("kind"), r.URL.Query().Get("status"))
	case "json":
		renderJSON(w, map[string]string{"relatorio": r.PathValue("kind")})
	default:
		renderError(w, "Formato inválido", http.StatusBadRequest)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderError(w, "Id inválido", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (b *Backend) handleListPatients(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 20
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	content := []models.Patient{}
	if start := page * size; start < len(b.patients) {
		content = b.patients[start:min(start+size, len(b.patients))]
	}

	renderJSON(w, models.Page[models.Patient]{
		Content:       content,
		TotalElements: len(b.patients),
		TotalPages:    (len(b.patients) + size - 1) / size,
		Number:        page,
		Size:          size,
	})
}

func (b *Backend) handleRecentPatients(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	renderJSON(w, b.patients)
}

func (b *Backend) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.patients {
		if p.ID == id {
			renderJSON(w, p)
			return
		}
	}
	renderError(w, "Paciente não encontrado", http.StatusNotFound)
}

func (b *Backend) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[models.PatientInput](w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p := models.Patient{
		ID:        int64(len(b.patients) + 1),
		Name:      in.Name,
		BirthDate: in.BirthDate,
		CPF:       in.CPF,
		Phone:     in.Phone,
		Email:     in.Email,
		Status:    in.Status,
	}
	b.patients = append(b.patients, p)
	renderJSON(w, p)
}

func (b *Backend) handleListProfessionals(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	renderJSON(w, models.Page[models.Professional]{Content: b.professionals, TotalElements: len(b.professionals)})
}

func (b *Backend) handleAvailableProfessionals(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	available := []models.Professional{}
	for _, p := range b.professionals {
		if p.Status == "ATIVO" {
			available = append(available, p)
		}
	}
	renderJSON(w, available)
}

func (b *Backend) handleGetProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.professionals {
		if p.ID == id {
			renderJSON(w, p)
			return
		}
	}
	renderError(w, "Profissional não encontrado", http.StatusNotFound)
}

func (b *Backend) handleReactivateProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.professionals {
		if b.professionals[i].ID == id {
			b.professionals[i].Status = "ATIVO"
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	renderError(w, "Profissional não encontrado", http.StatusNotFound)
}

// Schedules travel with times named horaInicio/horaFim
type scheduleWire struct {
	ID               int64  `json:"id,omitempty"`
	ProfessionalID   int64  `json:"profissionalId"`
	PatientID        int64  `json:"pacienteId"`
	ProfessionalName string `json:"nomeProfissional,omitempty"`
	PatientName      string `json:"nomePaciente,omitempty"`
	Date             string `json:"data"`
	StartTime        string `json:"horaInicio"`
	EndTime          string `json:"horaFim"`
	Status           string `json:"status"`
	Notes            string `json:"observacoes,omitempty"`
}

func toWire(s models.Schedule) scheduleWire {
	return scheduleWire{
		ID:               s.ID,
		ProfessionalID:   s.ProfessionalID,
		PatientID:        s.PatientID,
		ProfessionalName: s.ProfessionalName,
		PatientName:      s.PatientName,
		Date:             s.Date,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		Status:           s.Status,
		Notes:            s.Notes,
	}
}

func fromWire(in scheduleWire) models.Schedule {
	return models.Schedule{
		ID:             in.ID,
		ProfessionalID: in.ProfessionalID,
		PatientID:      in.PatientID,
		Date:           in.Date,
		StartTime:      in.StartTime,
		EndTime:        in.EndTime,
		Status:         in.Status,
		Notes:          in.Notes,
	}
}

// Schedules matching filter in id order, must be called with b.mu held
func (b *Backend) filterSchedules(filter func(models.Schedule) bool) []scheduleWire {
	out := []scheduleWire{}
	for id := int64(1); id <= b.nextScheduleID; id++ {
		if s, ok := b.schedules[id]; ok && filter(s) {
			out = append(out, toWire(s))
		}
	}
	return out
}

func (b *Backend) handleSchedulesByDate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("data")

	b.mu.Lock()
	defer b.mu.Unlock()

	renderJSON(w, b.filterSchedules(func(s models.Schedule) bool {
		return date == "" || s.Date == date
	}))
}

func (b *Backend) handleSchedulesByProfessional(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	from, to := r.URL.Query().Get("dataInicio"), r.URL.Query().Get("dataFim")

	b.mu.Lock()
	defer b.mu.Unlock()

	renderJSON(w, b.filterSchedules(func(s models.Schedule) bool {
		return s.ProfessionalID == id && (from == "" || s.Date >= from) && (to == "" || s.Date <= to)
	}))
}

func (b *Backend) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	s, found := b.schedules[id]
	if !found {
		renderError(w, "Escala não encontrada", http.StatusNotFound)
		return
	}
	renderJSON(w, toWire(s))
}

func (b *Backend) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	in, ok := bind[scheduleWire](w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.scheduleCreates++
	if b.scheduleCreates == b.failScheduleCreateOn {
		renderError(w, "Conflito de horário para o profissional", http.StatusConflict)
		return
	}

	b.nextScheduleID++
	s := fromWire(in)
	s.ID = b.nextScheduleID
	b.schedules[s.ID] = s

	renderJSONWithStatus(w, toWire(s), http.StatusCreated)
}

func (b *Backend) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := bind[scheduleWire](w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, found := b.schedules[id]; !found {
		renderError(w, "Escala não encontrada", http.StatusNotFound)
		return
	}

	s := fromWire(in)
	s.ID = id
	b.schedules[id] = s
	renderJSON(w, toWire(s))
}

func (b *Backend) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failScheduleDelete {
		renderError(w, "Erro interno", http.StatusInternalServerError)
		return
	}
	if _, found := b.schedules[id]; !found {
		renderError(w, "Escala não encontrada", http.StatusNotFound)
		return
	}

	delete(b.schedules, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) filterAppointments(filter func(models.Appointment) bool) []models.Appointment {
	out := []models.Appointment{}
	for _, a := range b.appointments {
		if filter(a) {
			out = append(out, a)
		}
	}
	return out
}

func (b *Backend) handleAppointmentsByDate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("data")

	b.mu.Lock()
	defer b.mu.Unlock()

	renderJSON(w, b.filterAppointments(func(a models.Appointment) bool {
		return date == "" || a.Date == date
	}))
}

func (b *Backend) handleAppointmentsToday(w http.ResponseWriter, _ *http.Request) {
	today := time.Now().Format("2006-01-02")

	b.mu.Lock()
	defer b.mu.Unlock()

	renderJSON(w, b.filterAppointments(func(a models.Appointment) bool {
		return a.Date == today
	}))
}

func (b *Backend) handleAppointmentsByPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	renderJSON(w, b.filterAppointments(func(a models.Appointment) bool {
		return a.PatientID == id
	}))
}

// MinimalPDF renders a document with the given number of empty pages
func MinimalPDF(pages int) []byte {
	var (
		buf     strings.Builder
		offsets []int
	)
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, 0, pages)
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", i+3))
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for range pages {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return []byte(buf.String())
}
