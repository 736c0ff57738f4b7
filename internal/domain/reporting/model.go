package reporting

// Summary is the dashboard aggregate returned by GET /dashboard.
type Summary struct {
	TotalPatients     int            `json:"total_patients"`
	AppointmentsToday int            `json:"appointments_today"`
	OpenAppointments  int            `json:"open_appointments"`
	LeadsByStatus     map[string]int `json:"leads_by_status"`
}
